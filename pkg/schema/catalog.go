// Package schema holds the static allowlist of HR tables and columns that
// generated queries may touch.
package schema

import (
	"sort"
	"strings"
)

// Catalog maps table names to their ordered column lists. It is immutable
// after construction; every lookup works on lowercase names.
type Catalog struct {
	tables  map[string][]string
	ordered []string
}

// NewCatalog builds a catalog from table → columns pairs. Names are
// normalized to lowercase.
func NewCatalog(tables map[string][]string) *Catalog {
	c := &Catalog{tables: make(map[string][]string, len(tables))}
	for name, cols := range tables {
		lowered := make([]string, len(cols))
		for i, col := range cols {
			lowered[i] = strings.ToLower(col)
		}
		c.tables[strings.ToLower(name)] = lowered
		c.ordered = append(c.ordered, strings.ToLower(name))
	}
	sort.Strings(c.ordered)
	return c
}

// Default returns the catalog for the employee dataset.
func Default() *Catalog {
	return NewCatalog(map[string][]string{
		"employees": {
			"employee_id", "first_name", "last_name", "email", "phone",
			"date_of_birth", "gender", "hire_date", "employment_type",
			"status", "department_id", "role_id", "domain",
			"years_experience", "salary", "location",
		},
		"departments":       {"department_id", "name"},
		"roles":             {"role_id", "name", "description"},
		"skills":            {"skill_id", "name"},
		"employee_skills":   {"employee_id", "skill_id", "proficiency"},
		"projects":          {"project_id", "name", "domain", "description"},
		"employee_projects": {"employee_id", "project_id", "role", "contribution"},
	})
}

// HasTable reports whether the table is in the catalog.
func (c *Catalog) HasTable(name string) bool {
	_, ok := c.tables[strings.ToLower(name)]
	return ok
}

// Columns returns the ordered column list for a table, or nil if the table is
// unknown. The returned slice must not be modified.
func (c *Catalog) Columns(table string) []string {
	return c.tables[strings.ToLower(table)]
}

// ColumnSet returns the union of columns across the given tables. Unknown
// tables contribute nothing. This is the validator's deliberate laxness: a
// column valid in any referenced table passes, even if referenced ambiguously.
func (c *Catalog) ColumnSet(tables []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tables {
		for _, col := range c.tables[strings.ToLower(t)] {
			set[col] = struct{}{}
		}
	}
	return set
}

// Tables returns all table names in sorted order.
func (c *Catalog) Tables() []string {
	return c.ordered
}

// Describe renders the catalog as "table(col, col, ...)" lines for prompt
// construction.
func (c *Catalog) Describe() string {
	var b strings.Builder
	for i, name := range c.ordered {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(name)
		b.WriteString("(")
		b.WriteString(strings.Join(c.tables[name], ", "))
		b.WriteString(")")
	}
	return b.String()
}
