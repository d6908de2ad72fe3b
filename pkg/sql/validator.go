package sql

import (
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/staffsense/staffsense-engine/pkg/schema"
)

// VerdictKind classifies a validation outcome.
type VerdictKind string

const (
	VerdictAccepted           VerdictKind = "accepted"
	VerdictForbiddenOperation VerdictKind = "forbidden-operation"
	VerdictParseError         VerdictKind = "parse-error"
	VerdictUnknownTable       VerdictKind = "unknown-table"
	VerdictUnknownColumn      VerdictKind = "unknown-column"
)

// Verdict is the validator's classification of a candidate query. Reason is
// empty when accepted, otherwise it names the specific violation.
type Verdict struct {
	Accepted      bool
	Kind          VerdictKind
	Reason        string
	NormalizedSQL string
}

// forbiddenKeywords are rejected wherever they appear in the candidate,
// case-insensitively, before any parse is attempted.
var forbiddenKeywords = []string{"DELETE", "UPDATE", "INSERT", "DROP", "ALTER", "TRUNCATE", "CREATE"}

// Validator checks candidate queries against the schema catalog. It is a
// pure classifier: it never executes anything and has no side effects.
type Validator struct {
	catalog *schema.Catalog
}

// NewValidator creates a Validator over the given catalog.
func NewValidator(catalog *schema.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate classifies a candidate query.
//
// The checks run in order:
//  1. Normalize (trim, strip trailing semicolon, reject multi-statement input).
//  2. Reject any forbidden keyword, regardless of parseability.
//  3. Parse; parse failure keeps the parser's message for diagnostics.
//  4. Every referenced table must be in the catalog.
//  5. Every referenced column (wildcards ignored) must be in the union of the
//     referenced tables' columns. The union is deliberate: no per-table
//     qualification cross-check is performed.
func (v *Validator) Validate(candidate string) Verdict {
	normalized, err := NormalizeCandidate(candidate)
	if err != nil {
		return rejected(VerdictForbiddenOperation, err.Error())
	}
	if normalized == "" {
		return rejected(VerdictParseError, "SQL parsing error: empty query")
	}

	upper := strings.ToUpper(normalized)
	for _, keyword := range forbiddenKeywords {
		if strings.Contains(upper, keyword) {
			return rejected(VerdictForbiddenOperation, fmt.Sprintf("Forbidden operation detected: %s", keyword))
		}
	}

	stmt, err := sqlparser.Parse(normalized)
	if err != nil {
		return rejected(VerdictParseError, fmt.Sprintf("SQL parsing error: %v", err))
	}

	tables := referencedTables(stmt)
	for _, table := range tables {
		if !v.catalog.HasTable(table) {
			return rejected(VerdictUnknownTable, fmt.Sprintf("Unknown table: %s", table))
		}
	}

	valid := v.catalog.ColumnSet(tables)
	for _, column := range referencedColumns(stmt) {
		if _, ok := valid[column]; !ok {
			return rejected(VerdictUnknownColumn, fmt.Sprintf("Unknown column: %s", column))
		}
	}

	return Verdict{Accepted: true, Kind: VerdictAccepted, NormalizedSQL: normalized}
}

func rejected(kind VerdictKind, reason string) Verdict {
	return Verdict{Kind: kind, Reason: reason}
}

// referencedTables collects table names from FROM clauses (including joins
// and subqueries), in first-seen order. Aliases and column qualifiers are not
// table references and are ignored.
func referencedTables(stmt sqlparser.Statement) []string {
	var tables []string
	seen := make(map[string]struct{})

	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		aliased, ok := node.(*sqlparser.AliasedTableExpr)
		if !ok {
			return true, nil
		}
		name, ok := aliased.Expr.(sqlparser.TableName)
		if !ok {
			// Derived table (subquery); its inner tables are found by
			// the walk itself.
			return true, nil
		}
		table := strings.ToLower(name.Name.String())
		if table == "" {
			return true, nil
		}
		if _, dup := seen[table]; !dup {
			seen[table] = struct{}{}
			tables = append(tables, table)
		}
		return true, nil
	}, stmt)

	return tables
}

// referencedColumns collects column names in first-seen order, ignoring table
// qualifiers and wildcards.
func referencedColumns(stmt sqlparser.Statement) []string {
	var columns []string
	seen := make(map[string]struct{})

	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		col, ok := node.(*sqlparser.ColName)
		if !ok {
			return true, nil
		}
		name := strings.ToLower(col.Name.String())
		if name == "" || name == "*" {
			return true, nil
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			columns = append(columns, name)
		}
		return true, nil
	}, stmt)

	return columns
}
