// Package documents builds the denormalized text documents stored in the
// similarity index.
package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/staffsense/staffsense-engine/pkg/models"
)

// Build produces the employee's document: a natural-language paragraph used
// as the embedding unit, plus a flat metadata record carrying the source id,
// its last-modified time, and JSON snapshots of the source rows for
// auditability. It is a pure function of its inputs (now supplies the
// extracted_at stamp) and never touches the similarity index.
func Build(emp *models.Employee, skills []models.SkillAssociation, now time.Time) (models.Document, error) {
	content := buildContent(emp, skills)

	rawJSON, err := models.MarshalJSONSafe(employeeSnapshot(emp))
	if err != nil {
		return models.Document{}, fmt.Errorf("snapshot employee %d: %w", emp.EmployeeID, err)
	}
	skillsJSON, err := models.MarshalJSONSafe(skillSnapshots(skills))
	if err != nil {
		return models.Document{}, fmt.Errorf("snapshot skills for employee %d: %w", emp.EmployeeID, err)
	}

	return models.Document{
		ID:         models.DocumentID(emp.EmployeeID),
		EmployeeID: emp.EmployeeID,
		Content:    content,
		Metadata: map[string]string{
			"table":        "employee",
			"row_id":       fmt.Sprintf("%d", emp.EmployeeID),
			"updated_at":   emp.UpdatedAt.UTC().Format(time.RFC3339),
			"raw_json":     rawJSON,
			"skills_json":  skillsJSON,
			"extracted_at": now.UTC().Format(time.RFC3339),
		},
	}, nil
}

func buildContent(emp *models.Employee, skills []models.SkillAssociation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Employee %s (ID: %d). ", emp.FullName(), emp.EmployeeID)

	domain := emp.Domain
	if domain == "" {
		domain = "Unknown domain"
	}
	fmt.Fprintf(&b, "Works in %s. ", domain)

	if emp.YearsExperience != nil {
		fmt.Fprintf(&b, "Experience: %d years. ", *emp.YearsExperience)
	} else {
		b.WriteString("Experience: NA years. ")
	}

	fmt.Fprintf(&b, "Skills: %s. ", skillText(skills))
	fmt.Fprintf(&b, "Employment Type: %s. ", emp.EmploymentType)
	fmt.Fprintf(&b, "Status: %s. ", emp.Status)
	fmt.Fprintf(&b, "Location: %s. ", emp.Location)
	fmt.Fprintf(&b, "Hire Date: %s.", formatDate(emp.HireDate))

	return b.String()
}

// skillText renders "name (proficiency)" pairs; callers pass associations in
// a stable order so the document is deterministic.
func skillText(skills []models.SkillAssociation) string {
	if len(skills) == 0 {
		return "No skills listed"
	}
	parts := make([]string, len(skills))
	for i, s := range skills {
		parts[i] = fmt.Sprintf("%s (%s)", s.SkillName, s.Proficiency)
	}
	return strings.Join(parts, ", ")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.UTC().Format("2006-01-02")
}

// employeeSnapshot renders the row as an ordered key/value map for the audit
// snapshot, applying the date/decimal/binary serialization rules.
func employeeSnapshot(emp *models.Employee) map[string]any {
	return map[string]any{
		"employee_id":      emp.EmployeeID,
		"first_name":       emp.FirstName,
		"last_name":        emp.LastName,
		"email":            emp.Email,
		"phone":            emp.Phone,
		"date_of_birth":    models.JSONSafe(emp.DateOfBirth),
		"gender":           emp.Gender,
		"hire_date":        models.JSONSafe(emp.HireDate),
		"employment_type":  emp.EmploymentType,
		"status":           emp.Status,
		"department_id":    emp.DepartmentID,
		"role_id":          emp.RoleID,
		"domain":           emp.Domain,
		"years_experience": emp.YearsExperience,
		"salary":           models.JSONSafe(emp.Salary),
		"location":         emp.Location,
		"updated_at":       models.JSONSafe(emp.UpdatedAt),
	}
}

func skillSnapshots(skills []models.SkillAssociation) []map[string]any {
	out := make([]map[string]any, len(skills))
	for i, s := range skills {
		out[i] = map[string]any{
			"skill_id":         s.SkillID,
			"skill_name":       s.SkillName,
			"proficiency":      s.Proficiency,
			"updated_at":       models.JSONSafe(s.UpdatedAt),
			"skill_updated_at": models.JSONSafe(s.SkillUpdatedAt),
		}
	}
	return out
}
