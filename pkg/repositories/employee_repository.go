// Package repositories provides read access to the HR database.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/staffsense/staffsense-engine/pkg/apperrors"
	"github.com/staffsense/staffsense-engine/pkg/database"
	"github.com/staffsense/staffsense-engine/pkg/models"
)

// EmployeeRepository provides read-only access to employee rows, their skill
// associations, and the modified-since id sets the change detector is built
// on. The HR database is owned by an external system; nothing here writes.
type EmployeeRepository interface {
	// ListAll returns every employee row.
	ListAll(ctx context.Context) ([]*models.Employee, error)
	// GetByID returns one employee, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, employeeID int64) (*models.Employee, error)
	// SkillsFor returns the employee's skill associations joined with their
	// skill definitions, ordered by skill name for deterministic documents.
	SkillsFor(ctx context.Context, employeeID int64) ([]models.SkillAssociation, error)

	// ModifiedSince returns ids of employees whose own row changed after the
	// given instant.
	ModifiedSince(ctx context.Context, since time.Time) ([]int64, error)
	// AssociationsModifiedSince returns employee ids reachable from
	// employee_skills rows changed after the given instant.
	AssociationsModifiedSince(ctx context.Context, since time.Time) ([]int64, error)
	// SkillCascadeModifiedSince returns employee ids associated with any
	// skill whose definition changed after the given instant, regardless of
	// the association's own timestamp.
	SkillCascadeModifiedSince(ctx context.Context, since time.Time) ([]int64, error)

	// ExecuteReadOnly runs a validated SELECT and returns its rows as maps.
	ExecuteReadOnly(ctx context.Context, sqlText string) ([]map[string]any, error)
}

type employeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates an EmployeeRepository over the HR database.
func NewEmployeeRepository(db *database.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

var _ EmployeeRepository = (*employeeRepository)(nil)

const employeeColumns = `employee_id, first_name, last_name, email, phone,
	date_of_birth, gender, hire_date, employment_type, status,
	department_id, role_id, domain, years_experience, salary::text,
	location, updated_at`

func (r *employeeRepository) ListAll(ctx context.Context) ([]*models.Employee, error) {
	rows, err := r.db.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employees: %w", err)
	}

	return employees, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, employeeID int64) (*models.Employee, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, employeeID)

	emp, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("employee %d: %w", employeeID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return emp, nil
}

func (r *employeeRepository) SkillsFor(ctx context.Context, employeeID int64) ([]models.SkillAssociation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT es.employee_id, es.skill_id, s.name, es.proficiency,
		       es.updated_at, s.updated_at
		FROM employee_skills es
		JOIN skills s ON s.skill_id = es.skill_id
		WHERE es.employee_id = $1
		ORDER BY s.name`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch skills for employee %d: %w", employeeID, err)
	}
	defer rows.Close()

	var skills []models.SkillAssociation
	for rows.Next() {
		var s models.SkillAssociation
		if err := rows.Scan(&s.EmployeeID, &s.SkillID, &s.SkillName, &s.Proficiency,
			&s.UpdatedAt, &s.SkillUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill association: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read skill associations: %w", err)
	}

	return skills, nil
}

func (r *employeeRepository) ModifiedSince(ctx context.Context, since time.Time) ([]int64, error) {
	return r.idQuery(ctx,
		`SELECT employee_id FROM employees WHERE updated_at > $1`, since)
}

func (r *employeeRepository) AssociationsModifiedSince(ctx context.Context, since time.Time) ([]int64, error) {
	return r.idQuery(ctx,
		`SELECT DISTINCT employee_id FROM employee_skills WHERE updated_at > $1`, since)
}

func (r *employeeRepository) SkillCascadeModifiedSince(ctx context.Context, since time.Time) ([]int64, error) {
	return r.idQuery(ctx, `
		SELECT DISTINCT es.employee_id
		FROM skills s
		JOIN employee_skills es ON es.skill_id = s.skill_id
		WHERE s.updated_at > $1`, since)
}

func (r *employeeRepository) idQuery(ctx context.Context, sqlText string, since time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx, sqlText, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query modified ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read modified ids: %w", err)
	}

	return ids, nil
}

func (r *employeeRepository) ExecuteReadOnly(ctx context.Context, sqlText string) ([]map[string]any, error) {
	rows, err := r.db.Query(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExecution, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrExecution, err)
		}
		record := make(map[string]any, len(fields))
		for i, field := range fields {
			record[field.Name] = normalizeValue(values[i])
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExecution, err)
	}

	return result, nil
}

// scanner covers both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*models.Employee, error) {
	var (
		emp       models.Employee
		salaryRaw *string
	)
	if err := row.Scan(
		&emp.EmployeeID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.DateOfBirth, &emp.Gender, &emp.HireDate, &emp.EmploymentType, &emp.Status,
		&emp.DepartmentID, &emp.RoleID, &emp.Domain, &emp.YearsExperience, &salaryRaw,
		&emp.Location, &emp.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}

	if salaryRaw != nil {
		salary, err := decimal.NewFromString(*salaryRaw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse salary %q: %w", *salaryRaw, err)
		}
		emp.Salary = &salary
	}

	return &emp, nil
}

// normalizeValue converts pgx-specific value types into plain Go values so
// row maps survive JSON encoding.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return models.JSONSafe(v)
	}
}
