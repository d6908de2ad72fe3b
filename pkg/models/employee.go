package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is a row from the employees table. The HR database is owned by an
// external system; this repository only ever reads it.
type Employee struct {
	EmployeeID      int64
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	DateOfBirth     *time.Time
	Gender          string
	HireDate        *time.Time
	EmploymentType  string
	Status          string
	DepartmentID    *int64
	RoleID          *int64
	Domain          string
	YearsExperience *int
	Salary          *decimal.Decimal
	Location        string
	UpdatedAt       time.Time
}

// FullName joins first and last name, trimming when either is empty.
func (e *Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// SkillAssociation is an employee_skills row joined with its skill definition,
// the shape the document builder and change detector work with. SkillUpdatedAt
// is the skill row's own timestamp, carried so that reference-data edits are
// visible alongside the association's.
type SkillAssociation struct {
	EmployeeID     int64
	SkillID        int64
	SkillName      string
	Proficiency    string
	UpdatedAt      time.Time
	SkillUpdatedAt time.Time
}

// Skill is a shared reference row; editing one invalidates every employee
// associated with it.
type Skill struct {
	SkillID   int64
	Name      string
	UpdatedAt time.Time
}
