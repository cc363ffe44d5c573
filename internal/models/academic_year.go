package models

import "time"

// AcademicYearStatus tracks whether a year is still in use or archived.
type AcademicYearStatus string

const (
	AcademicYearStatusActive   AcademicYearStatus = "active"
	AcademicYearStatusArchived AcademicYearStatus = "archived"
)

// AcademicYear models a tenant's school year and its ordered periods.
type AcademicYear struct {
	ID        string             `db:"id" json:"id"`
	TenantID  string             `db:"tenant_id" json:"tenant_id"`
	Name      string             `db:"name" json:"name"`
	StartDate time.Time          `db:"start_date" json:"start_date"`
	EndDate   time.Time          `db:"end_date" json:"end_date"`
	IsActive  bool               `db:"is_active" json:"is_active"`
	Status    AcademicYearStatus `db:"status" json:"status"`
	Periods   []Period           `db:"-" json:"periods"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}

// Contains reports whether the date falls inside the year, bounds included.
func (y AcademicYear) Contains(date time.Time) bool {
	return !date.Before(y.StartDate) && !date.After(y.EndDate)
}

// Period is a sub-interval of an academic year such as a term.
type Period struct {
	ID             string    `db:"id" json:"id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	Name           string    `db:"name" json:"name"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	Order          int       `db:"sort_order" json:"order"`
	IsActive       bool      `db:"is_active" json:"is_active"`
}

// AcademicYearFilter defines filters supported by list endpoints.
type AcademicYearFilter struct {
	TenantID  string
	Status    AcademicYearStatus
	IsActive  *bool
	Page      int
	PageSize  int
	SortOrder string
}
