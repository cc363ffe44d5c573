package models

import "time"

// Class represents a class or section owned by an academic year.
type Class struct {
	ID             string    `db:"id" json:"id"`
	TenantID       string    `db:"tenant_id" json:"tenant_id"`
	Name           string    `db:"name" json:"name"`
	Level          string    `db:"level" json:"level"`
	Capacity       int       `db:"capacity" json:"capacity"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	MainTeacherID  *string   `db:"main_teacher_id" json:"main_teacher_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	TenantID       string
	AcademicYearID string
	Level          string
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
