package models

import "time"

// ReferenceKind names an entity a booking may point at.
type ReferenceKind string

const (
	ReferenceClass        ReferenceKind = "class"
	ReferenceTeacher      ReferenceKind = "teacher"
	ReferenceSubject      ReferenceKind = "subject"
	ReferenceRoom         ReferenceKind = "room"
	ReferenceAcademicYear ReferenceKind = "academic_year"
)

// ReferenceEntity is the kind-agnostic projection returned by the registry.
type ReferenceEntity struct {
	Kind     ReferenceKind `json:"kind"`
	ID       string        `json:"id"`
	TenantID string        `json:"tenant_id"`
	Code     string        `json:"code"`
	Label    string        `json:"label"`
}

// Teacher is identified per tenant by an employee id.
type Teacher struct {
	ID         string    `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Subject is identified per tenant by a subject code.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Room is identified per tenant by its name.
type Room struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ReferenceFilter pages through reference entities of one tenant.
type ReferenceFilter struct {
	TenantID string
	Search   string
	Page     int
	PageSize int
}
