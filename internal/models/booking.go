package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusInactive  BookingStatus = "inactive"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// RecurrenceMode selects how a booking is addressed on the calendar.
type RecurrenceMode string

const (
	// RecurrenceWeekly repeats on a day of the week.
	RecurrenceWeekly RecurrenceMode = "weekly"
	// RecurrenceDated happens once on a specific calendar date.
	RecurrenceDated RecurrenceMode = "dated"
)

// ResourceKind names a time axis that must stay conflict-free.
type ResourceKind string

const (
	ResourceClass   ResourceKind = "class"
	ResourceTeacher ResourceKind = "teacher"
	ResourceRoom    ResourceKind = "room"
)

// ResourceKey identifies one resource time axis.
type ResourceKey struct {
	Kind ResourceKind
	ID   string
}

// LockKey renders the advisory-lock key for the axis within a tenant and recurrence key.
func (k ResourceKey) LockKey(tenantID, recurrenceKey string) string {
	return fmt.Sprintf("%s|%s|%s|%s", tenantID, k.Kind, k.ID, recurrenceKey)
}

// BookingLockKey serialises edits to a single booking row, such as its exception list.
func BookingLockKey(tenantID, bookingID string) string {
	return fmt.Sprintf("%s|booking|%s", tenantID, bookingID)
}

// Booking is a class timetable slot: weekly by day of week, or dated by calendar date.
type Booking struct {
	ID              string            `db:"id" json:"id"`
	TenantID        string            `db:"tenant_id" json:"tenant_id"`
	ClassID         string            `db:"class_id" json:"class_id"`
	SubjectID       *string           `db:"subject_id" json:"subject_id,omitempty"`
	TeacherID       *string           `db:"teacher_id" json:"teacher_id,omitempty"`
	RoomID          *string           `db:"room_id" json:"room_id,omitempty"`
	AcademicYearID  string            `db:"academic_year_id" json:"academic_year_id"`
	RecurrenceMode  RecurrenceMode    `db:"recurrence_mode" json:"recurrence_mode"`
	DayOfWeek       *string           `db:"day_of_week" json:"day_of_week,omitempty"`
	SpecificDate    *time.Time        `db:"specific_date" json:"specific_date,omitempty"`
	RecurrenceKey   string            `db:"recurrence_key" json:"recurrence_key"`
	StartTime       string            `db:"start_time" json:"start_time"`
	EndTime         string            `db:"end_time" json:"end_time"`
	StartMinute     int               `db:"start_minute" json:"-"`
	EndMinute       int               `db:"end_minute" json:"-"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          BookingStatus     `db:"status" json:"status"`
	IsRecurring     bool              `db:"is_recurring" json:"is_recurring"`
	ValidFrom       *time.Time        `db:"valid_from" json:"valid_from,omitempty"`
	ValidTo         *time.Time        `db:"valid_to" json:"valid_to,omitempty"`
	Exceptions      BookingExceptions `db:"exceptions" json:"exceptions"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// Resources lists the axes the booking occupies. Teacher and room axes are present
// only when the booking references them.
func (b Booking) Resources(includeRoom bool) []ResourceKey {
	keys := []ResourceKey{{Kind: ResourceClass, ID: b.ClassID}}
	if b.TeacherID != nil && *b.TeacherID != "" {
		keys = append(keys, ResourceKey{Kind: ResourceTeacher, ID: *b.TeacherID})
	}
	if includeRoom && b.RoomID != nil && *b.RoomID != "" {
		keys = append(keys, ResourceKey{Kind: ResourceRoom, ID: *b.RoomID})
	}
	return keys
}

// BookingException skips (or replaces) one occurrence of a weekly booking.
type BookingException struct {
	Date                 string  `json:"date"`
	Reason               string  `json:"reason"`
	ReplacementBookingID *string `json:"replacement_booking_id,omitempty"`
}

// BookingExceptions is persisted as a JSONB array.
type BookingExceptions []BookingException

// Value marshals exceptions to JSON for persistence.
func (e BookingExceptions) Value() (driver.Value, error) {
	if e == nil {
		e = BookingExceptions{}
	}
	data, err := json.Marshal([]BookingException(e))
	if err != nil {
		return nil, fmt.Errorf("marshal booking exceptions: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON array into the exceptions slice.
func (e *BookingExceptions) Scan(value interface{}) error {
	if value == nil {
		*e = BookingExceptions{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for BookingExceptions", value)
	}
	if len(data) == 0 {
		*e = BookingExceptions{}
		return nil
	}
	var items []BookingException
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unmarshal booking exceptions: %w", err)
	}
	*e = items
	return nil
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	TenantID       string
	ClassID        string
	TeacherID      string
	RoomID         string
	AcademicYearID string
	DayOfWeek      string
	SpecificDate   string
	Status         BookingStatus
	Page           int
	PageSize       int
}

// ScheduleConflict describes the existing booking a candidate collides with.
type ScheduleConflict struct {
	BookingID     string       `json:"conflicting_booking_id"`
	Resource      ResourceKind `json:"resource"`
	ResourceID    string       `json:"resource_id"`
	RecurrenceKey string       `json:"recurrence_key"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
}

// Details renders the conflict as error details.
func (c ScheduleConflict) Details() map[string]interface{} {
	return map[string]interface{}{
		"conflicting_booking_id": c.BookingID,
		"resource":               c.Resource,
		"resource_id":            c.ResourceID,
		"recurrence_key":         c.RecurrenceKey,
		"start_time":             c.StartTime,
		"end_time":               c.EndTime,
	}
}

// ScheduleConflictError is returned when a booking collides with an existing one.
type ScheduleConflictError struct {
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
