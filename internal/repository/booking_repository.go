package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const bookingColumns = `id, tenant_id, class_id, subject_id, teacher_id, room_id, academic_year_id, recurrence_mode, day_of_week, specific_date,
recurrence_key, start_time, end_time, start_minute, end_minute, duration_minutes, status, is_recurring, valid_from, valid_to, exceptions, created_at, updated_at`

var axisColumns = map[models.ResourceKind]string{
	models.ResourceClass:   "class_id",
	models.ResourceTeacher: "teacher_id",
	models.ResourceRoom:    "room_id",
}

// BookingRepository persists timetable bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// WithResourceLocks opens a transaction, takes a transaction-scoped advisory lock for
// every key in sorted order and runs fn inside it. The transaction commits when fn
// succeeds and rolls back otherwise; locks are released either way.
func (r *BookingRepository) WithResourceLocks(ctx context.Context, keys []string, fn func(ctx context.Context, exec sqlx.ExtContext) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sorted := uniqueSorted(keys)
	for _, key := range sorted {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("acquire resource lock %s: %w", key, err)
		}
	}

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FindByID loads a tenant's booking.
func (r *BookingRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, tenantID, id string) (*models.Booking, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1 AND tenant_id = $2", bookingColumns)
	var booking models.Booking
	if err := sqlx.GetContext(ctx, r.exec(exec), &booking, query, id, tenantID); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListActiveOnAxis returns active bookings sharing the resource and recurrence key,
// skipping excludeID when set.
func (r *BookingRepository) ListActiveOnAxis(ctx context.Context, exec sqlx.ExtContext, tenantID string, resource models.ResourceKey, recurrenceKey, excludeID string) ([]models.Booking, error) {
	column, ok := axisColumns[resource.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown resource kind %q", resource.Kind)
	}
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE tenant_id = $1 AND %s = $2 AND recurrence_key = $3 AND status = $4", bookingColumns, column)
	args := []interface{}{tenantID, resource.ID, recurrenceKey, models.BookingStatusActive}
	if excludeID != "" {
		query += " AND id <> $5"
		args = append(args, excludeID)
	}
	query += " ORDER BY start_minute ASC"

	var bookings []models.Booking
	if err := sqlx.SelectContext(ctx, r.exec(exec), &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings on %s axis: %w", resource.Kind, err)
	}
	return bookings, nil
}

// List returns a tenant's bookings matching filters with the total count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	if !validFilterIDs(filter.ClassID, filter.TeacherID, filter.RoomID, filter.AcademicYearID) {
		return []models.Booking{}, 0, nil
	}
	base := "FROM bookings WHERE tenant_id = $1"
	args := []interface{}{filter.TenantID}
	var conditions []string

	add := func(column string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}
	if filter.ClassID != "" {
		add("class_id", filter.ClassID)
	}
	if filter.TeacherID != "" {
		add("teacher_id", filter.TeacherID)
	}
	if filter.RoomID != "" {
		add("room_id", filter.RoomID)
	}
	if filter.AcademicYearID != "" {
		add("academic_year_id", filter.AcademicYearID)
	}
	if filter.DayOfWeek != "" {
		add("day_of_week", filter.DayOfWeek)
	}
	if filter.SpecificDate != "" {
		add("specific_date", filter.SpecificDate)
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY recurrence_key ASC, start_minute ASC LIMIT %d OFFSET %d", bookingColumns, base, limit, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// ListActiveByClass returns every active booking of a class in timetable order.
func (r *BookingRepository) ListActiveByClass(ctx context.Context, tenantID, classID string) ([]models.Booking, error) {
	if !validID(classID) {
		return []models.Booking{}, nil
	}
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE tenant_id = $1 AND class_id = $2 AND status = $3 ORDER BY recurrence_mode DESC, recurrence_key ASC, start_minute ASC", bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, tenantID, classID, models.BookingStatusActive); err != nil {
		return nil, fmt.Errorf("list class bookings: %w", err)
	}
	return bookings, nil
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Exceptions == nil {
		booking.Exceptions = models.BookingExceptions{}
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	const query = `INSERT INTO bookings (id, tenant_id, class_id, subject_id, teacher_id, room_id, academic_year_id, recurrence_mode, day_of_week, specific_date,
recurrence_key, start_time, end_time, start_minute, end_minute, duration_minutes, status, is_recurring, valid_from, valid_to, exceptions, created_at, updated_at)
VALUES (:id, :tenant_id, :class_id, :subject_id, :teacher_id, :room_id, :academic_year_id, :recurrence_mode, :day_of_week, :specific_date,
:recurrence_key, :start_time, :end_time, :start_minute, :end_minute, :duration_minutes, :status, :is_recurring, :valid_from, :valid_to, :exceptions, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Update rewrites a booking's mutable fields.
func (r *BookingRepository) Update(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error {
	booking.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bookings SET class_id = :class_id, subject_id = :subject_id, teacher_id = :teacher_id, room_id = :room_id,
academic_year_id = :academic_year_id, recurrence_mode = :recurrence_mode, day_of_week = :day_of_week, specific_date = :specific_date,
recurrence_key = :recurrence_key, start_time = :start_time, end_time = :end_time, start_minute = :start_minute, end_minute = :end_minute,
duration_minutes = :duration_minutes, is_recurring = :is_recurring, valid_from = :valid_from, valid_to = :valid_to, updated_at = :updated_at
WHERE id = :id AND tenant_id = :tenant_id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, booking); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// UpdateStatus changes a booking's lifecycle state.
func (r *BookingRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, tenantID, id string, status models.BookingStatus) error {
	const query = `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4`
	if _, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id, tenantID); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

// UpdateExceptions stores the booking's exception dates.
func (r *BookingRepository) UpdateExceptions(ctx context.Context, exec sqlx.ExtContext, tenantID, id string, exceptions models.BookingExceptions) error {
	const query = `UPDATE bookings SET exceptions = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4`
	if _, err := r.exec(exec).ExecContext(ctx, query, exceptions, time.Now().UTC(), id, tenantID); err != nil {
		return fmt.Errorf("update booking exceptions: %w", err)
	}
	return nil
}

// Delete removes the booking row permanently.
func (r *BookingRepository) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1 AND tenant_id = $2`, id, tenantID); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}
