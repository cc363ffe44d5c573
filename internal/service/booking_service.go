package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/tenant"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/timeslot"
)

type bookingRepository interface {
	bookingAxisReader
	WithResourceLocks(ctx context.Context, keys []string, fn func(ctx context.Context, exec sqlx.ExtContext) error) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, tenantID, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error
	Update(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, tenantID, id string, status models.BookingStatus) error
	UpdateExceptions(ctx context.Context, exec sqlx.ExtContext, tenantID, id string, exceptions models.BookingExceptions) error
	Delete(ctx context.Context, tenantID, id string) error
}

type academicYearReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
	FindActive(ctx context.Context, tenantID string) (*models.AcademicYear, error)
}

type bookingReferences interface {
	Class(ctx context.Context, tenantID, id string) (*models.Class, error)
	Resolve(ctx context.Context, tenantID string, kind models.ReferenceKind, id string) (*models.ReferenceEntity, error)
}

// CreateBookingRequest is the payload for placing a booking. Exactly one of day_of_week
// (weekly) or specific_date (dated) selects the recurrence mode; a day sent alongside a
// date must match it. An omitted academic_year_id means the tenant's active year.
type CreateBookingRequest struct {
	ClassID        string  `json:"class_id" validate:"required"`
	SubjectID      *string `json:"subject_id"`
	TeacherID      *string `json:"teacher_id"`
	RoomID         *string `json:"room_id"`
	AcademicYearID string  `json:"academic_year_id"`
	DayOfWeek      *string `json:"day_of_week"`
	SpecificDate   *string `json:"specific_date"`
	StartTime      string  `json:"start_time" validate:"required"`
	EndTime        string  `json:"end_time" validate:"required"`
	IsRecurring    *bool   `json:"is_recurring"`
	ValidFrom      *string `json:"valid_from"`
	ValidTo        *string `json:"valid_to"`
}

// UpdateBookingRequest carries the fields to change; nil keeps the stored value and an
// empty string clears an optional one.
type UpdateBookingRequest struct {
	ClassID        *string `json:"class_id"`
	SubjectID      *string `json:"subject_id"`
	TeacherID      *string `json:"teacher_id"`
	RoomID         *string `json:"room_id"`
	AcademicYearID *string `json:"academic_year_id"`
	DayOfWeek      *string `json:"day_of_week"`
	SpecificDate   *string `json:"specific_date"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	IsRecurring    *bool   `json:"is_recurring"`
	ValidFrom      *string `json:"valid_from"`
	ValidTo        *string `json:"valid_to"`
}

// UpdateBookingStatusRequest moves an active booking to a terminal state.
type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required,oneof=inactive cancelled"`
}

// AddExceptionRequest skips one occurrence of a weekly booking.
type AddExceptionRequest struct {
	Date                 string  `json:"date" validate:"required,datetime=2006-01-02"`
	Reason               string  `json:"reason" validate:"required,max=255"`
	ReplacementBookingID *string `json:"replacement_booking_id"`
}

// bookingDraft is the merged, not yet validated shape of a booking.
type bookingDraft struct {
	ClassID        string
	AcademicYearID string
	SubjectID      string
	TeacherID      string
	RoomID         string
	DayOfWeek      string
	SpecificDate   string
	StartTime      string
	EndTime        string
	IsRecurring    *bool
	ValidFrom      string
	ValidTo        string
}

// BookingService is the timetable booking engine. Every write runs the conflict scan
// and the persist step inside one transaction holding the affected resource locks.
type BookingService struct {
	repo      bookingRepository
	detector  *ConflictDetector
	years     academicYearReader
	refs      bookingReferences
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService wires the booking engine. metrics may be nil.
func NewBookingService(repo bookingRepository, detector *ConflictDetector, years academicYearReader, refs bookingReferences, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if detector == nil {
		detector = NewConflictDetector(repo, false)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, detector: detector, years: years, refs: refs, metrics: metrics, validator: validate, logger: logger}
}

// Get returns a booking by ID.
func (s *BookingService) Get(ctx context.Context, tenantID, id string) (*models.Booking, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	booking, err := s.repo.FindByID(ctx, nil, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "booking not found", "failed to load booking")
	}
	return booking, nil
}

// List returns bookings matching the filter.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	if err := tenant.Validate(filter.TenantID); err != nil {
		return nil, nil, err
	}
	if filter.DayOfWeek != "" {
		day, err := timeslot.ParseDay(filter.DayOfWeek)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dayOfWeek filter")
		}
		filter.DayOfWeek = day
	}
	if filter.SpecificDate != "" {
		date, err := timeslot.ParseDate(filter.SpecificDate)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date filter")
		}
		filter.SpecificDate = timeslot.FormatDate(date)
	}
	switch filter.Status {
	case "", models.BookingStatusActive, models.BookingStatusInactive, models.BookingStatusCancelled:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
	}

	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageFailure(err, "failed to list bookings")
	}
	page, size := pageMeta(filter.Page, filter.PageSize)
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create validates a booking, checks it against every occupied axis and stores it as
// active.
func (s *BookingService) Create(ctx context.Context, tenantID string, req CreateBookingRequest) (*models.Booking, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordBookingOperation("create", "invalid")
		return nil, validationFailure(err, "invalid booking payload")
	}

	booking, err := s.prepare(ctx, tenantID, draftFromCreate(req))
	if err != nil {
		s.metrics.RecordBookingOperation("create", "invalid")
		return nil, err
	}
	booking.Status = models.BookingStatusActive

	err = s.commit(ctx, "create", booking, "", func(ctx context.Context, exec sqlx.ExtContext) error {
		return s.repo.Create(ctx, exec, booking)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking created",
		zap.String("tenant_id", tenantID),
		zap.String("booking_id", booking.ID),
		zap.String("recurrence_key", booking.RecurrenceKey))
	return booking, nil
}

// Update merges the request into an active booking and re-validates it against every
// other booking.
func (s *BookingService) Update(ctx context.Context, tenantID, id string, req UpdateBookingRequest) (*models.Booking, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, nil, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "booking not found", "failed to load booking")
	}
	if existing.Status != models.BookingStatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("booking is %s; only active bookings can be updated", existing.Status))
	}

	booking, err := s.prepare(ctx, tenantID, draftFromUpdate(*existing, req))
	if err != nil {
		s.metrics.RecordBookingOperation("update", "invalid")
		return nil, err
	}
	booking.ID = existing.ID
	booking.Status = models.BookingStatusActive
	booking.Exceptions = existing.Exceptions
	booking.CreatedAt = existing.CreatedAt

	err = s.commit(ctx, "update", booking, existing.ID, func(ctx context.Context, exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, tenantID, id)
		if err != nil {
			return notFoundOr(err, "booking not found", "failed to reload booking")
		}
		if current.Status != models.BookingStatusActive {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("booking is %s; only active bookings can be updated", current.Status))
		}
		return s.repo.Update(ctx, exec, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Delete cancels a booking. Missing, cancelled and inactive bookings succeed without
// side effects, so the call is idempotent.
func (s *BookingService) Delete(ctx context.Context, tenantID, id string) error {
	if err := tenant.Validate(tenantID); err != nil {
		return err
	}
	existing, err := s.repo.FindByID(ctx, nil, tenantID, id)
	if err != nil {
		if isMissing(err) {
			return nil
		}
		return storageFailure(err, "failed to load booking")
	}
	if existing.Status != models.BookingStatusActive {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, nil, tenantID, id, models.BookingStatusCancelled); err != nil {
		s.metrics.RecordBookingOperation("cancel", "error")
		return storageFailure(err, "failed to cancel booking")
	}
	s.metrics.RecordBookingOperation("cancel", "ok")
	s.logger.Info("booking cancelled", zap.String("tenant_id", tenantID), zap.String("booking_id", id))
	return nil
}

// SetStatus moves an active booking to inactive or cancelled. Repeating the current
// terminal status is a no-op; any other transition is rejected.
func (s *BookingService) SetStatus(ctx context.Context, tenantID, id string, req UpdateBookingStatusRequest) (*models.Booking, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid status payload")
	}
	existing, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == req.Status {
		return existing, nil
	}
	if existing.Status != models.BookingStatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("cannot move booking from %s to %s", existing.Status, req.Status))
	}
	if err := s.repo.UpdateStatus(ctx, nil, tenantID, id, req.Status); err != nil {
		return nil, storageFailure(err, "failed to update booking status")
	}
	existing.Status = req.Status
	s.metrics.RecordBookingOperation("status", "ok")
	return existing, nil
}

// Purge deletes the booking row permanently. It is idempotent.
func (s *BookingService) Purge(ctx context.Context, tenantID, id string) error {
	if err := tenant.Validate(tenantID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil && !isMissing(err) {
		return storageFailure(err, "failed to purge booking")
	}
	s.metrics.RecordBookingOperation("purge", "ok")
	s.logger.Info("booking purged", zap.String("tenant_id", tenantID), zap.String("booking_id", id))
	return nil
}

// AddException records a skipped occurrence of a weekly booking. A second exception
// for the same date replaces the first. Writes to one booking are serialised.
func (s *BookingService) AddException(ctx context.Context, tenantID, id string, req AddExceptionRequest) (*models.Booking, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid exception payload")
	}
	booking, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if booking.RecurrenceMode != models.RecurrenceWeekly || booking.DayOfWeek == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exceptions apply to weekly bookings only")
	}
	if booking.Status != models.BookingStatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exceptions apply to active bookings only")
	}

	date, err := timeslot.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exception date")
	}
	if timeslot.DayOf(date) != *booking.DayOfWeek {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not a %s", req.Date, *booking.DayOfWeek))
	}
	if (booking.ValidFrom != nil && date.Before(*booking.ValidFrom)) || (booking.ValidTo != nil && date.After(*booking.ValidTo)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exception date is outside the booking validity window")
	}
	year, err := s.years.FindByID(ctx, tenantID, booking.AcademicYearID)
	if err != nil {
		return nil, notFoundOr(err, "academic year not found", "failed to load academic year")
	}
	if !year.Contains(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exception date is outside the academic year")
	}

	var replacement *string
	if req.ReplacementBookingID != nil && strings.TrimSpace(*req.ReplacementBookingID) != "" {
		rid := strings.TrimSpace(*req.ReplacementBookingID)
		if rid == booking.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a booking cannot replace itself")
		}
		if _, err := s.repo.FindByID(ctx, nil, tenantID, rid); err != nil {
			return nil, notFoundOr(err, "replacement booking not found", "failed to load replacement booking")
		}
		replacement = &rid
	}

	entry := models.BookingException{Date: timeslot.FormatDate(date), Reason: strings.TrimSpace(req.Reason), ReplacementBookingID: replacement}

	var stored *models.Booking
	err = s.repo.WithResourceLocks(ctx, []string{models.BookingLockKey(tenantID, id)}, func(ctx context.Context, exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, tenantID, id)
		if err != nil {
			return notFoundOr(err, "booking not found", "failed to reload booking")
		}
		if current.Status != models.BookingStatusActive || current.RecurrenceMode != models.RecurrenceWeekly || current.DayOfWeek == nil {
			return appErrors.Clone(appErrors.ErrValidation, "exceptions apply to active weekly bookings only")
		}
		if timeslot.DayOf(date) != *current.DayOfWeek {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not a %s", req.Date, *current.DayOfWeek))
		}

		exceptions := make(models.BookingExceptions, 0, len(current.Exceptions)+1)
		for _, ex := range current.Exceptions {
			if ex.Date != entry.Date {
				exceptions = append(exceptions, ex)
			}
		}
		exceptions = append(exceptions, entry)
		sort.Slice(exceptions, func(i, j int) bool { return exceptions[i].Date < exceptions[j].Date })

		if err := s.repo.UpdateExceptions(ctx, exec, tenantID, id, exceptions); err != nil {
			return err
		}
		current.Exceptions = exceptions
		stored = current
		return nil
	})
	if err != nil {
		return nil, storageFailure(err, "failed to store booking exception")
	}
	return stored, nil
}

// commit scans every axis of the booking and runs write, both under the axis locks.
func (s *BookingService) commit(ctx context.Context, op string, booking *models.Booking, excludeID string, write func(ctx context.Context, exec sqlx.ExtContext) error) error {
	axes := s.detector.Axes(*booking)
	keys := make([]string, 0, len(axes))
	for _, axis := range axes {
		keys = append(keys, axis.LockKey(booking.TenantID, booking.RecurrenceKey))
	}

	start := time.Now()
	err := s.repo.WithResourceLocks(ctx, keys, func(ctx context.Context, exec sqlx.ExtContext) error {
		conflict, err := s.detector.Check(ctx, exec, *booking, excludeID)
		if err != nil {
			return storageFailure(err, "failed to scan for conflicts")
		}
		if conflict != nil {
			return &models.ScheduleConflictError{
				Message:  conflictMessage(*conflict),
				Conflict: *conflict,
			}
		}
		return write(ctx, exec)
	})
	s.metrics.ObserveBookingWrite(op, time.Since(start))
	return s.translateWriteError(ctx, op, booking, excludeID, err)
}

func (s *BookingService) translateWriteError(ctx context.Context, op string, booking *models.Booking, excludeID string, err error) error {
	if err == nil {
		s.metrics.RecordBookingOperation(op, "ok")
		return nil
	}

	var conflictErr *models.ScheduleConflictError
	if errors.As(err, &conflictErr) {
		s.metrics.RecordBookingOperation(op, "conflict")
		s.metrics.RecordConflict(conflictErr.Conflict.Resource)
		s.logger.Info("booking conflict",
			zap.String("tenant_id", booking.TenantID),
			zap.String("operation", op),
			zap.String("resource", string(conflictErr.Conflict.Resource)),
			zap.String("conflicting_booking_id", conflictErr.Conflict.BookingID))
		return appErrors.Clone(appErrors.ErrScheduleConflict, conflictErr.Message).WithDetails(conflictErr.Conflict.Details())
	}

	if database.IsExclusionViolation(err) || database.IsUniqueViolation(err) {
		conflict := s.constraintConflict(ctx, booking, excludeID, database.ConstraintName(err))
		s.metrics.RecordBookingOperation(op, "conflict")
		s.metrics.RecordConflict(conflict.Resource)
		s.logger.Info("booking conflict caught by storage constraint",
			zap.String("tenant_id", booking.TenantID),
			zap.String("operation", op),
			zap.String("constraint", database.ConstraintName(err)),
			zap.String("conflicting_booking_id", conflict.BookingID))
		return appErrors.Clone(appErrors.ErrScheduleConflict, conflictMessage(conflict)).WithDetails(conflict.Details())
	}

	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code != appErrors.ErrStorageFailure.Code {
		s.metrics.RecordBookingOperation(op, "invalid")
		return appErr
	}

	s.metrics.RecordBookingOperation(op, "error")
	s.logger.Error("booking write failed",
		zap.String("tenant_id", booking.TenantID),
		zap.String("operation", op),
		zap.Error(err))
	return storageFailure(err, fmt.Sprintf("failed to %s booking", op))
}

// constraintConflict describes a collision the exclusion constraints caught after the
// scan passed. The transaction is gone by now, so the lookup reads committed rows; if
// the rival booking vanished in the meantime the id stays empty.
func (s *BookingService) constraintConflict(ctx context.Context, booking *models.Booking, excludeID, constraint string) models.ScheduleConflict {
	axis := models.ResourceKey{Kind: models.ResourceClass, ID: booking.ClassID}
	if constraint == "bookings_teacher_no_overlap" && booking.TeacherID != nil {
		axis = models.ResourceKey{Kind: models.ResourceTeacher, ID: *booking.TeacherID}
	}
	conflict := models.ScheduleConflict{
		Resource:      axis.Kind,
		ResourceID:    axis.ID,
		RecurrenceKey: booking.RecurrenceKey,
		StartTime:     booking.StartTime,
		EndTime:       booking.EndTime,
	}
	window := timeslot.Window{Start: booking.StartMinute, End: booking.EndMinute}
	hit, err := s.detector.FindConflict(ctx, nil, booking.TenantID, axis, booking.RecurrenceKey, window, excludeID)
	if err != nil {
		s.logger.Warn("conflict lookup failed", zap.String("tenant_id", booking.TenantID), zap.Error(err))
		return conflict
	}
	if hit != nil {
		conflict.BookingID = hit.ID
		conflict.StartTime = hit.StartTime
		conflict.EndTime = hit.EndTime
	}
	return conflict
}

func conflictMessage(c models.ScheduleConflict) string {
	return fmt.Sprintf("%s %s is already booked on %s from %s to %s", c.Resource, c.ResourceID, c.RecurrenceKey, c.StartTime, c.EndTime)
}

// prepare resolves references and the academic year, normalises the time window and
// derives the recurrence key.
func (s *BookingService) prepare(ctx context.Context, tenantID string, d bookingDraft) (*models.Booking, error) {
	class, err := s.refs.Class(ctx, tenantID, d.ClassID)
	if err != nil {
		return nil, err
	}
	booking := &models.Booking{TenantID: tenantID, ClassID: class.ID}

	optional := []struct {
		kind   models.ReferenceKind
		id     string
		target **string
	}{
		{models.ReferenceSubject, d.SubjectID, &booking.SubjectID},
		{models.ReferenceTeacher, d.TeacherID, &booking.TeacherID},
		{models.ReferenceRoom, d.RoomID, &booking.RoomID},
	}
	for _, ref := range optional {
		if ref.id == "" {
			continue
		}
		entity, err := s.refs.Resolve(ctx, tenantID, ref.kind, ref.id)
		if err != nil {
			return nil, err
		}
		id := entity.ID
		*ref.target = &id
	}

	year, err := s.resolveYear(ctx, tenantID, d.AcademicYearID)
	if err != nil {
		return nil, err
	}
	if class.AcademicYearID != year.ID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class does not belong to the booking's academic year")
	}
	booking.AcademicYearID = year.ID

	window, err := timeslot.ParseWindow(d.StartTime, d.EndTime)
	if err != nil {
		if errors.Is(err, timeslot.ErrInvalidTimeRange) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTimeRange, "end_time must be after start_time")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_time and end_time must use HH:MM")
	}
	booking.StartMinute = window.Start
	booking.EndMinute = window.End
	booking.StartTime = window.StartLabel()
	booking.EndTime = window.EndLabel()
	booking.DurationMinutes = window.Duration()

	if err := applyRecurrence(booking, d, *year); err != nil {
		return nil, err
	}
	if err := applyValidity(booking, d, *year); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) resolveYear(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	var (
		year *models.AcademicYear
		err  error
	)
	if id != "" {
		year, err = s.years.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, notFoundOr(err, "academic year not found", "failed to load academic year")
		}
	} else {
		year, err = s.years.FindActive(ctx, tenantID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "no active academic year; activate one and retry").
					WithDetails(map[string]interface{}{"reason": "no_active_academic_year", "retryable": true})
			}
			return nil, storageFailure(err, "failed to load active academic year")
		}
	}
	if year.Status == models.AcademicYearStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is archived")
	}
	return year, nil
}

func applyRecurrence(booking *models.Booking, d bookingDraft, year models.AcademicYear) error {
	switch {
	case d.SpecificDate != "":
		date, err := timeslot.ParseDate(d.SpecificDate)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "specific_date must use YYYY-MM-DD")
		}
		weekday := timeslot.DayOf(date)
		if d.DayOfWeek != "" {
			day, err := timeslot.ParseDay(d.DayOfWeek)
			if err != nil || day != weekday {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day_of_week does not match %s", d.SpecificDate))
			}
		}
		if !year.Contains(date) {
			return appErrors.Clone(appErrors.ErrValidation, "specific_date is outside the academic year")
		}
		booking.RecurrenceMode = models.RecurrenceDated
		booking.SpecificDate = &date
		booking.DayOfWeek = &weekday
		booking.RecurrenceKey = timeslot.FormatDate(date)
		booking.IsRecurring = false
	case d.DayOfWeek != "":
		day, err := timeslot.ParseDay(d.DayOfWeek)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day_of_week")
		}
		booking.RecurrenceMode = models.RecurrenceWeekly
		booking.DayOfWeek = &day
		booking.RecurrenceKey = day
		booking.IsRecurring = d.IsRecurring == nil || *d.IsRecurring
	default:
		return appErrors.Clone(appErrors.ErrValidation, "either day_of_week or specific_date is required")
	}
	return nil
}

func applyValidity(booking *models.Booking, d bookingDraft, year models.AcademicYear) error {
	parse := func(raw, field string) (*time.Time, error) {
		if raw == "" {
			return nil, nil
		}
		date, err := timeslot.ParseDate(raw)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, field+" must use YYYY-MM-DD")
		}
		if !year.Contains(date) {
			return nil, appErrors.Clone(appErrors.ErrValidation, field+" is outside the academic year")
		}
		return &date, nil
	}
	from, err := parse(d.ValidFrom, "valid_from")
	if err != nil {
		return err
	}
	to, err := parse(d.ValidTo, "valid_to")
	if err != nil {
		return err
	}
	if from != nil && to != nil && to.Before(*from) {
		return appErrors.Clone(appErrors.ErrValidation, "valid_to must not be before valid_from")
	}
	if booking.SpecificDate != nil {
		if (from != nil && booking.SpecificDate.Before(*from)) || (to != nil && booking.SpecificDate.After(*to)) {
			return appErrors.Clone(appErrors.ErrValidation, "specific_date is outside the validity window")
		}
	}
	booking.ValidFrom = from
	booking.ValidTo = to
	return nil
}

func draftFromCreate(req CreateBookingRequest) bookingDraft {
	return bookingDraft{
		ClassID:        strings.TrimSpace(req.ClassID),
		AcademicYearID: strings.TrimSpace(req.AcademicYearID),
		SubjectID:      deref(req.SubjectID),
		TeacherID:      deref(req.TeacherID),
		RoomID:         deref(req.RoomID),
		DayOfWeek:      deref(req.DayOfWeek),
		SpecificDate:   deref(req.SpecificDate),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		IsRecurring:    req.IsRecurring,
		ValidFrom:      deref(req.ValidFrom),
		ValidTo:        deref(req.ValidTo),
	}
}

// draftFromUpdate overlays the request on the stored booking. Sending day_of_week
// without specific_date turns a dated booking into a weekly one.
func draftFromUpdate(existing models.Booking, req UpdateBookingRequest) bookingDraft {
	d := bookingDraft{
		ClassID:        existing.ClassID,
		AcademicYearID: existing.AcademicYearID,
		SubjectID:      deref(existing.SubjectID),
		TeacherID:      deref(existing.TeacherID),
		RoomID:         deref(existing.RoomID),
		StartTime:      existing.StartTime,
		EndTime:        existing.EndTime,
		ValidFrom:      formatOptionalDate(existing.ValidFrom),
		ValidTo:        formatOptionalDate(existing.ValidTo),
	}
	if existing.RecurrenceMode == models.RecurrenceDated {
		d.SpecificDate = formatOptionalDate(existing.SpecificDate)
	} else {
		d.DayOfWeek = deref(existing.DayOfWeek)
		d.IsRecurring = &existing.IsRecurring
	}

	override := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	override(&d.ClassID, req.ClassID)
	override(&d.AcademicYearID, req.AcademicYearID)
	override(&d.SubjectID, req.SubjectID)
	override(&d.TeacherID, req.TeacherID)
	override(&d.RoomID, req.RoomID)
	override(&d.StartTime, req.StartTime)
	override(&d.EndTime, req.EndTime)
	override(&d.ValidFrom, req.ValidFrom)
	override(&d.ValidTo, req.ValidTo)
	if req.DayOfWeek != nil {
		d.DayOfWeek = strings.TrimSpace(*req.DayOfWeek)
		if req.SpecificDate == nil {
			d.SpecificDate = ""
		}
	}
	override(&d.SpecificDate, req.SpecificDate)
	if req.IsRecurring != nil {
		d.IsRecurring = req.IsRecurring
	}
	return d
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func formatOptionalDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return timeslot.FormatDate(*value)
}
