package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/tenant"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/timeslot"
)

type academicYearRepository interface {
	List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
	FindActive(ctx context.Context, tenantID string) (*models.AcademicYear, error)
	ExistsByName(ctx context.Context, tenantID, name string) (bool, error)
	Create(ctx context.Context, year *models.AcademicYear, activate bool) error
	SetActive(ctx context.Context, tenantID, id string) error
	Archive(ctx context.Context, tenantID, id string) error
	CountReferences(ctx context.Context, tenantID, id string) (int, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// PeriodRequest describes one period of a new academic year.
type PeriodRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Order     int    `json:"order" validate:"gte=0"`
}

// CreateAcademicYearRequest is the payload for creating an academic year.
type CreateAcademicYearRequest struct {
	Name      string          `json:"name" validate:"required,max=100"`
	StartDate string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsActive  bool            `json:"is_active"`
	Periods   []PeriodRequest `json:"periods" validate:"dive"`
}

// CalendarService manages academic years and their periods.
type CalendarService struct {
	repo      academicYearRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService creates a calendar service.
func NewCalendarService(repo academicYearRepository, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, validator: validate, logger: logger}
}

// List returns a tenant's academic years.
func (s *CalendarService) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error) {
	if err := tenant.Validate(filter.TenantID); err != nil {
		return nil, nil, err
	}
	years, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageFailure(err, "failed to list academic years")
	}
	page, size := pageMeta(filter.Page, filter.PageSize)
	return years, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one academic year with its periods.
func (s *CalendarService) Get(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	year, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "academic year not found", "failed to load academic year")
	}
	return year, nil
}

// GetActiveYear returns the tenant's single active academic year. Absence is NOT_FOUND
// and goes away once a year is activated, so callers may retry.
func (s *CalendarService) GetActiveYear(ctx context.Context, tenantID string) (*models.AcademicYear, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	year, err := s.repo.FindActive(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active academic year; activate one and retry").
				WithDetails(map[string]interface{}{"reason": "no_active_academic_year", "retryable": true})
		}
		return nil, storageFailure(err, "failed to load active academic year")
	}
	return year, nil
}

// CreateYear validates and stores a new academic year. When the request marks it active,
// the tenant's previous active year is deactivated in the same transaction.
func (s *CalendarService) CreateYear(ctx context.Context, tenantID string, req CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid academic year payload")
	}
	name := strings.TrimSpace(req.Name)
	start, err := timeslot.ParseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start_date")
	}
	end, err := timeslot.ParseDate(req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end_date")
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be before end_date")
	}

	year := &models.AcademicYear{
		TenantID:  tenantID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    models.AcademicYearStatusActive,
	}
	periods, err := buildPeriods(*year, req.Periods)
	if err != nil {
		return nil, err
	}
	year.Periods = periods

	exists, err := s.repo.ExistsByName(ctx, tenantID, name)
	if err != nil {
		return nil, storageFailure(err, "failed to check academic year name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("academic year %q already exists", name))
	}

	if err := s.repo.Create(ctx, year, req.IsActive); err != nil {
		if database.IsUniqueViolation(err) && database.ConstraintName(err) != "academic_years_one_active_uq" {
			return nil, appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("academic year %q already exists", name))
		}
		return nil, storageFailure(err, "failed to create academic year")
	}
	s.logger.Info("academic year created",
		zap.String("tenant_id", tenantID),
		zap.String("academic_year_id", year.ID),
		zap.Bool("active", year.IsActive))
	return year, nil
}

// buildPeriods parses, orders and checks periods: each must sit inside the year, end on
// or after its start, and share no day with another.
func buildPeriods(year models.AcademicYear, reqs []PeriodRequest) ([]models.Period, error) {
	periods := make([]models.Period, 0, len(reqs))
	for _, req := range reqs {
		start, err := timeslot.ParseDate(req.StartDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidPeriodRange.Code, appErrors.ErrInvalidPeriodRange.Status, "invalid period start_date")
		}
		end, err := timeslot.ParseDate(req.EndDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidPeriodRange.Code, appErrors.ErrInvalidPeriodRange.Status, "invalid period end_date")
		}
		name := strings.TrimSpace(req.Name)
		if end.Before(start) {
			return nil, appErrors.Clone(appErrors.ErrInvalidPeriodRange, fmt.Sprintf("period %q ends before it starts", name))
		}
		if !year.Contains(start) || !year.Contains(end) {
			return nil, appErrors.Clone(appErrors.ErrInvalidPeriodRange, fmt.Sprintf("period %q falls outside the academic year", name))
		}
		periods = append(periods, models.Period{Name: name, StartDate: start, EndDate: end, Order: req.Order, IsActive: true})
	}

	sort.SliceStable(periods, func(i, j int) bool { return periods[i].StartDate.Before(periods[j].StartDate) })
	for i := 1; i < len(periods); i++ {
		prev, cur := periods[i-1], periods[i]
		if !cur.StartDate.After(prev.EndDate) {
			return nil, appErrors.Clone(appErrors.ErrInvalidPeriodRange, fmt.Sprintf("period %q overlaps period %q", cur.Name, prev.Name)).
				WithDetails(map[string]interface{}{"period": cur.Name, "overlaps": prev.Name})
		}
	}
	for i := range periods {
		if periods[i].Order == 0 {
			periods[i].Order = i + 1
		}
	}
	return periods, nil
}

// SetActive makes the year the tenant's only active year.
func (s *CalendarService) SetActive(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	year, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if year.Status == models.AcademicYearStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrValidation, "archived academic years cannot be activated")
	}
	if year.IsActive {
		return year, nil
	}
	if err := s.repo.SetActive(ctx, tenantID, id); err != nil {
		return nil, notFoundOr(err, "academic year not found", "failed to activate academic year")
	}
	s.logger.Info("academic year activated", zap.String("tenant_id", tenantID), zap.String("academic_year_id", id))
	return s.Get(ctx, tenantID, id)
}

// Archive retires the year; an archived year is never active.
func (s *CalendarService) Archive(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	year, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if year.Status == models.AcademicYearStatusArchived {
		return year, nil
	}
	if err := s.repo.Archive(ctx, tenantID, id); err != nil {
		return nil, notFoundOr(err, "academic year not found", "failed to archive academic year")
	}
	return s.Get(ctx, tenantID, id)
}

const yearInUseMessage = "academic year is referenced by classes or bookings; archive it instead"

// Delete removes a year nothing references.
func (s *CalendarService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	refs, err := s.repo.CountReferences(ctx, tenantID, id)
	if err != nil {
		return storageFailure(err, "failed to check academic year usage")
	}
	if refs > 0 {
		return appErrors.Clone(appErrors.ErrValidation, yearInUseMessage)
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		// a class or booking may have landed after the count
		if database.IsForeignKeyViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, yearInUseMessage)
		}
		return storageFailure(err, "failed to delete academic year")
	}
	return nil
}
