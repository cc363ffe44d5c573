package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/tenant"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.Class, error)
	ExistsByName(ctx context.Context, tenantID, academicYearID, name string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
}

type teacherResolver interface {
	Teacher(ctx context.Context, tenantID, id string) (*models.ReferenceEntity, error)
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Level          string  `json:"level" validate:"required,max=50"`
	Capacity       int     `json:"capacity" validate:"gte=0,lte=1000"`
	AcademicYearID string  `json:"academic_year_id" validate:"required"`
	MainTeacherID  *string `json:"main_teacher_id"`
}

// ClassService orchestrates class workflows.
type ClassService struct {
	repo      classRepository
	years     academicYearReader
	teachers  teacherResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a class service.
func NewClassService(repo classRepository, years academicYearReader, teachers teacherResolver, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, years: years, teachers: teachers, validator: validate, logger: logger}
}

// List returns a tenant's classes.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	if err := tenant.Validate(filter.TenantID); err != nil {
		return nil, nil, err
	}
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageFailure(err, "failed to list classes")
	}
	page, size := pageMeta(filter.Page, filter.PageSize)
	return classes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a class by ID.
func (s *ClassService) Get(ctx context.Context, tenantID, id string) (*models.Class, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	class, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "class not found", "failed to load class")
	}
	return class, nil
}

// Create registers a class within one of the tenant's academic years.
func (s *ClassService) Create(ctx context.Context, tenantID string, req CreateClassRequest) (*models.Class, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid class payload")
	}

	year, err := s.years.FindByID(ctx, tenantID, req.AcademicYearID)
	if err != nil {
		return nil, notFoundOr(err, "academic year not found", "failed to load academic year")
	}
	if year.Status == models.AcademicYearStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot add classes to an archived academic year")
	}

	var mainTeacher *string
	if req.MainTeacherID != nil && strings.TrimSpace(*req.MainTeacherID) != "" {
		teacher, err := s.teachers.Teacher(ctx, tenantID, *req.MainTeacherID)
		if err != nil {
			return nil, err
		}
		mainTeacher = &teacher.ID
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.ExistsByName(ctx, tenantID, year.ID, name)
	if err != nil {
		return nil, storageFailure(err, "failed to check class name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("class %q already exists in this academic year", name))
	}

	class := &models.Class{
		TenantID:       tenantID,
		Name:           name,
		Level:          strings.TrimSpace(req.Level),
		Capacity:       req.Capacity,
		AcademicYearID: year.ID,
		MainTeacherID:  mainTeacher,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("class %q already exists in this academic year", name))
		}
		return nil, storageFailure(err, "failed to create class")
	}
	return class, nil
}
