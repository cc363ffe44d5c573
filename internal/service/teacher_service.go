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

type teacherRepository interface {
	List(ctx context.Context, filter models.ReferenceFilter) ([]models.Teacher, int, error)
	ExistsByEmployeeID(ctx context.Context, tenantID, employeeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
}

// CreateTeacherRequest is the payload for registering a teacher.
type CreateTeacherRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,max=64"`
	FullName   string `json:"full_name" validate:"required,max=200"`
}

// TeacherService manages the teacher reference data.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a teacher service.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns a tenant's teachers.
func (s *TeacherService) List(ctx context.Context, filter models.ReferenceFilter) ([]models.Teacher, *models.Pagination, error) {
	if err := tenant.Validate(filter.TenantID); err != nil {
		return nil, nil, err
	}
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageFailure(err, "failed to list teachers")
	}
	page, size := pageMeta(filter.Page, filter.PageSize)
	return teachers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create registers a teacher with a tenant-unique employee id.
func (s *TeacherService) Create(ctx context.Context, tenantID string, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid teacher payload")
	}
	employeeID := strings.TrimSpace(req.EmployeeID)
	duplicate := appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("employee id %q already registered", employeeID))

	exists, err := s.repo.ExistsByEmployeeID(ctx, tenantID, employeeID)
	if err != nil {
		return nil, storageFailure(err, "failed to check employee id")
	}
	if exists {
		return nil, duplicate
	}

	teacher := &models.Teacher{TenantID: tenantID, EmployeeID: employeeID, FullName: strings.TrimSpace(req.FullName), Active: true}
	if err := s.repo.Create(ctx, teacher); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, duplicate
		}
		return nil, storageFailure(err, "failed to create teacher")
	}
	return teacher, nil
}
