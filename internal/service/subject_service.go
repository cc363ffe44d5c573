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

type subjectRepository interface {
	List(ctx context.Context, filter models.ReferenceFilter) ([]models.Subject, int, error)
	ExistsByCode(ctx context.Context, tenantID, code string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Code string `json:"code" validate:"required,max=32"`
	Name string `json:"name" validate:"required,max=200"`
}

// SubjectService manages subjects.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs the service.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns a tenant's subjects.
func (s *SubjectService) List(ctx context.Context, filter models.ReferenceFilter) ([]models.Subject, *models.Pagination, error) {
	if err := tenant.Validate(filter.TenantID); err != nil {
		return nil, nil, err
	}
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageFailure(err, "failed to list subjects")
	}
	page, size := pageMeta(filter.Page, filter.PageSize)
	return subjects, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create adds a subject with a tenant-unique code.
func (s *SubjectService) Create(ctx context.Context, tenantID string, req CreateSubjectRequest) (*models.Subject, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid subject payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	duplicate := appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("subject code %q already exists", code))

	exists, err := s.repo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, storageFailure(err, "failed to check subject code")
	}
	if exists {
		return nil, duplicate
	}

	subject := &models.Subject{TenantID: tenantID, Code: code, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Create(ctx, subject); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, duplicate
		}
		return nil, storageFailure(err, "failed to create subject")
	}
	return subject, nil
}
