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

type roomRepository interface {
	List(ctx context.Context, filter models.ReferenceFilter) ([]models.Room, int, error)
	ExistsByName(ctx context.Context, tenantID, name string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
}

// CreateRoomRequest is the payload for creating a room.
type CreateRoomRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"gte=0,lte=10000"`
}

// RoomService manages rooms.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs the service.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns a tenant's rooms.
func (s *RoomService) List(ctx context.Context, filter models.ReferenceFilter) ([]models.Room, *models.Pagination, error) {
	if err := tenant.Validate(filter.TenantID); err != nil {
		return nil, nil, err
	}
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageFailure(err, "failed to list rooms")
	}
	page, size := pageMeta(filter.Page, filter.PageSize)
	return rooms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create adds a room with a tenant-unique name.
func (s *RoomService) Create(ctx context.Context, tenantID string, req CreateRoomRequest) (*models.Room, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid room payload")
	}
	name := strings.TrimSpace(req.Name)
	duplicate := appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("room %q already exists", name))

	exists, err := s.repo.ExistsByName(ctx, tenantID, name)
	if err != nil {
		return nil, storageFailure(err, "failed to check room name")
	}
	if exists {
		return nil, duplicate
	}

	room := &models.Room{TenantID: tenantID, Name: name, Capacity: req.Capacity}
	if err := s.repo.Create(ctx, room); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, duplicate
		}
		return nil, storageFailure(err, "failed to create room")
	}
	return room, nil
}
