package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type teacherService interface {
	List(ctx context.Context, filter models.ReferenceFilter) ([]models.Teacher, *models.Pagination, error)
	Create(ctx context.Context, tenantID string, req service.CreateTeacherRequest) (*models.Teacher, error)
}

type subjectService interface {
	List(ctx context.Context, filter models.ReferenceFilter) ([]models.Subject, *models.Pagination, error)
	Create(ctx context.Context, tenantID string, req service.CreateSubjectRequest) (*models.Subject, error)
}

type roomService interface {
	List(ctx context.Context, filter models.ReferenceFilter) ([]models.Room, *models.Pagination, error)
	Create(ctx context.Context, tenantID string, req service.CreateRoomRequest) (*models.Room, error)
}

// ReferenceHandler exposes the teacher, subject and room catalogues bookings point at.
type ReferenceHandler struct {
	teachers teacherService
	subjects subjectService
	rooms    roomService
}

// NewReferenceHandler constructs the handler.
func NewReferenceHandler(teachers teacherService, subjects subjectService, rooms roomService) *ReferenceHandler {
	return &ReferenceHandler{teachers: teachers, subjects: subjects, rooms: rooms}
}

func referenceFilter(c *gin.Context) models.ReferenceFilter {
	filter := models.ReferenceFilter{TenantID: tenantFromContext(c), Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.PageSize = pageParams(c, defaultPageSize)
	return filter
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// ListTeachers godoc
// @Summary List teachers
// @Tags References
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param search query string false "Search keyword"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *ReferenceHandler) ListTeachers(c *gin.Context) {
	items, pagination, err := h.teachers.List(c.Request.Context(), referenceFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// CreateTeacher godoc
// @Summary Register teacher
// @Tags References
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param payload body service.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *ReferenceHandler) CreateTeacher(c *gin.Context) {
	var req service.CreateTeacherRequest
	if !bindJSON(c, &req) {
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), tenantFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// ListSubjects godoc
// @Summary List subjects
// @Tags References
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *ReferenceHandler) ListSubjects(c *gin.Context) {
	items, pagination, err := h.subjects.List(c.Request.Context(), referenceFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// CreateSubject godoc
// @Summary Create subject
// @Tags References
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param payload body service.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /subjects [post]
func (h *ReferenceHandler) CreateSubject(c *gin.Context) {
	var req service.CreateSubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.subjects.Create(c.Request.Context(), tenantFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// ListRooms godoc
// @Summary List rooms
// @Tags References
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *ReferenceHandler) ListRooms(c *gin.Context) {
	items, pagination, err := h.rooms.List(c.Request.Context(), referenceFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// CreateRoom godoc
// @Summary Create room
// @Tags References
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param payload body service.CreateRoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *ReferenceHandler) CreateRoom(c *gin.Context) {
	var req service.CreateRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), tenantFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}
