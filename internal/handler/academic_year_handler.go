package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type calendarService interface {
	List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error)
	Get(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
	GetActiveYear(ctx context.Context, tenantID string) (*models.AcademicYear, error)
	CreateYear(ctx context.Context, tenantID string, req service.CreateAcademicYearRequest) (*models.AcademicYear, error)
	SetActive(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
	Archive(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// AcademicYearHandler exposes the academic calendar.
type AcademicYearHandler struct {
	service calendarService
}

// NewAcademicYearHandler constructs the handler.
func NewAcademicYearHandler(svc calendarService) *AcademicYearHandler {
	return &AcademicYearHandler{service: svc}
}

// List godoc
// @Summary List academic years
// @Tags AcademicYears
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param status query string false "active or archived"
// @Param active query bool false "Only the active year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param order query string false "asc or desc by start date"
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *AcademicYearHandler) List(c *gin.Context) {
	filter := models.AcademicYearFilter{
		TenantID:  tenantFromContext(c),
		Status:    models.AcademicYearStatus(c.Query("status")),
		SortOrder: c.Query("order"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be true or false"))
			return
		}
		filter.IsActive = &active
	}
	filter.Page, filter.PageSize = pageParams(c, defaultPageSize)

	years, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, pagination)
}

// Active godoc
// @Summary Get the active academic year
// @Tags AcademicYears
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academic-years/active [get]
func (h *AcademicYearHandler) Active(c *gin.Context) {
	year, err := h.service.GetActiveYear(c.Request.Context(), tenantFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Get godoc
// @Summary Get academic year detail
// @Tags AcademicYears
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id} [get]
func (h *AcademicYearHandler) Get(c *gin.Context) {
	year, err := h.service.Get(c.Request.Context(), tenantFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Create godoc
// @Summary Create academic year
// @Tags AcademicYears
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param payload body service.CreateAcademicYearRequest true "Academic year payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /academic-years [post]
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var req service.CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.CreateYear(c.Request.Context(), tenantFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Activate godoc
// @Summary Make the academic year the active one
// @Tags AcademicYears
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id}/activate [post]
func (h *AcademicYearHandler) Activate(c *gin.Context) {
	year, err := h.service.SetActive(c.Request.Context(), tenantFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Archive godoc
// @Summary Archive academic year
// @Tags AcademicYears
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id}/archive [post]
func (h *AcademicYearHandler) Archive(c *gin.Context) {
	year, err := h.service.Archive(c.Request.Context(), tenantFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Delete godoc
// @Summary Delete an unused academic year
// @Tags AcademicYears
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Academic year ID"
// @Success 204
// @Router /academic-years/{id} [delete]
func (h *AcademicYearHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), tenantFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
