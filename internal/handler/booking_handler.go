package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type bookingService interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error)
	Get(ctx context.Context, tenantID, id string) (*models.Booking, error)
	Create(ctx context.Context, tenantID string, req service.CreateBookingRequest) (*models.Booking, error)
	Update(ctx context.Context, tenantID, id string, req service.UpdateBookingRequest) (*models.Booking, error)
	SetStatus(ctx context.Context, tenantID, id string, req service.UpdateBookingStatusRequest) (*models.Booking, error)
	Delete(ctx context.Context, tenantID, id string) error
	Purge(ctx context.Context, tenantID, id string) error
	AddException(ctx context.Context, tenantID, id string, req service.AddExceptionRequest) (*models.Booking, error)
}

type timetableExporter interface {
	ClassTimetable(ctx context.Context, tenantID, classID, format string) (*service.TimetableFile, error)
}

// BookingHandler exposes the timetable booking engine.
type BookingHandler struct {
	service  bookingService
	exporter timetableExporter
	pageSize int
}

// NewBookingHandler constructs the handler. pageSize applies when a list request omits limit.
func NewBookingHandler(svc bookingService, exporter timetableExporter, pageSize int) *BookingHandler {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &BookingHandler{service: svc, exporter: exporter, pageSize: pageSize}
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param classId query string false "Filter by class"
// @Param teacherId query string false "Filter by teacher"
// @Param roomId query string false "Filter by room"
// @Param academicYearId query string false "Filter by academic year"
// @Param dayOfWeek query string false "Filter by weekday"
// @Param date query string false "Filter by specific date (YYYY-MM-DD)"
// @Param status query string false "active, inactive or cancelled"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingFilter{
		TenantID:       tenantFromContext(c),
		ClassID:        c.Query("classId"),
		TeacherID:      c.Query("teacherId"),
		RoomID:         c.Query("roomId"),
		AcademicYearID: c.Query("academicYearId"),
		DayOfWeek:      c.Query("dayOfWeek"),
		SpecificDate:   c.Query("date"),
		Status:         models.BookingStatus(c.Query("status")),
	}
	filter.Page, filter.PageSize = pageParams(c, h.pageSize)

	bookings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Get godoc
// @Summary Get booking detail
// @Tags Bookings
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.service.Get(c.Request.Context(), tenantFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Create godoc
// @Summary Create booking
// @Description Validates references and time, then books the slot if no class, teacher or room collision exists.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param payload body service.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.service.Create(c.Request.Context(), tenantFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Update godoc
// @Summary Update booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Booking ID"
// @Param payload body service.UpdateBookingRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	var req service.UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.service.Update(c.Request.Context(), tenantFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// SetStatus godoc
// @Summary Deactivate or cancel booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Booking ID"
// @Param payload body service.UpdateBookingStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) SetStatus(c *gin.Context) {
	var req service.UpdateBookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.service.SetStatus(c.Request.Context(), tenantFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Delete godoc
// @Summary Cancel booking
// @Description Idempotent: unknown or already cancelled bookings also return 204.
// @Tags Bookings
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Booking ID"
// @Success 204
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), tenantFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Purge godoc
// @Summary Permanently delete booking
// @Tags Bookings
// @Security BearerAuth
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Booking ID"
// @Success 204
// @Router /bookings/{id}/purge [delete]
func (h *BookingHandler) Purge(c *gin.Context) {
	if err := h.service.Purge(c.Request.Context(), tenantFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddException godoc
// @Summary Skip one occurrence of a weekly booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param id path string true "Booking ID"
// @Param payload body service.AddExceptionRequest true "Exception payload"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/exceptions [post]
func (h *BookingHandler) AddException(c *gin.Context) {
	var req service.AddExceptionRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.service.AddException(c.Request.Context(), tenantFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Export godoc
// @Summary Export a class timetable
// @Tags Bookings
// @Produce text/csv
// @Produce application/pdf
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Param classId query string true "Class ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	classID := c.Query("classId")
	if classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId is required"))
		return
	}
	file, err := h.exporter.ClassTimetable(c.Request.Context(), tenantFromContext(c), classID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
