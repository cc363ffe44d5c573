package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/tenant"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/timeslot"
)

type classBookingLister interface {
	ListActiveByClass(ctx context.Context, tenantID, classID string) ([]models.Booking, error)
}

// TimetableFile is a rendered timetable ready to stream.
type TimetableFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

var timetableHeaders = []string{"When", "Start", "End", "Subject", "Teacher", "Room", "Exceptions"}

// ExportService renders a class timetable as CSV or PDF.
type ExportService struct {
	bookings classBookingLister
	refs     bookingReferences
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(bookings classBookingLister, refs bookingReferences, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{bookings: bookings, refs: refs, logger: logger, now: time.Now}
}

// ClassTimetable lists the class's active bookings and renders them in format.
func (s *ExportService) ClassTimetable(ctx context.Context, tenantID, classID, format string) (*TimetableFile, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	class, err := s.refs.Class(ctx, tenantID, classID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListActiveByClass(ctx, tenantID, class.ID)
	if err != nil {
		return nil, storageFailure(err, "failed to load class timetable")
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Timetable %s", class.Name),
		Headers: timetableHeaders,
		Rows:    make([]map[string]string, 0, len(bookings)),
	}
	for _, b := range bookings {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"When":       b.RecurrenceKey,
			"Start":      b.StartTime,
			"End":        b.EndTime,
			"Subject":    s.label(ctx, tenantID, models.ReferenceSubject, b.SubjectID),
			"Teacher":    s.label(ctx, tenantID, models.ReferenceTeacher, b.TeacherID),
			"Room":       s.label(ctx, tenantID, models.ReferenceRoom, b.RoomID),
			"Exceptions": exceptionDates(b.Exceptions),
		})
	}

	data, err := export.Render(f, dataset)
	if err != nil {
		s.logger.Error("timetable render failed", zap.String("tenant_id", tenantID), zap.String("class_id", class.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	return &TimetableFile{
		Filename:    fmt.Sprintf("timetable_%s_%s.%s", slug(class.Name), timeslot.FormatDate(s.now()), f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

// label falls back to the raw id when the entity can no longer be resolved.
func (s *ExportService) label(ctx context.Context, tenantID string, kind models.ReferenceKind, id *string) string {
	if id == nil || *id == "" {
		return ""
	}
	entity, err := s.refs.Resolve(ctx, tenantID, kind, *id)
	if err != nil {
		return *id
	}
	if entity.Code != "" && entity.Code != entity.Label {
		return fmt.Sprintf("%s (%s)", entity.Label, entity.Code)
	}
	return entity.Label
}

func exceptionDates(exceptions models.BookingExceptions) string {
	dates := make([]string, 0, len(exceptions))
	for _, ex := range exceptions {
		dates = append(dates, ex.Date)
	}
	return strings.Join(dates, " ")
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "class"
	}
	return b.String()
}
