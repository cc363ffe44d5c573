package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/timeslot"
)

type bookingAxisReader interface {
	ListActiveOnAxis(ctx context.Context, exec sqlx.ExtContext, tenantID string, resource models.ResourceKey, recurrenceKey, excludeID string) ([]models.Booking, error)
}

// ConflictDetector decides whether a candidate window collides with an active booking
// on the same resource axis. It reports conflicts and never resolves them.
type ConflictDetector struct {
	repo          bookingAxisReader
	roomConflicts bool
}

// NewConflictDetector builds a detector. roomConflicts adds the room axis to Check.
func NewConflictDetector(repo bookingAxisReader, roomConflicts bool) *ConflictDetector {
	return &ConflictDetector{repo: repo, roomConflicts: roomConflicts}
}

// Axes lists the resource axes a booking occupies, in check order.
func (d *ConflictDetector) Axes(booking models.Booking) []models.ResourceKey {
	return booking.Resources(d.roomConflicts)
}

// FindConflict returns the first active booking on the axis whose window overlaps the
// candidate, or nil. exec lets the scan run inside the caller's transaction.
func (d *ConflictDetector) FindConflict(ctx context.Context, exec sqlx.ExtContext, tenantID string, resource models.ResourceKey, recurrenceKey string, window timeslot.Window, excludeID string) (*models.Booking, error) {
	existing, err := d.repo.ListActiveOnAxis(ctx, exec, tenantID, resource, recurrenceKey, excludeID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		b := existing[i]
		if b.ID == excludeID {
			continue
		}
		if timeslot.Overlaps(timeslot.Window{Start: b.StartMinute, End: b.EndMinute}, window) {
			return &b, nil
		}
	}
	return nil, nil
}

// HasConflict reports whether any active booking on the axis overlaps the window.
func (d *ConflictDetector) HasConflict(ctx context.Context, exec sqlx.ExtContext, tenantID string, resource models.ResourceKey, recurrenceKey string, window timeslot.Window, excludeID string) (bool, error) {
	hit, err := d.FindConflict(ctx, exec, tenantID, resource, recurrenceKey, window, excludeID)
	if err != nil {
		return false, err
	}
	return hit != nil, nil
}

// Check runs the class axis, then the teacher axis when a teacher is set, then the room
// axis when enabled. The first collision wins.
func (d *ConflictDetector) Check(ctx context.Context, exec sqlx.ExtContext, candidate models.Booking, excludeID string) (*models.ScheduleConflict, error) {
	window := timeslot.Window{Start: candidate.StartMinute, End: candidate.EndMinute}
	for _, axis := range d.Axes(candidate) {
		hit, err := d.FindConflict(ctx, exec, candidate.TenantID, axis, candidate.RecurrenceKey, window, excludeID)
		if err != nil {
			return nil, err
		}
		if hit != nil {
			return &models.ScheduleConflict{
				BookingID:     hit.ID,
				Resource:      axis.Kind,
				ResourceID:    axis.ID,
				RecurrenceKey: candidate.RecurrenceKey,
				StartTime:     hit.StartTime,
				EndTime:       hit.EndTime,
			}, nil
		}
	}
	return nil, nil
}
