package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestExportServiceClassTimetableCSV(t *testing.T) {
	f := newBookingFixture(t, false)
	ctx := context.Background()

	req := weekly("class-1", "MONDAY", "08:00", "09:00")
	req.TeacherID = strPtr("teacher-1")
	req.SubjectID = strPtr("subject-math")
	req.RoomID = strPtr("room-1")
	_, err := f.svc.Create(ctx, testTenant, req)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, testTenant, weekly("class-1", "MONDAY", "07:00", "08:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, testTenant, weekly("class-2", "MONDAY", "07:00", "08:00"))
	require.NoError(t, err)

	svc := NewExportService(f.store, NewReferenceRegistry(f.refs, f.refs, nil, 0, nil), nil)
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC) }

	file, err := svc.ClassTimetable(ctx, testTenant, "class-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "timetable_x_ipa_1_2025-09-01.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "When,Start,End,Subject,Teacher,Room,Exceptions", lines[0])
	assert.Equal(t, "MONDAY,07:00,08:00,,,,", lines[1])
	assert.Equal(t, "MONDAY,08:00,09:00,Mathematics (MATH),Siti Rahma (EMP-1),Lab 1,", lines[2])
}

func TestExportServiceClassTimetablePDF(t *testing.T) {
	f := newBookingFixture(t, false)
	svc := NewExportService(f.store, NewReferenceRegistry(f.refs, f.refs, nil, 0, nil), nil)

	file, err := svc.ClassTimetable(context.Background(), testTenant, "class-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownInput(t *testing.T) {
	f := newBookingFixture(t, false)
	svc := NewExportService(f.store, NewReferenceRegistry(f.refs, f.refs, nil, 0, nil), nil)
	ctx := context.Background()

	_, err := svc.ClassTimetable(ctx, testTenant, "class-1", "xlsx")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.ClassTimetable(ctx, testTenant, "class-404", "csv")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = svc.ClassTimetable(ctx, "school-b", "class-1", "csv")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}
