package service

import (
	"context"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func yearRequest(name, start, end string, active bool, periods ...PeriodRequest) CreateAcademicYearRequest {
	return CreateAcademicYearRequest{Name: name, StartDate: start, EndDate: end, IsActive: active, Periods: periods}
}

func TestCalendarServiceCreateYearWithPeriods(t *testing.T) {
	store := newMemYearStore()
	svc := NewCalendarService(store, nil, nil)

	year, err := svc.CreateYear(context.Background(), testTenant, yearRequest("2025/2026", "2025-07-14", "2026-06-26", true,
		PeriodRequest{Name: "Semester 2", StartDate: "2026-01-05", EndDate: "2026-06-26"},
		PeriodRequest{Name: "Semester 1", StartDate: "2025-07-14", EndDate: "2025-12-19"},
	))
	require.NoError(t, err)
	assert.True(t, year.IsActive)
	require.Len(t, year.Periods, 2)
	assert.Equal(t, "Semester 1", year.Periods[0].Name)
	assert.Equal(t, 1, year.Periods[0].Order)
	assert.Equal(t, 2, year.Periods[1].Order)

	active, err := svc.GetActiveYear(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, year.ID, active.ID)
}

func TestCalendarServicePeriodValidation(t *testing.T) {
	cases := []struct {
		name    string
		periods []PeriodRequest
	}{
		{"ends before start", []PeriodRequest{{Name: "T1", StartDate: "2025-09-01", EndDate: "2025-08-01"}}},
		{"outside year", []PeriodRequest{{Name: "T1", StartDate: "2025-06-01", EndDate: "2025-08-01"}}},
		{"overlap", []PeriodRequest{
			{Name: "T1", StartDate: "2025-07-14", EndDate: "2025-10-01"},
			{Name: "T2", StartDate: "2025-09-15", EndDate: "2025-12-19"},
		}},
		{"shared boundary day", []PeriodRequest{
			{Name: "T1", StartDate: "2025-07-14", EndDate: "2025-10-01"},
			{Name: "T2", StartDate: "2025-10-01", EndDate: "2025-12-19"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemYearStore()
			svc := NewCalendarService(store, nil, nil)
			_, err := svc.CreateYear(context.Background(), testTenant, yearRequest("2025/2026", "2025-07-14", "2026-06-26", false, tc.periods...))
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidPeriodRange.Code), "got %v", err)
			assert.Empty(t, store.items, "nothing is persisted")
		})
	}
}

func TestCalendarServiceCreateYearValidation(t *testing.T) {
	svc := NewCalendarService(newMemYearStore(), nil, nil)
	ctx := context.Background()

	_, err := svc.CreateYear(ctx, testTenant, yearRequest("", "2025-07-14", "2026-06-26", false))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.CreateYear(ctx, testTenant, yearRequest("2025/2026", "2026-06-26", "2025-07-14", false))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.CreateYear(ctx, testTenant, yearRequest("2025/2026", "14-07-2025", "2026-06-26", false))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.CreateYear(ctx, "bad tenant!", yearRequest("2025/2026", "2025-07-14", "2026-06-26", false))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTenant.Code))
}

func TestCalendarServiceDuplicateName(t *testing.T) {
	store := newMemYearStore()
	svc := NewCalendarService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateYear(ctx, testTenant, yearRequest("2025/2026", "2025-07-14", "2026-06-26", false))
	require.NoError(t, err)
	_, err = svc.CreateYear(ctx, testTenant, yearRequest("2025/2026", "2025-07-14", "2026-06-26", false))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateName.Code))

	_, err = svc.CreateYear(ctx, "school-b", yearRequest("2025/2026", "2025-07-14", "2026-06-26", false))
	assert.NoError(t, err, "names are unique per tenant only")

	store.createErr = &pq.Error{Code: "23505", Constraint: "academic_years_tenant_name_key"}
	_, err = svc.CreateYear(ctx, testTenant, yearRequest("2026/2027", "2026-07-13", "2027-06-25", false))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateName.Code))
}

func TestCalendarServiceSingleActiveYear(t *testing.T) {
	store := newMemYearStore()
	svc := NewCalendarService(store, nil, nil)
	ctx := context.Background()

	first, err := svc.CreateYear(ctx, testTenant, yearRequest("2025/2026", "2025-07-14", "2026-06-26", true))
	require.NoError(t, err)
	second, err := svc.CreateYear(ctx, testTenant, yearRequest("2026/2027", "2026-07-13", "2027-06-25", true))
	require.NoError(t, err)
	assert.Equal(t, 1, store.activeCount(testTenant))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := first.ID
			if i%2 == 1 {
				id = second.ID
			}
			_, err := svc.SetActive(ctx, testTenant, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, store.activeCount(testTenant))

	activated, err := svc.SetActive(ctx, testTenant, first.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	active, err := svc.GetActiveYear(ctx, testTenant)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
}

func TestCalendarServiceNoActiveYear(t *testing.T) {
	svc := NewCalendarService(newMemYearStore(), nil, nil)

	_, err := svc.GetActiveYear(context.Background(), testTenant)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, true, appErr.Details["retryable"])
}

func TestCalendarServiceArchiveAndDelete(t *testing.T) {
	store := newMemYearStore()
	svc := NewCalendarService(store, nil, nil)
	ctx := context.Background()

	year, err := svc.CreateYear(ctx, testTenant, yearRequest("2025/2026", "2025-07-14", "2026-06-26", true))
	require.NoError(t, err)

	archived, err := svc.Archive(ctx, testTenant, year.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AcademicYearStatusArchived, archived.Status)
	assert.False(t, archived.IsActive)

	_, err = svc.SetActive(ctx, testTenant, year.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	store.refs[year.ID] = 3
	err = svc.Delete(ctx, testTenant, year.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	store.refs[year.ID] = 0
	require.NoError(t, svc.Delete(ctx, testTenant, year.ID))
	_, err = svc.Get(ctx, testTenant, year.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = svc.Get(ctx, "school-b", "year-404")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestCalendarServiceDeleteLosesRaceToNewReference(t *testing.T) {
	store := newMemYearStore()
	svc := NewCalendarService(store, nil, nil)
	ctx := context.Background()

	year, err := svc.CreateYear(ctx, testTenant, yearRequest("2025/2026", "2025-07-14", "2026-06-26", false))
	require.NoError(t, err)

	store.deleteErr = &pq.Error{Code: "23503", Constraint: "classes_academic_year_id_fkey"}
	err = svc.Delete(ctx, testTenant, year.ID)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "archive it instead")
	assert.False(t, appErrors.Retryable(err))

	_, err = svc.Get(ctx, testTenant, year.ID)
	assert.NoError(t, err)
}

