package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	minutes, err := Normalize("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, 90, minutes)
}

func TestNormalizeRejectsNonPositiveRanges(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{name: "equal", start: "09:00", end: "09:00"},
		{name: "reversed", start: "10:00", end: "09:59"},
		{name: "midnight end", start: "23:00", end: "00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.start, tc.end)
			require.ErrorIs(t, err, ErrInvalidTimeRange)
		})
	}
}

func TestNormalizeRejectsMalformedClock(t *testing.T) {
	for _, value := range []string{"", "9am", "25:00", "12:60", "noon"} {
		_, err := Normalize(value, "23:00")
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, value)
	}
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	first := Window{Start: 9 * 60, End: 10 * 60}

	assert.True(t, Overlaps(first, Window{Start: 9*60 + 30, End: 10*60 + 30}))
	assert.True(t, Overlaps(first, Window{Start: 8 * 60, End: 11 * 60}))
	assert.False(t, Overlaps(first, Window{Start: 10 * 60, End: 11 * 60}))
	assert.False(t, Overlaps(first, Window{Start: 8 * 60, End: 9 * 60}))
}

func TestParseWindowLabels(t *testing.T) {
	w, err := ParseWindow("7:05", "08:00")
	require.NoError(t, err)
	assert.Equal(t, "07:05", w.StartLabel())
	assert.Equal(t, "08:00", w.EndLabel())
	assert.Equal(t, 55, w.Duration())
}

func TestParseDay(t *testing.T) {
	for input, want := range map[string]string{"monday": "MONDAY", "Tue": "TUESDAY", "7": "SUNDAY", " friday ": "FRIDAY"} {
		got, err := ParseDay(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDay("funday")
	assert.ErrorIs(t, err, ErrInvalidDay)
	assert.Equal(t, 3, ISOWeekday("WEDNESDAY"))
}

func TestParseDateAndDayOf(t *testing.T) {
	d, err := ParseDate("2024-09-02")
	require.NoError(t, err)
	assert.Equal(t, time.Month(9), d.Month())
	assert.Equal(t, "MONDAY", DayOf(d))
	assert.Equal(t, "2024-09-02", FormatDate(d))

	_, err = ParseDate("02/09/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
