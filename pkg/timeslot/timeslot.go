// Package timeslot converts wall-clock "HH:MM" pairs into minute windows on a
// nominal day and answers overlap questions about them. Everything here is pure.
package timeslot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

var (
	// ErrInvalidTimeFormat is returned for values that are not HH:MM clock times.
	ErrInvalidTimeFormat = errors.New("time must use HH:MM format")
	// ErrInvalidTimeRange is returned when the end does not come strictly after the start.
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	// ErrInvalidDay is returned for unknown day-of-week values.
	ErrInvalidDay = errors.New("invalid day of week")
	// ErrInvalidDate is returned for values that are not YYYY-MM-DD dates.
	ErrInvalidDate = errors.New("date must use YYYY-MM-DD format")
)

// Window is a half-open [Start, End) interval in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// Duration returns the window length in minutes.
func (w Window) Duration() int {
	return w.End - w.Start
}

// StartLabel formats the start as HH:MM.
func (w Window) StartLabel() string {
	return FormatMinutes(w.Start)
}

// EndLabel formats the end as HH:MM.
func (w Window) EndLabel() string {
	return FormatMinutes(w.End)
}

// ParseClock parses an HH:MM value into minutes since midnight.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidTimeFormat
	}
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseWindow parses and validates a start/end pair.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	if e <= s {
		return Window{}, ErrInvalidTimeRange
	}
	return Window{Start: s, End: e}, nil
}

// Normalize returns the duration in minutes between start and end.
// It rejects, never clamps, an end that is not after the start.
func Normalize(start, end string) (int, error) {
	w, err := ParseWindow(start, end)
	if err != nil {
		return 0, err
	}
	return w.Duration(), nil
}

// Overlaps applies the half-open interval test: a.Start < b.End && a.End > b.Start.
func Overlaps(a, b Window) bool {
	return a.Start < b.End && a.End > b.Start
}

var dayNames = map[string]string{
	"MONDAY": "MONDAY", "MON": "MONDAY", "1": "MONDAY",
	"TUESDAY": "TUESDAY", "TUE": "TUESDAY", "2": "TUESDAY",
	"WEDNESDAY": "WEDNESDAY", "WED": "WEDNESDAY", "3": "WEDNESDAY",
	"THURSDAY": "THURSDAY", "THU": "THURSDAY", "4": "THURSDAY",
	"FRIDAY": "FRIDAY", "FRI": "FRIDAY", "5": "FRIDAY",
	"SATURDAY": "SATURDAY", "SAT": "SATURDAY", "6": "SATURDAY",
	"SUNDAY": "SUNDAY", "SUN": "SUNDAY", "7": "SUNDAY",
}

// ParseDay normalises weekday names, three-letter abbreviations and ISO numbers (1=Monday)
// into the upper-case English weekday name.
func ParseDay(value string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(value))
	if day, ok := dayNames[key]; ok {
		return day, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, value)
}

// DayOf returns the normalised weekday name for a calendar date.
func DayOf(date time.Time) string {
	return strings.ToUpper(date.Weekday().String())
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(dateLayout)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(day string) int {
	for i := 1; i <= 7; i++ {
		if dayNames[strconv.Itoa(i)] == day {
			return i
		}
	}
	return 0
}
