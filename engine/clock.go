package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// WALL-CLOCK HELPERS - Local-time parsing for shift intervals
// =============================================================================
// The tracker assumes a single local wall clock: dates and times of day are
// combined in time.Local and never shifted between zones.

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD calendar date at local midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// ParseClock parses an HH:MM time of day, returning hour and minute.
func ParseClock(clock string) (hour, minute int, err error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatDate renders t as a YYYY-MM-DD date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Bounds resolves the shift to absolute instants. When the end instant does
// not come after the start, the shift is an overnight one and the end
// advances by one calendar day.
func (s ShiftInterval) Bounds() (start, end time.Time, err error) {
	day, err := ParseDate(s.Date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	sh, sm, err := ParseClock(s.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := ParseClock(s.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start = time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, time.Local)
	end = time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, time.Local)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
