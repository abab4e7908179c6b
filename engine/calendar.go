package engine

import "time"

// =============================================================================
// HOLIDAY CALENDAR - Pluggable public-holiday lookup
// =============================================================================

// HolidayCalendar answers whether a calendar date is a public holiday.
// The holiday package provides a fetching implementation; the zero-value
// default treats every day as an ordinary workday.
type HolidayCalendar interface {
	// IsHoliday returns the holiday name and true when date (YYYY-MM-DD) is
	// a holiday. A date absent from the calendar is not a holiday.
	IsHoliday(date string) (string, bool)
}

// DefaultHolidayCalendar is a no-op calendar for when holiday data is
// unavailable or disabled.
type DefaultHolidayCalendar struct{}

func (DefaultHolidayCalendar) IsHoliday(string) (string, bool) { return "", false }

// IsSpecialDay reports whether t falls on a weekend or a holiday according
// to cal. Special-day status takes priority over the night premium when
// classifying rates.
func IsSpecialDay(t time.Time, cal HolidayCalendar) bool {
	if IsWeekend(t) {
		return true
	}
	if cal == nil {
		return false
	}
	_, holiday := cal.IsHoliday(FormatDate(t))
	return holiday
}
