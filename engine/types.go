/*
Package engine provides the core wage computation engine.

PURPOSE:
  This package contains the types and algorithms for turning a logged work
  shift into a payable wage. Given a shift interval, a rate profile and a
  holiday calendar, the engine partitions the interval at every rate boundary
  and prices each sub-interval at the rate in force at that moment.

KEY CONCEPTS IN THIS FILE (types.go):
  - RateProfile: A named pay-rate configuration ("tag") for one employer
  - ShiftInterval: One continuous span of work anchored to a calendar date
  - WageResult: The engine output (payable wage and payable hours)
  - TagStore: Lookup of rate profiles by identifier

DESIGN PRINCIPLES:
  1. Purity: The engine performs no I/O; identical inputs give identical outputs
  2. Precision: Uses decimal.Decimal to avoid floating-point errors in money math
  3. Tolerance: Malformed profile fields sanitize to documented defaults,
     never to an error

USAGE:
  profile := engine.SanitizeProfile(engine.RateProfile{
      ID: 1, BaseRate: engine.MustDecimal("1200"),
  })
  calc := engine.Calculator{Tags: tags, Holidays: calendar}
  result := calc.CalculateWage(engine.ShiftInterval{
      Date: "2025-03-10", Start: "09:00", End: "18:00", RestMinutes: 60,
  }, profile.ID)

SEE ALSO:
  - calculator.go: Event-point segmentation algorithm
  - clock.go: Date/time-of-day parsing and helpers
  - calendar.go: Holiday calendar interface
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DEFAULTS - Applied whenever a profile field is missing or out of range
// =============================================================================

const (
	DefaultNightStartHour = 22
	DefaultNightEndHour   = 6
	DefaultPayday         = 25
	DefaultPeriodStartDay = 1
)

// =============================================================================
// RATE PROFILE - A "tag": one employer's pay configuration
// =============================================================================

// TagID identifies a rate profile. Assigned from epoch milliseconds at
// creation time and immutable afterwards.
type TagID int64

// RateProfile holds the pay rates and night-window bounds for one tag.
// Name and Color are display metadata with no computational role.
type RateProfile struct {
	ID    TagID  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`

	// Hourly rates. Non-negative; invalid input sanitizes to zero.
	BaseRate         decimal.Decimal `json:"baseRate"`
	NightRate        decimal.Decimal `json:"nightRate"`
	WeekendRate      decimal.Decimal `json:"weekendRate"`
	WeekendNightRate decimal.Decimal `json:"weekendNightRate"`

	// Night window [NightStartHour, NightEndHour), wrapping past midnight
	// when NightStartHour >= NightEndHour. Hours in [0,23].
	NightStartHour int `json:"nightStartHour"`
	NightEndHour   int `json:"nightEndHour"`

	// Payday and pay-period closing day, both day-of-month in [1,31].
	// Used by summary aggregation only, never by the wage calculation.
	Payday         int `json:"payday"`
	PeriodStartDay int `json:"periodStartDay"`
}

// SanitizeProfile coerces every numeric field of p into its documented range.
// Negative or undefined rates become zero; schedule fields out of range fall
// back to the package defaults. Sanitization happens at write time so the
// engine can trust any profile it is handed.
func SanitizeProfile(p RateProfile) RateProfile {
	p.BaseRate = nonNegative(p.BaseRate)
	p.NightRate = nonNegative(p.NightRate)
	p.WeekendRate = nonNegative(p.WeekendRate)
	p.WeekendNightRate = nonNegative(p.WeekendNightRate)

	if p.NightStartHour < 0 || p.NightStartHour > 23 {
		p.NightStartHour = DefaultNightStartHour
	}
	if p.NightEndHour < 0 || p.NightEndHour > 23 {
		p.NightEndHour = DefaultNightEndHour
	}
	if p.Payday < 1 || p.Payday > 31 {
		p.Payday = DefaultPayday
	}
	if p.PeriodStartDay < 1 || p.PeriodStartDay > 31 {
		p.PeriodStartDay = DefaultPeriodStartDay
	}
	return p
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// NightWindowWraps reports whether the night window crosses midnight.
// Kept as an explicit predicate because both the classifier and the
// segmenter branch on it.
func (p RateProfile) NightWindowWraps() bool {
	return p.NightStartHour >= p.NightEndHour
}

// IsNightHour reports whether the given wall-clock hour falls inside the
// night window.
func (p RateProfile) IsNightHour(hour int) bool {
	if p.NightWindowWraps() {
		return hour >= p.NightStartHour || hour < p.NightEndHour
	}
	return hour >= p.NightStartHour && hour < p.NightEndHour
}

// MustDecimal parses s as a decimal, returning zero on failure.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// TAG STORE - Rate profile lookup
// =============================================================================

// TagStore resolves rate profiles by identifier. The engine treats a miss as
// "no rates configured" and degrades to a zero result.
type TagStore interface {
	// GetByID returns the profile for id, or false when no such tag exists.
	GetByID(id TagID) (RateProfile, bool)
}

// =============================================================================
// SHIFT INTERVAL - Engine input (transient, not a stored entity)
// =============================================================================

// ShiftInterval is one continuous span of work time. Date anchors Start on
// the local calendar; when End <= Start the shift is read as crossing into
// the next calendar day.
type ShiftInterval struct {
	Date        string // YYYY-MM-DD
	Start       string // HH:MM
	End         string // HH:MM
	RestMinutes int    // unpaid break, capped by the shift duration
}

// =============================================================================
// WAGE RESULT - Engine output (transient)
// =============================================================================

// WageResult is the engine output for one shift.
type WageResult struct {
	// TotalWage is the rest-prorated wage. Never negative.
	TotalWage decimal.Decimal
	// TotalHours is the payable time in hours: (duration - rest) / 60.
	TotalHours decimal.Decimal
}

// ZeroWage is the degrade-to-zero result returned for unresolvable tags and
// empty shifts.
func ZeroWage() WageResult {
	return WageResult{TotalWage: decimal.Zero, TotalHours: decimal.Zero}
}
