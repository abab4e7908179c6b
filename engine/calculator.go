/*
calculator.go - Event-point wage segmentation

PURPOSE:
  Computes the payable wage for a shift by partitioning it at every instant
  where the applicable hourly rate can change, pricing each sub-interval at
  a single constant rate.

ALGORITHM:
  1. Resolve the shift to absolute [start, end) instants (overnight shifts
     extend end by one day).
  2. Collect event instants: every midnight inside the interval (special-day
     status is date-dependent) and every night-window boundary crossing.
  3. Price each sub-interval between consecutive events at the rate in force
     at its midpoint. The midpoint is safe because, by construction, no rate
     boundary falls strictly inside a sub-interval.
  4. Prorate the rate-weighted gross by unpaid rest minutes.

RATE PRIORITY (highest first):
  special day AND night  -> WeekendNightRate
  special day            -> WeekendRate
  night                  -> NightRate
  otherwise              -> BaseRate
  A weekend or holiday always dominates the night premium.

REST PRORATION:
  Rest is deducted proportionally across the whole gross wage rather than
  subtracted from any particular sub-interval:
    wage = gross * payableMinutes / workedMinutes

FAILURE SEMANTICS:
  An unresolvable tag degrades to a zero result; it is not an error the
  caller can branch on. Malformed date or time strings also yield zero.

SEE ALSO:
  - types.go: RateProfile, ShiftInterval, WageResult
  - calendar.go: Special-day classification
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// Calculator computes wages for shift intervals. It holds no mutable state;
// the same inputs always produce the same result.
type Calculator struct {
	Tags     TagStore
	Holidays HolidayCalendar
}

// CalculateWage prices the shift against the rate profile identified by
// tagID. Unknown tags and zero-length shifts return the zero result.
func (c Calculator) CalculateWage(shift ShiftInterval, tagID TagID) WageResult {
	if c.Tags == nil {
		return ZeroWage()
	}
	profile, ok := c.Tags.GetByID(tagID)
	if !ok {
		return ZeroWage()
	}
	return c.CalculateWageWithProfile(shift, profile)
}

// CalculateWageWithProfile prices the shift against an already-resolved
// profile. Exposed for callers that manage their own tag lookup.
func (c Calculator) CalculateWageWithProfile(shift ShiftInterval, profile RateProfile) WageResult {
	start, end, err := shift.Bounds()
	if err != nil {
		return ZeroWage()
	}

	workedMinutes := int(end.Sub(start).Minutes())
	if workedMinutes <= 0 {
		return ZeroWage()
	}

	payableMinutes := workedMinutes - shift.RestMinutes
	if payableMinutes < 0 {
		payableMinutes = 0
	}

	gross := decimal.Zero
	for _, seg := range segment(start, end, profile) {
		minutes := decimal.NewFromFloat(seg.end.Sub(seg.start).Minutes())
		mid := seg.start.Add(seg.end.Sub(seg.start) / 2)
		rate := c.rateAt(mid, profile)
		gross = gross.Add(rate.Mul(minutes).Div(sixty))
	}

	worked := decimal.NewFromInt(int64(workedMinutes))
	payable := decimal.NewFromInt(int64(payableMinutes))

	return WageResult{
		TotalWage:  gross.Mul(payable).Div(worked),
		TotalHours: payable.Div(sixty),
	}
}

// rateAt classifies the instant t into one of the four rate tiers.
// Special-day status is evaluated before the night window; the priority
// order is deliberate, not incidental.
func (c Calculator) rateAt(t time.Time, profile RateProfile) decimal.Decimal {
	special := IsSpecialDay(t, c.Holidays)
	night := profile.IsNightHour(t.Hour())

	switch {
	case special && night:
		return profile.WeekendNightRate
	case special:
		return profile.WeekendRate
	case night:
		return profile.NightRate
	default:
		return profile.BaseRate
	}
}

type subInterval struct {
	start, end time.Time
}

// segment splits [start, end) at every instant where the applicable rate can
// change: midnights (special-day status flips with the date) and the night
// window's opening and closing hours. Boundaries strictly inside the interval
// become cut points; each resulting sub-interval carries one constant rate.
func segment(start, end time.Time, profile RateProfile) []subInterval {
	cuts := make(map[time.Time]struct{})

	for day := StartOfDay(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		for _, boundary := range []time.Time{
			day, // midnight
			day.Add(time.Duration(profile.NightStartHour) * time.Hour),
			day.Add(time.Duration(profile.NightEndHour) * time.Hour),
		} {
			if boundary.After(start) && boundary.Before(end) {
				cuts[boundary] = struct{}{}
			}
		}
	}

	points := make([]time.Time, 0, len(cuts)+2)
	points = append(points, start)
	for cut := range cuts {
		points = append(points, cut)
	}
	points = append(points, end)
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })

	segments := make([]subInterval, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		segments = append(segments, subInterval{start: points[i], end: points[i+1]})
	}
	return segments
}
