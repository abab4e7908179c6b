package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shiftwage/attendance-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// tagMap is a minimal in-memory TagStore.
type tagMap map[engine.TagID]engine.RateProfile

func (m tagMap) GetByID(id engine.TagID) (engine.RateProfile, bool) {
	p, ok := m[id]
	return p, ok
}

// fixedHolidays marks specific dates as holidays.
type fixedHolidays map[string]string

func (f fixedHolidays) IsHoliday(date string) (string, bool) {
	name, ok := f[date]
	return name, ok
}

func dec(s string) decimal.Decimal {
	return engine.MustDecimal(s)
}

// flatProfile has all four rates equal, so every instant prices the same.
func flatProfile(id engine.TagID, rate string) engine.RateProfile {
	return engine.SanitizeProfile(engine.RateProfile{
		ID:               id,
		Name:             "flat",
		BaseRate:         dec(rate),
		NightRate:        dec(rate),
		WeekendRate:      dec(rate),
		WeekendNightRate: dec(rate),
		NightStartHour:   22,
		NightEndHour:     6,
	})
}

// tieredProfile uses distinct rates per tier so misclassification shows up
// in the total.
func tieredProfile(id engine.TagID) engine.RateProfile {
	return engine.SanitizeProfile(engine.RateProfile{
		ID:               id,
		Name:             "tiered",
		BaseRate:         dec("1000"),
		NightRate:        dec("1500"),
		WeekendRate:      dec("2000"),
		WeekendNightRate: dec("3000"),
		NightStartHour:   22,
		NightEndHour:     6,
	})
}

func approxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(dec("0.0001"))
}

// Calendar facts used below:
//   2025-03-10 Monday, 2025-03-12 Wednesday, 2025-03-14 Friday,
//   2025-03-15 Saturday, 2025-03-16 Sunday.

// =============================================================================
// FLAT-RATE AND PRORATION PROPERTIES
// =============================================================================

func TestCalculateWage_FlatRate_NoRest_WageIsHoursTimesRate(t *testing.T) {
	// GIVEN: All four rates equal, no rest
	// WHEN: Working a plain 8-hour weekday shift
	// THEN: wage == 8 * rate, hours == 8

	calc := engine.Calculator{Tags: tagMap{1: flatProfile(1, "1250")}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "09:00", End: "17:00",
	}, 1)

	if !result.TotalWage.Equal(dec("10000")) {
		t.Errorf("expected wage 10000, got %v", result.TotalWage)
	}
	if !result.TotalHours.Equal(dec("8")) {
		t.Errorf("expected 8 hours, got %v", result.TotalHours)
	}
}

func TestCalculateWage_RestProration_FlatRateEqualsDirectSubtraction(t *testing.T) {
	// GIVEN: A 4-hour single-rate shift with 60 rest minutes
	// THEN: hours == 3 and wage == rate * 3 (proportional reduction of a
	//       flat-rate shift equals direct subtraction)

	calc := engine.Calculator{Tags: tagMap{1: flatProfile(1, "1000")}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "10:00", End: "14:00", RestMinutes: 60,
	}, 1)

	if !result.TotalWage.Equal(dec("3000")) {
		t.Errorf("expected wage 3000, got %v", result.TotalWage)
	}
	if !result.TotalHours.Equal(dec("3")) {
		t.Errorf("expected 3 hours, got %v", result.TotalHours)
	}
}

func TestCalculateWage_RestExceedsDuration_ClampsToZero(t *testing.T) {
	// GIVEN: More rest than the whole shift
	// THEN: zero payable time and wage, never negative

	calc := engine.Calculator{Tags: tagMap{1: flatProfile(1, "1000")}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "10:00", End: "11:00", RestMinutes: 120,
	}, 1)

	if !result.TotalWage.IsZero() || !result.TotalHours.IsZero() {
		t.Errorf("expected zero result, got wage=%v hours=%v", result.TotalWage, result.TotalHours)
	}
}

func TestCalculateWage_MultiRateProration_ScalesGrossProportionally(t *testing.T) {
	// GIVEN: 20:00-23:00 weekday (2h base @1000 + 1h night @1500), 60 rest
	// THEN: wage == gross 3500 * 120/180

	calc := engine.Calculator{Tags: tagMap{1: tieredProfile(1)}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "20:00", End: "23:00", RestMinutes: 60,
	}, 1)

	expected := dec("3500").Mul(dec("120")).Div(dec("180"))
	if !approxEqual(result.TotalWage, expected) {
		t.Errorf("expected wage %v, got %v", expected, result.TotalWage)
	}
	if !result.TotalHours.Equal(dec("2")) {
		t.Errorf("expected 2 payable hours, got %v", result.TotalHours)
	}
}

// =============================================================================
// NIGHT WINDOW SEGMENTATION
// =============================================================================

func TestCalculateWage_FullyInsideNightWindow_UsesNightRate(t *testing.T) {
	// GIVEN: A shift wholly inside the wrapped night window on a weekday
	// THEN: wage == duration_hours * nightRate

	calc := engine.Calculator{Tags: tagMap{1: tieredProfile(1)}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "02:00", End: "05:00",
	}, 1)

	if !result.TotalWage.Equal(dec("4500")) {
		t.Errorf("expected wage 4500 (3h night), got %v", result.TotalWage)
	}
}

func TestCalculateWage_MidnightCrossing_WholeShiftIsNight(t *testing.T) {
	// GIVEN: 23:00-01:00 with night window [22,6), Monday into Tuesday
	// THEN: the whole 2-hour shift is night: wage == 2 * nightRate

	calc := engine.Calculator{Tags: tagMap{1: tieredProfile(1)}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-10", Start: "23:00", End: "01:00",
	}, 1)

	if !result.TotalWage.Equal(dec("3000")) {
		t.Errorf("expected wage 3000 (2h night), got %v", result.TotalWage)
	}
	if !result.TotalHours.Equal(dec("2")) {
		t.Errorf("expected 2 hours, got %v", result.TotalHours)
	}
}

func TestCalculateWage_NightWindowBoundary_SplitsExactly(t *testing.T) {
	// GIVEN: 20:00-23:00 weekday, night opens at 22:00
	// THEN: 2h base + 1h night, the 22:00 boundary cut exactly

	calc := engine.Calculator{Tags: tagMap{1: tieredProfile(1)}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "20:00", End: "23:00",
	}, 1)

	if !result.TotalWage.Equal(dec("3500")) {
		t.Errorf("expected wage 3500 (2000 base + 1500 night), got %v", result.TotalWage)
	}
}

func TestCalculateWage_NonWrappingNightWindow(t *testing.T) {
	// GIVEN: A non-wrapping window [1,5) and a shift surrounding it
	// THEN: only the in-window hours take the night rate

	profile := tieredProfile(1)
	profile.NightStartHour = 1
	profile.NightEndHour = 5
	calc := engine.Calculator{Tags: tagMap{1: profile}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "00:00", End: "06:00",
	}, 1)

	// 1h base + 4h night + 1h base
	if !result.TotalWage.Equal(dec("8000")) {
		t.Errorf("expected wage 8000, got %v", result.TotalWage)
	}
}

func TestCalculateWage_EndEqualsStart_ReadsAsFullDay(t *testing.T) {
	// GIVEN: end == start
	// THEN: the shift spans 24 hours into the next day

	calc := engine.Calculator{Tags: tagMap{1: flatProfile(1, "100")}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "09:00", End: "09:00",
	}, 1)

	if !result.TotalHours.Equal(dec("24")) {
		t.Errorf("expected 24 hours, got %v", result.TotalHours)
	}
	if !result.TotalWage.Equal(dec("2400")) {
		t.Errorf("expected wage 2400, got %v", result.TotalWage)
	}
}

// =============================================================================
// SPECIAL-DAY PRIORITY
// =============================================================================

func TestCalculateWage_SaturdayNight_WeekendNightDominatesNight(t *testing.T) {
	// GIVEN: Saturday 23:00-01:00, night window [22,6)
	// THEN: weekendNightRate applies for the entire duration (Sunday is
	//       special too), never nightRate alone

	calc := engine.Calculator{Tags: tagMap{1: tieredProfile(1)}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-15", Start: "23:00", End: "01:00",
	}, 1)

	if !result.TotalWage.Equal(dec("6000")) {
		t.Errorf("expected wage 6000 (2h weekend-night), got %v", result.TotalWage)
	}
}

func TestCalculateWage_FridayIntoSaturday_MidnightFlipsTier(t *testing.T) {
	// GIVEN: Friday 23:00 into Saturday 01:00
	// THEN: first hour night on an ordinary day, second hour weekend-night;
	//       the midnight cut keeps each sub-interval's midpoint on its own day

	calc := engine.Calculator{Tags: tagMap{1: tieredProfile(1)}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-14", Start: "23:00", End: "01:00",
	}, 1)

	if !result.TotalWage.Equal(dec("4500")) {
		t.Errorf("expected wage 4500 (1500 night + 3000 weekend-night), got %v", result.TotalWage)
	}
}

func TestCalculateWage_HolidayWeekday_UsesWeekendTier(t *testing.T) {
	// GIVEN: A Wednesday declared a holiday
	// THEN: daytime hours price at weekendRate

	calc := engine.Calculator{
		Tags:     tagMap{1: tieredProfile(1)},
		Holidays: fixedHolidays{"2025-03-12": "spring holiday"},
	}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "09:00", End: "12:00",
	}, 1)

	if !result.TotalWage.Equal(dec("6000")) {
		t.Errorf("expected wage 6000 (3h weekend tier), got %v", result.TotalWage)
	}
}

func TestCalculateWage_HolidayNight_UsesWeekendNightTier(t *testing.T) {
	// GIVEN: A holiday Wednesday, shift inside the night window
	// THEN: weekendNightRate, the special-day premium dominating night

	calc := engine.Calculator{
		Tags:     tagMap{1: tieredProfile(1)},
		Holidays: fixedHolidays{"2025-03-12": "spring holiday"},
	}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "02:00", End: "04:00",
	}, 1)

	if !result.TotalWage.Equal(dec("6000")) {
		t.Errorf("expected wage 6000 (2h weekend-night), got %v", result.TotalWage)
	}
}

// =============================================================================
// DEGRADATION AND PURITY
// =============================================================================

func TestCalculateWage_UnknownTag_DegradesToZero(t *testing.T) {
	calc := engine.Calculator{Tags: tagMap{}}

	result := calc.CalculateWage(engine.ShiftInterval{
		Date: "2025-03-12", Start: "09:00", End: "17:00",
	}, 99)

	if !result.TotalWage.IsZero() || !result.TotalHours.IsZero() {
		t.Errorf("expected zero result for unknown tag, got %+v", result)
	}
}

func TestCalculateWage_MalformedTimes_DegradeToZero(t *testing.T) {
	calc := engine.Calculator{Tags: tagMap{1: flatProfile(1, "1000")}}

	for _, shift := range []engine.ShiftInterval{
		{Date: "not-a-date", Start: "09:00", End: "17:00"},
		{Date: "2025-03-12", Start: "9am", End: "17:00"},
		{Date: "2025-03-12", Start: "09:00", End: ""},
	} {
		result := calc.CalculateWage(shift, 1)
		if !result.TotalWage.IsZero() || !result.TotalHours.IsZero() {
			t.Errorf("expected zero result for %+v, got %+v", shift, result)
		}
	}
}

func TestCalculateWage_Idempotent(t *testing.T) {
	// GIVEN: Identical inputs
	// THEN: bit-identical outputs; the calculator holds no hidden state

	calc := engine.Calculator{Tags: tagMap{1: tieredProfile(1)}}
	shift := engine.ShiftInterval{Date: "2025-03-14", Start: "21:30", End: "02:15", RestMinutes: 45}

	first := calc.CalculateWage(shift, 1)
	second := calc.CalculateWage(shift, 1)

	if !first.TotalWage.Equal(second.TotalWage) || !first.TotalHours.Equal(second.TotalHours) {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}
