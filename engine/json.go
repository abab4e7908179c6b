package engine

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LENIENT DECODING - Write-time coercion of malformed profile fields
// =============================================================================
// Documents written by older builds carry rates and hours as raw form-input
// strings. Those coerce to their documented defaults instead of failing the
// whole document decode; SanitizeProfile then clamps whatever survives.

// UnmarshalJSON decodes a profile, coercing malformed numeric fields to
// zero (rates) or an out-of-range marker that SanitizeProfile replaces with
// the default (schedule fields).
func (p *RateProfile) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Name  string          `json:"name"`
		Color string          `json:"color"`

		BaseRate         json.RawMessage `json:"baseRate"`
		NightRate        json.RawMessage `json:"nightRate"`
		WeekendRate      json.RawMessage `json:"weekendRate"`
		WeekendNightRate json.RawMessage `json:"weekendNightRate"`

		NightStartHour json.RawMessage `json:"nightStartHour"`
		NightEndHour   json.RawMessage `json:"nightEndHour"`
		Payday         json.RawMessage `json:"payday"`
		PeriodStartDay json.RawMessage `json:"periodStartDay"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ID = TagID(lenientInt(raw.ID, 0))
	p.Name = raw.Name
	p.Color = raw.Color

	p.BaseRate = lenientDecimal(raw.BaseRate)
	p.NightRate = lenientDecimal(raw.NightRate)
	p.WeekendRate = lenientDecimal(raw.WeekendRate)
	p.WeekendNightRate = lenientDecimal(raw.WeekendNightRate)

	// -1 is out of every documented range, so SanitizeProfile substitutes
	// the default for absent or unparseable values.
	p.NightStartHour = int(lenientInt(raw.NightStartHour, -1))
	p.NightEndHour = int(lenientInt(raw.NightEndHour, -1))
	p.Payday = int(lenientInt(raw.Payday, -1))
	p.PeriodStartDay = int(lenientInt(raw.PeriodStartDay, -1))
	return nil
}

func lenientDecimal(raw json.RawMessage) decimal.Decimal {
	s := rawScalar(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func lenientInt(raw json.RawMessage, fallback int64) int64 {
	s := rawScalar(raw)
	if s == "" {
		return fallback
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return fallback
}

// rawScalar unwraps a JSON number or string into its text, returning ""
// for null, absent, or non-scalar values.
func rawScalar(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return ""
	}
	return string(trimmed)
}
