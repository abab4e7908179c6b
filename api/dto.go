/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the internal
  domain model from the external contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - Responses reuse domain types where their JSON shape is already the
    contract (RateProfile, AttendanceLog, summaries, session status)

VALIDATION:
  Requests carry validate struct tags checked by the handler's readJSON.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/shiftwage/attendance-engine/engine"
	"github.com/shiftwage/attendance-engine/logbook"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// TagRequest creates or updates a rate profile. Rates arrive as plain JSON
// numbers; anything negative or absent sanitizes to zero server-side.
type TagRequest struct {
	Name             string  `json:"name" validate:"required"`
	Color            string  `json:"color"`
	BaseRate         float64 `json:"baseRate" validate:"min=0"`
	NightRate        float64 `json:"nightRate" validate:"min=0"`
	WeekendRate      float64 `json:"weekendRate" validate:"min=0"`
	WeekendNightRate float64 `json:"weekendNightRate" validate:"min=0"`
	NightStartHour   *int    `json:"nightStartHour" validate:"omitempty,min=0,max=23"`
	NightEndHour     *int    `json:"nightEndHour" validate:"omitempty,min=0,max=23"`
	Payday           *int    `json:"payday" validate:"omitempty,min=1,max=31"`
	PeriodStartDay   *int    `json:"periodStartDay" validate:"omitempty,min=1,max=31"`
}

func (req TagRequest) profile() engine.RateProfile {
	p := engine.RateProfile{
		Name:             req.Name,
		Color:            req.Color,
		BaseRate:         decimal.NewFromFloat(req.BaseRate),
		NightRate:        decimal.NewFromFloat(req.NightRate),
		WeekendRate:      decimal.NewFromFloat(req.WeekendRate),
		WeekendNightRate: decimal.NewFromFloat(req.WeekendNightRate),
		NightStartHour:   -1,
		NightEndHour:     -1,
		Payday:           -1,
		PeriodStartDay:   -1,
	}
	if req.NightStartHour != nil {
		p.NightStartHour = *req.NightStartHour
	}
	if req.NightEndHour != nil {
		p.NightEndHour = *req.NightEndHour
	}
	if req.Payday != nil {
		p.Payday = *req.Payday
	}
	if req.PeriodStartDay != nil {
		p.PeriodStartDay = *req.PeriodStartDay
	}
	return p
}

// SaveLogRequest creates or updates an attendance log. A zero/absent ID
// creates a new log.
type SaveLogRequest struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Start       string  `json:"start" validate:"required,datetime=15:04"`
	End         string  `json:"end" validate:"required,datetime=15:04"`
	TagID       int64   `json:"tagId" validate:"required"`
	RestMinutes int     `json:"restMinutes" validate:"min=0"`
	Expenses    float64 `json:"expenses" validate:"min=0"`
}

func (req SaveLogRequest) input() logbook.LogInput {
	return logbook.LogInput{
		ID:          logbook.LogID(req.ID),
		Date:        req.Date,
		Start:       req.Start,
		End:         req.End,
		TagID:       engine.TagID(req.TagID),
		RestMinutes: req.RestMinutes,
		Expenses:    decimal.NewFromFloat(req.Expenses),
	}
}

// StartSessionRequest clocks a user in against one tag.
type StartSessionRequest struct {
	TagID int64 `json:"tagId" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SummaryResponse bundles the derived wage views for one user.
type SummaryResponse struct {
	Weekly  logbook.WageSummary  `json:"weekly"`
	Monthly logbook.WageSummary  `json:"monthly"`
	Tags    []logbook.TagSummary `json:"tags"`
}
