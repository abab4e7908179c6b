/*
Package logbook holds the per-user attendance records and rate profiles.

PURPOSE:
  The Repository is the keyed collection of finalized shift records, grouped
  by calendar date. Every save runs the wage engine so a stored log always
  carries its computed wage and hours; every mutation schedules a debounced
  write of the whole user snapshot to the persistence collaborator.

KEY CONCEPTS IN THIS FILE (log.go):
  - AttendanceLog: One finalized (or live, in-progress) shift record
  - Snapshot: The complete persisted state for one user (logs + tags)
  - NormalizeLogs: Migration of legacy flat log lists into date buckets

DATE BUCKETS:
  Logs live in a map from YYYY-MM-DD date to the ordered list of that day's
  logs. Moving a log to a new date removes it from the old bucket and appends
  to the new one; a bucket that empties is deleted. Older exports stored a
  flat list instead, which NormalizeLogs folds into buckets on load.

SEE ALSO:
  - repository.go: Mutations and the debounced persist
  - summary.go: Derived read-only views
  - document.go: Export/import document
*/
package logbook

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shiftwage/attendance-engine/engine"
)

// LogID identifies an attendance log. Assigned from epoch milliseconds at
// creation, stable across edits.
type LogID int64

// AttendanceLog is one persisted shift record, enriched with the engine's
// wage computation.
type AttendanceLog struct {
	ID          LogID           `json:"id"`
	Date        string          `json:"date"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	TagID       engine.TagID    `json:"tagId"`
	RestMinutes int             `json:"restMinutes"`
	Expenses    decimal.Decimal `json:"expenses"`
	WorkedHours decimal.Decimal `json:"workedHours"`
	DailyWage   decimal.Decimal `json:"dailyWage"`
	Live        bool            `json:"live,omitempty"`
	ModifiedAt  time.Time       `json:"modifiedAt"`
}

// =============================================================================
// SNAPSHOT - Complete persisted state for one user
// =============================================================================

// Snapshot is the unit of persistence: everything stored for one username.
type Snapshot struct {
	Logs map[string][]AttendanceLog `json:"logs"`
	Tags []engine.RateProfile       `json:"tags"`
}

// EmptySnapshot is the shape returned for a user with no stored data.
func EmptySnapshot() Snapshot {
	return Snapshot{Logs: map[string][]AttendanceLog{}, Tags: []engine.RateProfile{}}
}

// UnmarshalJSON accepts both the current date-bucketed log shape and the
// legacy flat list, normalizing the latter into buckets.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Logs json.RawMessage      `json:"logs"`
		Tags []engine.RateProfile `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	logs, err := decodeLogs(raw.Logs)
	if err != nil {
		return err
	}

	s.Logs = logs
	s.Tags = make([]engine.RateProfile, 0, len(raw.Tags))
	for _, tag := range raw.Tags {
		s.Tags = append(s.Tags, engine.SanitizeProfile(tag))
	}
	return nil
}

// decodeLogs tries the bucketed shape first, then the legacy flat list.
func decodeLogs(raw json.RawMessage) (map[string][]AttendanceLog, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string][]AttendanceLog{}, nil
	}

	var bucketed map[string][]AttendanceLog
	if err := json.Unmarshal(raw, &bucketed); err == nil {
		if bucketed == nil {
			bucketed = map[string][]AttendanceLog{}
		}
		return bucketed, nil
	}

	var flat []AttendanceLog
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return NormalizeLogs(flat), nil
}

// NormalizeLogs groups a legacy flat log list into date buckets, preserving
// the original order within each date.
func NormalizeLogs(flat []AttendanceLog) map[string][]AttendanceLog {
	buckets := make(map[string][]AttendanceLog)
	for _, log := range flat {
		buckets[log.Date] = append(buckets[log.Date], log)
	}
	return buckets
}

// cloneLogs deep-copies a bucket map so snapshots handed to the persister
// are not aliased by later mutations.
func cloneLogs(logs map[string][]AttendanceLog) map[string][]AttendanceLog {
	out := make(map[string][]AttendanceLog, len(logs))
	for date, bucket := range logs {
		copied := make([]AttendanceLog, len(bucket))
		copy(copied, bucket)
		out[date] = copied
	}
	return out
}
