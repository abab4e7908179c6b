/*
document.go - Round-trippable export/import document

PURPOSE:
  Serializes one user's complete data as a text document and reads it back.
  Exports carry the flattened, sorted log list (the shape older builds
  produced); imports accept both that flat shape and the current
  date-bucketed one, so any previously exported document round-trips.

FAILURE SEMANTICS:
  An unparseable document aborts the import with ErrInvalidDocument and no
  partial state mutation: the document is fully decoded and validated before
  the repository is touched.
*/
package logbook

import (
	"encoding/json"
	"fmt"

	"github.com/shiftwage/attendance-engine/engine"
)

// Document is the export/import unit: everything for one username.
type Document struct {
	Username string               `json:"username"`
	Logs     []AttendanceLog      `json:"logs"`
	Tags     []engine.RateProfile `json:"tags"`
}

// Export renders the repository as an indented JSON document.
func (r *Repository) Export() ([]byte, error) {
	doc := Document{
		Username: r.username,
		Logs:     r.AllLogsSorted(),
		Tags:     r.Tags(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export user %q: %w", r.username, err)
	}
	return data, nil
}

// Import replaces the repository's logs and tags with the document's
// contents and schedules a persist. The username inside the document is
// informational; mismatches are the caller's concern to confirm.
func (r *Repository) Import(data []byte) error {
	var raw struct {
		Username string               `json:"username"`
		Logs     json.RawMessage      `json:"logs"`
		Tags     []engine.RateProfile `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	logs, err := decodeLogs(raw.Logs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	tags := make([]engine.RateProfile, 0, len(raw.Tags))
	for _, tag := range raw.Tags {
		tags = append(tags, engine.SanitizeProfile(tag))
	}

	r.mu.Lock()
	r.logs = logs
	r.tags = tags
	r.scheduleSaveLocked()
	r.mu.Unlock()
	return nil
}
