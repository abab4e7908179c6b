package logbook

import "context"

// =============================================================================
// PERSISTER - External persistence collaborator
// =============================================================================

// Persister stores and retrieves per-user snapshots. Implementations live in
// the store package (SQLite for production, memory for tests). The repository
// never assumes the write succeeded: failures are logged and surfaced as
// structured results, not panics.
type Persister interface {
	// Save overwrites the complete snapshot stored for username.
	Save(ctx context.Context, username string, snap Snapshot) error

	// Load returns the stored snapshot for username. A user with no stored
	// data yields an empty snapshot, not an error.
	Load(ctx context.Context, username string) (Snapshot, error)
}

// SaveResult reports the outcome of an explicit persistence flush in a form
// safe to hand to UI surfaces: a failure carries a human-readable message
// and never escalates to a crash.
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
