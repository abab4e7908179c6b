package logbook

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTagNotFound is returned when an update names a tag that was never
	// created. Wage calculation does NOT use this: an unknown tag there
	// degrades to a zero result by design.
	ErrTagNotFound = errors.New("tag not found")

	// ErrInvalidDocument is returned when an imported document cannot be
	// parsed. The import aborts with no partial state mutation.
	ErrInvalidDocument = errors.New("invalid attendance document")
)
