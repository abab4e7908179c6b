/*
Package holiday provides the public-holiday calendar used by the wage engine.

PURPOSE:
  Loads a date -> holiday-name mapping once per process from a JSON endpoint
  (by default the holidays-jp dataset) and answers point lookups from memory.

LOADING CONTRACT:
  - Load is idempotent and single-flight: concurrent and repeated calls share
    one fetch.
  - A fetch failure leaves an empty mapping in place: every day reads as a
    non-holiday rather than the process blocking or crashing.
  - Before Load completes, lookups answer from the empty mapping. Callers
    that need holiday accuracy must call Load first; an unloaded negative is
    not authoritative.

DATA FORMAT:
  {"2025-01-01": "元日", "2025-01-13": "成人の日", ...}

SEE ALSO:
  - engine/calendar.go: HolidayCalendar interface this package implements
*/
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultEndpoint serves Japanese public holidays as a date->name mapping.
const DefaultEndpoint = "https://holidays-jp.github.io/api/v1/date.json"

// Oracle is a process-wide holiday calendar backed by a one-time fetch.
// The zero value is not usable; construct with New.
type Oracle struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger

	once sync.Once

	mu       sync.RWMutex
	holidays map[string]string
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithEndpoint overrides the holiday dataset URL.
func WithEndpoint(url string) Option {
	return func(o *Oracle) { o.endpoint = url }
}

// WithHTTPClient overrides the HTTP client used for the fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Oracle) { o.client = c }
}

// WithLogger overrides the logger used for fetch failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Oracle) { o.logger = l }
}

// New creates an unloaded Oracle. Call Load before the first wage
// calculation that needs holiday accuracy.
func New(opts ...Option) *Oracle {
	o := &Oracle{
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   slog.Default(),
		holidays: map[string]string{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load fetches the holiday mapping exactly once. Subsequent calls are no-ops
// regardless of whether the first fetch succeeded; a failed fetch falls back
// to the empty mapping and is logged, never returned as a hard error to wage
// calculation paths.
func (o *Oracle) Load(ctx context.Context) {
	o.once.Do(func() {
		loaded, err := o.fetch(ctx)
		if err != nil {
			o.logger.Warn("holiday fetch failed, treating all days as non-holidays",
				"endpoint", o.endpoint, "error", err)
			return
		}
		o.mu.Lock()
		o.holidays = loaded
		o.mu.Unlock()
	})
}

func (o *Oracle) fetch(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build holiday request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch holidays: unexpected status %d", resp.StatusCode)
	}

	var holidays map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	return holidays, nil
}

// IsHoliday returns the holiday name and true when date (YYYY-MM-DD) is in
// the loaded mapping. Implements engine.HolidayCalendar.
func (o *Oracle) IsHoliday(date string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	name, ok := o.holidays[date]
	return name, ok
}

// All returns a copy of the loaded mapping, for display surfaces.
func (o *Oracle) All() map[string]string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]string, len(o.holidays))
	for date, name := range o.holidays {
		out[date] = name
	}
	return out
}
