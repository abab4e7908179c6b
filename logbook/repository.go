/*
repository.go - Mutations over one user's logs and tags

PURPOSE:
  Owns the date-bucketed log collection and the tag registry for a single
  user, runs the wage engine on every save, and coalesces bursts of
  mutations into one debounced write to the persistence collaborator.

SAVE FLOW:
  SaveLog(input)
    -> resolve RateProfile by input.TagID (miss degrades to a zero wage)
    -> engine.CalculateWage
    -> replace existing log by ID (relocating between date buckets when the
       date changed) or assign a fresh ID and append
    -> schedule debounced persist

DEBOUNCED PERSISTENCE:
  Each mutation marks a pending write and (re)arms a timer. When the quiet
  period elapses, the whole snapshot is written once. Flush writes
  synchronously and is called on session end. A debounced save that fires
  after its session ended is allowed to complete; persistence failures are
  logged and swallowed on the async path, surfaced as a SaveResult on the
  explicit one.

CONCURRENCY:
  All state mutation for a user happens sequentially; the mutex only guards
  against the debounce timer goroutine. Concurrent edits from multiple
  devices are unguarded, last writer wins.

SEE ALSO:
  - summary.go: Read-only derived views
  - persist.go: Persister interface and SaveResult
*/
package logbook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shiftwage/attendance-engine/engine"
)

func nonNegativeAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// DefaultDebounce is the quiet period before a scheduled persist fires.
const DefaultDebounce = 2 * time.Second

// Repository holds one user's attendance logs and rate profiles.
type Repository struct {
	username string
	holidays engine.HolidayCalendar

	persister Persister
	debounce  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	logs    map[string][]AttendanceLog
	tags    []engine.RateProfile
	timer   *time.Timer
	pending bool
}

// Options configures optional repository collaborators.
type Options struct {
	Holidays engine.HolidayCalendar
	Debounce time.Duration
	Logger   *slog.Logger
	Clock    func() time.Time
}

// New loads the stored snapshot for username (legacy flat log lists are
// normalized into date buckets on the way in) and returns a repository
// bound to that user.
func New(ctx context.Context, username string, persister Persister, opts Options) (*Repository, error) {
	if opts.Holidays == nil {
		opts.Holidays = engine.DefaultHolidayCalendar{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	snap, err := persister.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}
	if snap.Logs == nil {
		snap.Logs = map[string][]AttendanceLog{}
	}

	return &Repository{
		username:  username,
		holidays:  opts.Holidays,
		persister: persister,
		debounce:  opts.Debounce,
		logger:    opts.Logger,
		now:       opts.Clock,
		logs:      snap.Logs,
		tags:      snap.Tags,
	}, nil
}

// Username returns the user this repository is bound to.
func (r *Repository) Username() string { return r.username }

// =============================================================================
// TAG REGISTRY
// =============================================================================

// AddTag sanitizes and stores a new rate profile, assigning its identifier
// from the current epoch milliseconds.
func (r *Repository) AddTag(tag engine.RateProfile) engine.RateProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag = engine.SanitizeProfile(tag)
	id := engine.TagID(r.now().UnixMilli())
	for {
		if _, taken := r.findTagLocked(id); !taken {
			break
		}
		id++ // two creations inside one millisecond
	}
	tag.ID = id
	r.tags = append(r.tags, tag)
	r.scheduleSaveLocked()
	return tag
}

// UpdateTag merges the sanitized fields of tag over the stored profile with
// the same ID.
func (r *Repository) UpdateTag(tag engine.RateProfile) (engine.RateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.tags {
		if existing.ID == tag.ID {
			merged := engine.SanitizeProfile(tag)
			merged.ID = existing.ID
			r.tags[i] = merged
			r.scheduleSaveLocked()
			return merged, nil
		}
	}
	return engine.RateProfile{}, fmt.Errorf("update tag %d: %w", tag.ID, ErrTagNotFound)
}

// Tags returns a copy of all rate profiles.
func (r *Repository) Tags() []engine.RateProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]engine.RateProfile, len(r.tags))
	copy(out, r.tags)
	return out
}

// GetByID implements engine.TagStore.
func (r *Repository) GetByID(id engine.TagID) (engine.RateProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findTagLocked(id)
}

func (r *Repository) findTagLocked(id engine.TagID) (engine.RateProfile, bool) {
	for _, tag := range r.tags {
		if tag.ID == id {
			return tag, true
		}
	}
	return engine.RateProfile{}, false
}

// =============================================================================
// LOG MUTATIONS
// =============================================================================

// LogInput carries the raw shift fields for a save. A zero ID means "create".
type LogInput struct {
	ID          LogID
	Date        string
	Start       string
	End         string
	TagID       engine.TagID
	RestMinutes int
	Expenses    decimal.Decimal
	Live        bool
}

// SaveLog runs the wage engine over the input, then creates or replaces the
// corresponding log, relocating it between date buckets when the date
// changed. The enriched record is returned.
func (r *Repository) SaveLog(input LogInput) AttendanceLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	if input.RestMinutes < 0 {
		input.RestMinutes = 0
	}

	calc := engine.Calculator{Holidays: r.holidays}
	result := engine.ZeroWage()
	if profile, ok := r.findTagLocked(input.TagID); ok {
		result = calc.CalculateWageWithProfile(engine.ShiftInterval{
			Date:        input.Date,
			Start:       input.Start,
			End:         input.End,
			RestMinutes: input.RestMinutes,
		}, profile)
	}

	log := AttendanceLog{
		ID:          input.ID,
		Date:        input.Date,
		Start:       input.Start,
		End:         input.End,
		TagID:       input.TagID,
		RestMinutes: input.RestMinutes,
		Expenses:    nonNegativeAmount(input.Expenses),
		WorkedHours: result.TotalHours,
		DailyWage:   result.TotalWage,
		Live:        input.Live,
		ModifiedAt:  r.now(),
	}

	if log.ID != 0 {
		// An edit may have moved the log to a different date.
		if old, oldDate, found := r.findLogLocked(log.ID); found && old.Date != log.Date {
			r.removeFromBucketLocked(oldDate, log.ID)
		}
	} else {
		id := LogID(r.now().UnixMilli())
		for {
			if _, _, taken := r.findLogLocked(id); !taken {
				break
			}
			id++ // two creations inside one millisecond
		}
		log.ID = id
	}

	bucket := r.logs[log.Date]
	replaced := false
	for i, existing := range bucket {
		if existing.ID == log.ID {
			bucket[i] = log
			replaced = true
			break
		}
	}
	if !replaced {
		bucket = append(bucket, log)
	}
	r.logs[log.Date] = bucket

	r.scheduleSaveLocked()
	return log
}

// DeleteLog removes the log from the named date bucket, pruning the bucket
// if it empties. A missing bucket or ID is a no-op.
func (r *Repository) DeleteLog(id LogID, date string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.logs[date]; !ok {
		return
	}
	r.removeFromBucketLocked(date, id)
	r.scheduleSaveLocked()
}

func (r *Repository) findLogLocked(id LogID) (AttendanceLog, string, bool) {
	for date, bucket := range r.logs {
		for _, log := range bucket {
			if log.ID == id {
				return log, date, true
			}
		}
	}
	return AttendanceLog{}, "", false
}

func (r *Repository) removeFromBucketLocked(date string, id LogID) {
	bucket := r.logs[date]
	kept := bucket[:0]
	for _, log := range bucket {
		if log.ID != id {
			kept = append(kept, log)
		}
	}
	if len(kept) == 0 {
		delete(r.logs, date)
		return
	}
	r.logs[date] = kept
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Snapshot returns a deep copy of the current state.
func (r *Repository) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Repository) snapshotLocked() Snapshot {
	tags := make([]engine.RateProfile, len(r.tags))
	copy(tags, r.tags)
	return Snapshot{Logs: cloneLogs(r.logs), Tags: tags}
}

// scheduleSaveLocked marks a pending write and (re)arms the debounce timer.
func (r *Repository) scheduleSaveLocked() {
	r.pending = true
	if r.timer == nil {
		r.timer = time.AfterFunc(r.debounce, r.flushAsync)
		return
	}
	r.timer.Reset(r.debounce)
}

// flushAsync is the debounce timer callback. Errors are logged, never
// propagated: the next mutation simply schedules another attempt.
func (r *Repository) flushAsync() {
	r.mu.Lock()
	if !r.pending {
		r.mu.Unlock()
		return
	}
	r.pending = false
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if err := r.persister.Save(context.Background(), r.username, snap); err != nil {
		r.logger.Error("debounced save failed", "user", r.username, "error", err)
	}
}

// DiscardPending cancels any armed debounced save without writing. Callers
// use it before dropping a repository whose in-memory state has been
// superseded in the store, so the orphaned timer cannot clobber the newer
// document.
func (r *Repository) DiscardPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.pending = false
}

// Flush writes the current snapshot synchronously, cancelling any armed
// debounce timer. The outcome is reported as a structured result.
func (r *Repository) Flush(ctx context.Context) SaveResult {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.pending = false
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if err := r.persister.Save(ctx, r.username, snap); err != nil {
		r.logger.Error("save failed", "user", r.username, "error", err)
		return SaveResult{Success: false, Message: fmt.Sprintf("failed to save data: %v", err)}
	}
	return SaveResult{Success: true, Message: "data saved"}
}
