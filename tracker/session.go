/*
Package tracker runs the live clock-in/clock-out session.

PURPOSE:
  A small state machine (Idle -> Tracking <-> Resting -> Idle) that builds a
  shift interval incrementally and, on clock-out, hands it to the log
  repository where the wage engine finalizes the entry.

STATE MACHINE:
  StartTracking  Idle -> Tracking     records the start instant, creates a
                                      provisional "live" log in today's bucket
  StartRest      Tracking -> Resting  marks the rest start
  EndRest        Resting -> Tracking  accrues the elapsed rest
  EndTracking    any-active -> Idle   implicit EndRest, finalizes the log,
                                      flushes persistence
  Calls in the wrong state are no-ops; EndTracking in Idle reports a failure
  result rather than crashing.

DURABILITY:
  The session snapshot is written to a JSON file on every transition
  (atomic temp-file-then-rename) and restored at construction, so a crash or
  reload mid-shift keeps the clock-in time. A corrupt snapshot is backed up
  and the session starts Idle.

SEE ALSO:
  - logbook/repository.go: SaveLog and Flush invoked on clock-out
*/
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shiftwage/attendance-engine/engine"
	"github.com/shiftwage/attendance-engine/logbook"
)

// State names the session phase.
type State string

const (
	StateIdle     State = "idle"
	StateTracking State = "tracking"
	StateResting  State = "resting"
)

// Session tracks one user's live shift.
type Session struct {
	repo   *logbook.Repository
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu            sync.Mutex
	state         State
	tagID         engine.TagID
	logID         logbook.LogID
	startedAt     time.Time
	restStartedAt time.Time
	restAccrued   time.Duration
}

// Config wires a session's collaborators.
type Config struct {
	Repo     *logbook.Repository
	StateDir string // directory for the durable session snapshot
	Logger   *slog.Logger
	Clock    func() time.Time
}

// New builds a session for cfg.Repo's user, restoring any snapshot left by a
// previous process so an in-flight shift survives a restart.
func New(cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	s := &Session{
		repo:   cfg.Repo,
		path:   filepath.Join(cfg.StateDir, cfg.Repo.Username()+".session.json"),
		logger: cfg.Logger,
		now:    cfg.Clock,
		state:  StateIdle,
	}
	s.restore()
	return s, nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// StartTracking clocks in. A no-op when a session is already active.
func (s *Session) StartTracking(tagID engine.TagID) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return s.statusLocked()
	}

	now := s.now()
	live := s.repo.SaveLog(logbook.LogInput{
		Date:  engine.FormatDate(now),
		Start: now.Format(engine.ClockLayout),
		TagID: tagID,
		Live:  true,
	})

	s.state = StateTracking
	s.tagID = tagID
	s.logID = live.ID
	s.startedAt = now
	s.restStartedAt = time.Time{}
	s.restAccrued = 0
	s.persistLocked()
	return s.statusLocked()
}

// StartRest begins an unpaid break. A no-op unless tracking.
func (s *Session) StartRest() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking {
		return s.statusLocked()
	}
	s.state = StateResting
	s.restStartedAt = s.now()
	s.persistLocked()
	return s.statusLocked()
}

// EndRest ends the break, accruing the elapsed rest. A no-op unless resting.
func (s *Session) EndRest() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateResting {
		return s.statusLocked()
	}
	s.endRestLocked()
	s.persistLocked()
	return s.statusLocked()
}

func (s *Session) endRestLocked() {
	s.restAccrued += s.now().Sub(s.restStartedAt)
	s.restStartedAt = time.Time{}
	s.state = StateTracking
}

// EndTracking clocks out: implicit EndRest, finalize the provisional log
// through the wage engine, flush persistence, reset to Idle. The outcome is
// reported, never escalated to a crash.
func (s *Session) EndTracking(ctx context.Context) logbook.SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return logbook.SaveResult{Success: false, Message: "no active session"}
	}
	if s.state == StateResting {
		s.endRestLocked()
	}

	now := s.now()
	s.repo.SaveLog(logbook.LogInput{
		ID:          s.logID,
		Date:        engine.FormatDate(s.startedAt),
		Start:       s.startedAt.Format(engine.ClockLayout),
		End:         now.Format(engine.ClockLayout),
		TagID:       s.tagID,
		RestMinutes: int(math.Round(s.restAccrued.Minutes())),
	})
	result := s.repo.Flush(ctx)

	s.state = StateIdle
	s.tagID = 0
	s.logID = 0
	s.startedAt = time.Time{}
	s.restStartedAt = time.Time{}
	s.restAccrued = 0
	s.persistLocked()
	return result
}

// =============================================================================
// STATUS
// =============================================================================

// Status is a read-only view of the session.
type Status struct {
	State        State         `json:"state"`
	TagID        engine.TagID  `json:"tagId,omitempty"`
	LogID        logbook.LogID `json:"logId,omitempty"`
	StartedAt    time.Time     `json:"startedAt,omitempty"`
	RestingSince time.Time     `json:"restingSince,omitempty"`
	RestMinutes  int           `json:"restMinutes"`
}

// Status reports the current session phase.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	return Status{
		State:        s.state,
		TagID:        s.tagID,
		LogID:        s.logID,
		StartedAt:    s.startedAt,
		RestingSince: s.restStartedAt,
		RestMinutes:  int(math.Round(s.restAccrued.Minutes())),
	}
}

// =============================================================================
// DURABLE SNAPSHOT
// =============================================================================

type snapshot struct {
	State           State         `json:"state"`
	TagID           engine.TagID  `json:"tagId"`
	LogID           logbook.LogID `json:"logId"`
	StartedAt       time.Time     `json:"startedAt"`
	RestStartedAt   time.Time     `json:"restStartedAt"`
	RestAccruedSecs int64         `json:"restAccruedSeconds"`
}

// persistLocked writes the session snapshot atomically. Failures are logged;
// losing the snapshot degrades crash recovery, not the live session.
func (s *Session) persistLocked() {
	snap := snapshot{
		State:           s.state,
		TagID:           s.tagID,
		LogID:           s.logID,
		StartedAt:       s.startedAt,
		RestStartedAt:   s.restStartedAt,
		RestAccruedSecs: int64(s.restAccrued.Seconds()),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Error("marshal session snapshot", "error", err)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.logger.Error("write session snapshot", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		s.logger.Error("rename session snapshot", "path", s.path, "error", err)
	}
}

// restore loads a previously persisted snapshot, if any.
func (s *Session) restore() {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		s.logger.Warn("read session snapshot", "path", s.path, "error", err)
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		backup := s.path + ".corrupt"
		_ = os.Rename(s.path, backup)
		s.logger.Warn("corrupt session snapshot backed up", "path", backup, "error", err)
		return
	}
	if snap.State != StateTracking && snap.State != StateResting {
		return
	}

	s.state = snap.State
	s.tagID = snap.TagID
	s.logID = snap.LogID
	s.startedAt = snap.StartedAt
	s.restStartedAt = snap.RestStartedAt
	s.restAccrued = time.Duration(snap.RestAccruedSecs) * time.Second
}
