/*
Package sqlite provides the SQLite-backed persistence collaborator.

PURPOSE:
  Stores each user's complete snapshot ({logs, tags}) as one JSON document
  keyed by username. The tracker's write pattern is whole-document,
  last-writer-wins, which a single blob row models exactly; there is no
  cross-user query surface to normalize for.

KEY TABLE:
  user_data(username PRIMARY KEY, document, updated_at)

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

CONCURRENCY:
  Uses sync.RWMutex for thread-safety across the debounce goroutines that
  share one Store.

USAGE:
  store, err := sqlite.New("./attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - logbook/persist.go: Persister interface this package implements
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shiftwage/attendance-engine/logbook"
)

// Store implements logbook.Persister using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at dbPath. Use ":memory:" for an in-memory
// database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_data (
		username   TEXT PRIMARY KEY,
		document   TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Save overwrites the stored document for username.
func (s *Store) Save(ctx context.Context, username string, snap logbook.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot for %q: %w", username, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_data (username, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		username, string(doc), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot for %q: %w", username, err)
	}
	return nil
}

// Load returns the stored snapshot for username. A user with no row yields
// the empty snapshot. Legacy flat log lists inside stored documents are
// normalized by Snapshot's decoder.
func (s *Store) Load(ctx context.Context, username string) (logbook.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM user_data WHERE username = ?`, username).Scan(&doc)
	if err == sql.ErrNoRows {
		return logbook.EmptySnapshot(), nil
	}
	if err != nil {
		return logbook.Snapshot{}, fmt.Errorf("load snapshot for %q: %w", username, err)
	}

	var snap logbook.Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return logbook.Snapshot{}, fmt.Errorf("decode snapshot for %q: %w", username, err)
	}
	return snap, nil
}

// ListUsers returns every username with stored data, sorted.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT username FROM user_data ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		users = append(users, name)
	}
	return users, rows.Err()
}
