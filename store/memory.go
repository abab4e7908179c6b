// Package store provides logbook.Persister implementations.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shiftwage/attendance-engine/logbook"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps each user's document as marshaled JSON, mirroring how the
// SQLite store round-trips snapshots. That keeps legacy-shape decoding on
// the same code path in tests.
type Memory struct {
	mu        sync.RWMutex
	documents map[string][]byte

	// FailSaves makes every Save return an error, for exercising the
	// repository's failure surface.
	FailSaves error
}

func NewMemory() *Memory {
	return &Memory{documents: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, username string, snap logbook.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSaves != nil {
		return m.FailSaves
	}
	doc, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.documents[username] = doc
	return nil
}

func (m *Memory) Load(_ context.Context, username string) (logbook.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.documents[username]
	if !ok {
		return logbook.EmptySnapshot(), nil
	}
	var snap logbook.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return logbook.Snapshot{}, err
	}
	return snap, nil
}

// SeedDocument stores a raw document for username, bypassing Snapshot
// marshaling. Used by tests to plant legacy-shaped data.
func (m *Memory) SeedDocument(username string, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[username] = append([]byte(nil), doc...)
}

// ListUsers returns every username with stored data.
func (m *Memory) ListUsers(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]string, 0, len(m.documents))
	for name := range m.documents {
		users = append(users, name)
	}
	return users, nil
}
