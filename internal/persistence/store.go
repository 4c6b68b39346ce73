// Package persistence defines the snapshot store contract and the checks that
// every backend applies before accepting data.
package persistence

import (
	"context"
	"sync"

	"github.com/bjax13/CookbookClub/internal/state"
)

// Store loads and saves the complete club snapshot.
type Store interface {
	Load(ctx context.Context) (*state.Snapshot, error)
	Save(ctx context.Context, snapshot *state.Snapshot) error
}

// MemoryStore keeps the snapshot in process. It is used by tests and by the
// web server when no data path is configured.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot *state.Snapshot
	saves    int
}

// NewMemoryStore returns a store seeded with snapshot, or an empty one when
// snapshot is nil.
func NewMemoryStore(snapshot *state.Snapshot) *MemoryStore {
	if snapshot == nil {
		snapshot = state.New()
	}
	return &MemoryStore{snapshot: snapshot.Clone()}
}

func (m *MemoryStore) Load(context.Context) (*state.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot.Clone()
	snap.Normalize()
	return snap, nil
}

func (m *MemoryStore) Save(_ context.Context, snapshot *state.Snapshot) error {
	if err := ValidateSnapshot(snapshot); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot.Clone()
	m.saves++
	return nil
}

// Saves reports how many snapshots were accepted.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
