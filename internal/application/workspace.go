package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bjax13/CookbookClub/internal/state"
)

// SnapshotStore loads and persists whole snapshots.
type SnapshotStore interface {
	Load(ctx context.Context) (*state.Snapshot, error)
	Save(ctx context.Context, snapshot *state.Snapshot) error
}

// ServiceFactory binds a Service to a snapshot.
type ServiceFactory func(snapshot *state.Snapshot) *Service

// Workspace owns the live snapshot and serialises every operation on it.
// Updates run against a clone which replaces the live snapshot only after the
// operation succeeds and the store accepts it.
type Workspace struct {
	mu       sync.Mutex
	store    SnapshotStore
	factory  ServiceFactory
	snapshot *state.Snapshot
}

// OpenWorkspace loads the current snapshot from store.
func OpenWorkspace(ctx context.Context, store SnapshotStore, factory ServiceFactory) (*Workspace, error) {
	if store == nil {
		return nil, fmt.Errorf("application: snapshot store is required")
	}
	if factory == nil {
		factory = func(snapshot *state.Snapshot) *Service {
			return NewService(snapshot, nil, nil)
		}
	}
	snapshot, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snapshot.Normalize()
	return &Workspace{store: store, factory: factory, snapshot: snapshot}, nil
}

// View runs fn against the live snapshot. fn must not mutate state.
func (w *Workspace) View(ctx context.Context, fn func(*Service) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.factory(w.snapshot))
}

// Update runs fn against a clone of the live snapshot and commits the clone
// when fn and the subsequent save both succeed.
func (w *Workspace) Update(ctx context.Context, fn func(*Service) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	draft := w.snapshot.Clone()
	if err := fn(w.factory(draft)); err != nil {
		return err
	}
	if err := w.store.Save(ctx, draft); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	w.snapshot = draft
	return nil
}

// Replace persists snapshot as the new live state.
func (w *Workspace) Replace(ctx context.Context, snapshot *state.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := snapshot.Clone()
	next.Normalize()
	if err := w.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	w.snapshot = next
	return nil
}

// Snapshot returns a deep copy of the live state.
func (w *Workspace) Snapshot() *state.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot.Clone()
}
