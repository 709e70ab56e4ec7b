// Package memstore is an in-process store.SnapshotStore. Contents are lost
// when the process exits.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/noble-diary/internal/store"
)

type key struct {
	kind string
	id   string
}

// Store keeps snapshots in a map. Writes are serialized.
type Store struct {
	mu        sync.RWMutex
	snapshots map[key]*store.Snapshot
	puts      int
}

var _ store.SnapshotStore = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{snapshots: make(map[key]*store.Snapshot)}
}

// Get implements store.SnapshotStore.
func (s *Store) Get(ctx context.Context, kind, id string) (*store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[key{kind, id}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return snap.Clone(), nil
}

// Put implements store.SnapshotStore.
func (s *Store) Put(ctx context.Context, snap *store.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{snap.Kind, snap.ID}
	if cur, ok := s.snapshots[k]; ok && cur.Version > snap.Version {
		return fmt.Errorf("%w: stored %d, got %d", store.ErrStaleVersion, cur.Version, snap.Version)
	}
	s.snapshots[k] = snap.Clone()
	s.puts++
	return nil
}

// Puts returns the number of accepted writes.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Close implements store.SnapshotStore.
func (s *Store) Close() error {
	return nil
}
