package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/noble-diary/internal/store"
)

// MockSnapshotStore implements store.SnapshotStore for testing. Without
// function fields it behaves as an empty store that accepts every Put.
type MockSnapshotStore struct {
	GetFn   func(ctx context.Context, kind, id string) (*store.Snapshot, error)
	PutFn   func(ctx context.Context, s *store.Snapshot) error
	CloseFn func() error

	mu   sync.Mutex
	puts []*store.Snapshot
}

var _ store.SnapshotStore = (*MockSnapshotStore)(nil)

// Get implements store.SnapshotStore.
func (m *MockSnapshotStore) Get(ctx context.Context, kind, id string) (*store.Snapshot, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, kind, id)
	}
	return nil, store.ErrNotFound
}

// Put implements store.SnapshotStore and records the snapshot.
func (m *MockSnapshotStore) Put(ctx context.Context, s *store.Snapshot) error {
	m.mu.Lock()
	m.puts = append(m.puts, s.Clone())
	m.mu.Unlock()

	if m.PutFn != nil {
		return m.PutFn(ctx, s)
	}
	return nil
}

// Close implements store.SnapshotStore.
func (m *MockSnapshotStore) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

// Puts returns copies of every snapshot passed to Put, in call order.
func (m *MockSnapshotStore) Puts() []*store.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*store.Snapshot(nil), m.puts...)
}
