package state

import (
	"sync"
	"sync/atomic"
)

// Patch merges a field-level update into an aggregate and returns the
// resulting record. Implementations must not modify current.
type Patch[A any] interface {
	Apply(current *A) *A
}

// Snapshot is the observable state of a Store.
type Snapshot[A any] struct {
	// Aggregate is nil until one is created or hydrated.
	Aggregate *A

	IsLoading bool
	Err       error

	// Revision increments on every SetState.
	Revision uint64
}

// Partial is one field-level change applied by SetState.
type Partial[A any] func(s *Snapshot[A])

// Merge applies p to the current aggregate. It is a no-op when there is none.
func Merge[A any](p Patch[A]) Partial[A] {
	return func(s *Snapshot[A]) {
		if s.Aggregate == nil || p == nil {
			return
		}
		s.Aggregate = p.Apply(s.Aggregate)
	}
}

// Replace swaps in a as the whole aggregate. A nil a clears it.
func Replace[A any](a *A) Partial[A] {
	return func(s *Snapshot[A]) {
		s.Aggregate = a
	}
}

// Loading sets the loading flag.
func Loading[A any](loading bool) Partial[A] {
	return func(s *Snapshot[A]) {
		s.IsLoading = loading
	}
}

// Failed records err as the store error. Failed(nil) clears it.
func Failed[A any](err error) Partial[A] {
	return func(s *Snapshot[A]) {
		s.Err = err
	}
}

// Listener receives the state after a mutation and the state before it.
type Listener[A any] func(next, prev Snapshot[A])

// Unsubscribe releases a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

type subscription[A any] struct {
	id     uint64
	fn     Listener[A]
	active atomic.Bool
}

// Store is an observable container for one aggregate of type A.
// It is safe for concurrent use; when several goroutines mutate the same
// store, the relative order of their notifications is unspecified.
type Store[A any] struct {
	mu        sync.Mutex
	snap      Snapshot[A]
	listeners []*subscription[A]
	nextID    uint64
}

// New returns a store holding initial, which may be nil.
func New[A any](initial *A) *Store[A] {
	return &Store[A]{snap: Snapshot[A]{Aggregate: initial}}
}

// GetState returns the current state.
func (s *Store[A]) GetState() Snapshot[A] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetState applies partials in order as a single mutation, then invokes
// every listener with the new and previous state. Listeners run on the
// calling goroutine and may call SetState themselves.
func (s *Store[A]) SetState(partials ...Partial[A]) Snapshot[A] {
	s.mu.Lock()
	prev := s.snap
	next := prev
	for _, p := range partials {
		if p != nil {
			p(&next)
		}
	}
	next.Revision = prev.Revision + 1
	s.snap = next
	listeners := make([]*subscription[A], len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, sub := range listeners {
		if sub.active.Load() {
			sub.fn(next, prev)
		}
	}
	return next
}

// Subscribe registers fn to be called after every mutation.
func (s *Store[A]) Subscribe(fn Listener[A]) Unsubscribe {
	s.mu.Lock()
	s.nextID++
	sub := &subscription[A]{id: s.nextID, fn: fn}
	sub.active.Store(true)
	s.listeners = append(s.listeners, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			s.remove(sub.id)
		})
	}
}

// ListenerCount returns the number of registered listeners.
func (s *Store[A]) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

func (s *Store[A]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}
