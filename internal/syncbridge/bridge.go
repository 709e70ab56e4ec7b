package syncbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/redact"
	"github.com/phrazzld/noble-diary/internal/state"
)

// DefaultSaveTimeout bounds a single save when Config.SaveTimeout is zero.
const DefaultSaveTimeout = 10 * time.Second

// Aggregate is the identity every persisted record exposes.
type Aggregate interface {
	AggregateID() string
	AggregateVersion() uint64
}

// Adapter is the persistence port. Load returns (nil, nil) when no record
// exists for id.
type Adapter[A any] interface {
	Load(ctx context.Context, id string) (*A, error)
	Save(ctx context.Context, aggregate *A) error
}

// Config wires a Bridge.
type Config[A Aggregate] struct {
	// Kind names the aggregate in logs and errors, e.g. "noble".
	Kind string

	// ID is the aggregate loaded at mount.
	ID string

	Store      *state.Store[A]
	Adapter    Adapter[A]
	Dispatcher Dispatcher
	Logger     *slog.Logger

	// SaveTimeout bounds each save. Zero means DefaultSaveTimeout.
	SaveTimeout time.Duration
}

type bridgeState int

const (
	stateIdle bridgeState = iota
	stateMounted
	stateTornDown
)

// Bridge mirrors one store to one adapter.
//
// Aggregates held by the store are treated as immutable: a save reads the
// pointer from the snapshot that triggered it, so mutations must always go
// through SetState with a new record.
type Bridge[A Aggregate] struct {
	kind        string
	id          string
	store       *state.Store[A]
	adapter     Adapter[A]
	dispatcher  Dispatcher
	logger      *slog.Logger
	saveTimeout time.Duration

	// lifecycle serializes the subscribe step of Mount with Teardown.
	lifecycle sync.Mutex

	mu          sync.Mutex
	status      bridgeState
	baseCtx     context.Context
	unsubscribe state.Unsubscribe
	onMount     []func()
	onTeardown  []func()
}

// New validates cfg and returns an unmounted bridge.
func New[A Aggregate](cfg Config[A]) (*Bridge[A], error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("adapter cannot be nil")
	}
	if cfg.ID == "" {
		return nil, fmt.Errorf("aggregate id cannot be empty")
	}
	if cfg.Kind == "" {
		cfg.Kind = "aggregate"
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = GoDispatcher{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}

	return &Bridge[A]{
		kind:        cfg.Kind,
		id:          cfg.ID,
		store:       cfg.Store,
		adapter:     cfg.Adapter,
		dispatcher:  cfg.Dispatcher,
		logger:      cfg.Logger.With("component", "sync_bridge", "kind", cfg.Kind, "aggregate_id", cfg.ID),
		saveTimeout: cfg.SaveTimeout,
		baseCtx:     context.Background(),
	}, nil
}

// Kind returns the aggregate kind this bridge persists.
func (b *Bridge[A]) Kind() string { return b.kind }

// OnMount registers fn to run at the end of Mount. Hooks registered after
// Mount never run.
func (b *Bridge[A]) OnMount(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMount = append(b.onMount, fn)
}

// OnTeardown registers fn to run during Teardown, in reverse registration order.
func (b *Bridge[A]) OnTeardown(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTeardown = append(b.onTeardown, fn)
}

// Attach ties a resource to the bridge's mounted lifetime: attach runs at
// mount and the function it returns runs at teardown.
func (b *Bridge[A]) Attach(attach func() (detach func())) {
	var detach func()
	b.OnMount(func() { detach = attach() })
	b.OnTeardown(func() {
		if detach != nil {
			detach()
		}
	})
}

// Mount hydrates the store and starts mirroring it.
//
// A load failure is recorded in the store as a *PersistenceLoadError and
// returned. The bridge is still mounted in that case; the save guard keeps
// it from writing until the error is cleared.
//
// If Teardown runs while the load is in flight, Mount returns ErrTornDown
// without subscribing or running mount hooks.
func (b *Bridge[A]) Mount(ctx context.Context) error {
	b.mu.Lock()
	switch b.status {
	case stateMounted:
		b.mu.Unlock()
		return ErrAlreadyMounted
	case stateTornDown:
		b.mu.Unlock()
		return ErrTornDown
	}
	b.status = stateMounted
	b.baseCtx = context.WithoutCancel(ctx)
	b.mu.Unlock()

	log := logger.FromContextOrDefault(ctx, b.logger)
	loadErr := b.hydrate(ctx, log)

	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	b.mu.Lock()
	if b.status == stateTornDown {
		b.mu.Unlock()
		log.Info("bridge torn down during load; not mirroring")
		return ErrTornDown
	}
	b.unsubscribe = b.store.Subscribe(b.onChange)
	hooks := append([]func(){}, b.onMount...)
	b.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	log.Info("bridge mounted", "hydrated", b.store.GetState().Aggregate != nil)
	return loadErr
}

func (b *Bridge[A]) hydrate(ctx context.Context, log *slog.Logger) error {
	b.store.SetState(state.Loading[A](true))

	record, err := b.adapter.Load(ctx, b.id)
	if err != nil {
		loadErr := &PersistenceLoadError{Kind: b.kind, ID: b.id, Err: err}
		log.Error("failed to load aggregate", "error", redact.Error(err))
		b.store.SetState(state.Failed[A](loadErr), state.Loading[A](false))
		return loadErr
	}

	if record == nil {
		log.Debug("no persisted aggregate found")
		b.store.SetState(state.Loading[A](false))
		return nil
	}

	log.Debug("hydrating store", "version", (*record).AggregateVersion())
	b.store.SetState(state.Replace(record), state.Failed[A](nil), state.Loading[A](false))
	return nil
}

// ShouldSave reports whether snap is eligible for persistence.
func ShouldSave[A any](snap state.Snapshot[A]) bool {
	return snap.Aggregate != nil && !snap.IsLoading && snap.Err == nil
}

func (b *Bridge[A]) onChange(next, _ state.Snapshot[A]) {
	if !ShouldSave(next) {
		return
	}

	aggregate := next.Aggregate
	version := (*aggregate).AggregateVersion()
	job := SaveJob{
		Kind:        b.kind,
		AggregateID: (*aggregate).AggregateID(),
		Version:     version,
		Run: func(ctx context.Context) error {
			return b.save(ctx, aggregate)
		},
	}

	if err := b.dispatcher.Dispatch(job); err != nil {
		b.logger.Warn("save dropped",
			"version", version,
			"error", redact.Error(err))
	}
}

// save runs one save under the bridge timeout. The caller's context only
// contributes values; cancellation comes from the timeout alone.
func (b *Bridge[A]) save(ctx context.Context, aggregate *A) error {
	b.mu.Lock()
	base := b.baseCtx
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.saveTimeout)
	defer cancel()

	version := (*aggregate).AggregateVersion()
	log := logger.FromContextOrDefault(base, b.logger)

	if err := b.adapter.Save(ctx, aggregate); err != nil {
		saveErr := &PersistenceSaveError{
			Kind:    b.kind,
			ID:      (*aggregate).AggregateID(),
			Version: version,
			Err:     err,
		}
		log.Error("failed to save aggregate",
			"version", version,
			"error", redact.Error(err))
		return saveErr
	}

	log.Debug("aggregate saved", "version", version)
	return nil
}

// Flush saves the current aggregate synchronously when the save guard
// passes. It returns nil when there is nothing eligible to save.
func (b *Bridge[A]) Flush(ctx context.Context) error {
	snap := b.store.GetState()
	if !ShouldSave(snap) {
		return nil
	}
	return b.save(ctx, snap.Aggregate)
}

// Teardown stops mirroring and runs teardown hooks. It is idempotent;
// saves already dispatched are left to finish.
func (b *Bridge[A]) Teardown() {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	b.mu.Lock()
	if b.status == stateTornDown {
		b.mu.Unlock()
		return
	}
	wasMounted := b.status == stateMounted
	b.status = stateTornDown
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	hooks := append([]func(){}, b.onTeardown...)
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if wasMounted {
		for i := len(hooks) - 1; i >= 0; i-- {
			hooks[i]()
		}
	}

	b.logger.Info("bridge torn down")
}
