package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/noble-diary/internal/domain"
	"github.com/phrazzld/noble-diary/internal/events"
	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/state"
)

// TerritoryService manages the noble's holdings.
type TerritoryService struct {
	mu         sync.Mutex
	store      *state.Store[domain.Territories]
	nobleID    string
	dispatcher events.Dispatcher
	now        func() time.Time
	logger     *slog.Logger
}

// NewTerritoryService creates a TerritoryService. Collected yields are sent
// to the noble through dispatcher.
func NewTerritoryService(
	store *state.Store[domain.Territories],
	nobleID string,
	dispatcher events.Dispatcher,
	logger *slog.Logger,
) (*TerritoryService, error) {
	if store == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "store cannot be nil"}
	}
	if dispatcher == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "dispatcher cannot be nil"}
	}
	if strings.TrimSpace(nobleID) == "" {
		return nil, &ServiceError{Operation: "create_service", Message: "noble id cannot be empty"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TerritoryService{
		store:      store,
		nobleID:    nobleID,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger.With("component", "territory_service"),
	}, nil
}

func (s *TerritoryService) snapshot() (*domain.Territories, error) {
	snap := s.store.GetState()
	if snap.IsLoading || snap.Err != nil {
		return nil, ErrStoreUnavailable
	}
	return snap.Aggregate, nil
}

// Get returns the holdings. A noble without holdings gets an empty collection.
func (s *TerritoryService) Get(ctx context.Context) (*domain.Territories, error) {
	current, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &domain.Territories{ID: s.nobleID, Items: []domain.Territory{}}, nil
	}
	return current.Clone(), nil
}

// Acquire adds a new level-1 holding.
func (s *TerritoryService) Acquire(ctx context.Context, name string, kind domain.TerritoryKind) (domain.Territory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.snapshot()
	if err != nil {
		return domain.Territory{}, err
	}

	now := s.now()
	created := current == nil
	if created {
		if current, err = domain.NewTerritories(s.nobleID, now); err != nil {
			return domain.Territory{}, err
		}
	}

	next, item, err := current.Acquire(name, kind, now)
	if err != nil {
		return domain.Territory{}, err
	}

	if created {
		s.store.SetState(state.Replace(next))
	} else {
		s.store.SetState(state.Merge[domain.Territories](domain.TerritoriesPatch{Items: next.Items, At: now}))
	}

	log.Info("territory acquired", "territory_id", item.ID, "kind", item.Kind)
	return item, nil
}

// Upgrade raises the holding's level by one.
func (s *TerritoryService) Upgrade(ctx context.Context, id uuid.UUID) (domain.Territory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.snapshot()
	if err != nil {
		return domain.Territory{}, err
	}
	if current == nil {
		current = &domain.Territories{ID: s.nobleID}
	}

	now := s.now()
	next, item, err := current.Upgrade(id, now)
	if err != nil {
		return domain.Territory{}, err
	}
	s.store.SetState(state.Merge[domain.Territories](domain.TerritoriesPatch{Items: next.Items, At: now}))

	log.Info("territory upgraded", "territory_id", item.ID, "level", item.Level)
	return item, nil
}

// Collect sums the base yield of all holdings and credits it to the noble
// with a noble.collect_yield command. It returns the base yield.
func (s *TerritoryService) Collect(ctx context.Context) (domain.Resources, error) {
	current, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	yield := domain.Resources{}
	if current != nil {
		yield = current.Yield()
	}

	payload := events.ResourcesPayload{Resources: make(map[string]int64, len(yield))}
	for k, v := range yield {
		payload.Resources[string(k)] = v
	}
	cmd, err := events.NewCommand(events.CommandNobleCollectYield, payload)
	if err != nil {
		return nil, NewServiceError("collect", "failed to build command", err)
	}
	if err := s.dispatcher.Dispatch(ctx, cmd); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("territory yield collected", "yield", yield)
	return yield, nil
}
