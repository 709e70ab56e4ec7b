package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/noble-diary/internal/domain"
	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/state"
)

// NobleService provides the operations on the player's noble.
type NobleService struct {
	// mu serializes read-modify-write cycles on the store.
	mu      sync.Mutex
	store   *state.Store[domain.Noble]
	nobleID string
	now     func() time.Time
	logger  *slog.Logger
}

// NewNobleService creates a NobleService over store for the noble nobleID.
func NewNobleService(store *state.Store[domain.Noble], nobleID string, logger *slog.Logger) (*NobleService, error) {
	if store == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "store cannot be nil"}
	}
	if strings.TrimSpace(nobleID) == "" {
		return nil, &ServiceError{Operation: "create_service", Message: "noble id cannot be empty"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NobleService{
		store:   store,
		nobleID: nobleID,
		now:     time.Now,
		logger:  logger.With("component", "noble_service"),
	}, nil
}

// NobleID returns the id of the noble this service manages.
func (s *NobleService) NobleID() string { return s.nobleID }

// current returns the stored noble, ErrStoreUnavailable while the store is
// loading or failed, or ErrNoNoble when none exists.
func (s *NobleService) current() (*domain.Noble, error) {
	snap := s.store.GetState()
	if snap.IsLoading || snap.Err != nil {
		return nil, ErrStoreUnavailable
	}
	if snap.Aggregate == nil {
		return nil, ErrNoNoble
	}
	return snap.Aggregate, nil
}

// Get returns the current noble.
func (s *NobleService) Get(ctx context.Context) (*domain.Noble, error) {
	n, err := s.current()
	if err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

// Create creates the noble. It fails with ErrNobleExists when one exists.
func (s *NobleService) Create(ctx context.Context, name, title string) (*domain.Noble, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.store.GetState()
	if snap.IsLoading || snap.Err != nil {
		return nil, ErrStoreUnavailable
	}
	if snap.Aggregate != nil {
		return nil, ErrNobleExists
	}

	noble, err := domain.NewNoble(s.nobleID, name, title, s.now())
	if err != nil {
		return nil, err
	}
	next := s.store.SetState(state.Replace(noble))

	log.Info("noble created", "noble_id", noble.ID, "name", noble.Name)
	return next.Aggregate.Clone(), nil
}

// mutate runs op against the current noble and merges the resulting patch.
func (s *NobleService) mutate(
	ctx context.Context,
	operation string,
	op func(current *domain.Noble, now time.Time) (*domain.NoblePatch, error),
) (*domain.Noble, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.current()
	if err != nil {
		return nil, err
	}

	now := s.now()
	patch, err := op(current, now)
	if err != nil {
		log.Debug("noble operation rejected", "operation", operation, "error", err)
		return nil, err
	}
	if patch == nil {
		return current.Clone(), nil
	}
	patch.At = now

	next := s.store.SetState(state.Merge[domain.Noble](*patch))
	log.Debug("noble updated", "operation", operation, "version", next.Aggregate.Version)
	return next.Aggregate.Clone(), nil
}

// AddResources adds delta to the noble's counters.
func (s *NobleService) AddResources(ctx context.Context, delta domain.Resources) (*domain.Noble, error) {
	return s.mutate(ctx, "add_resources", func(cur *domain.Noble, now time.Time) (*domain.NoblePatch, error) {
		next, err := cur.AddResources(delta, now)
		if err != nil {
			return nil, err
		}
		return &domain.NoblePatch{Resources: next.Resources}, nil
	})
}

// RemoveResources subtracts delta, failing with domain.ErrInsufficientResources
// if any counter would go negative.
func (s *NobleService) RemoveResources(ctx context.Context, delta domain.Resources) (*domain.Noble, error) {
	return s.mutate(ctx, "remove_resources", func(cur *domain.Noble, now time.Time) (*domain.NoblePatch, error) {
		next, err := cur.RemoveResources(delta, now)
		if err != nil {
			return nil, err
		}
		return &domain.NoblePatch{Resources: next.Resources}, nil
	})
}

// UnlockAchievement records the achievement. Unlocking one twice leaves the
// noble untouched and reports unlocked=false.
func (s *NobleService) UnlockAchievement(ctx context.Context, id string) (noble *domain.Noble, unlocked bool, err error) {
	noble, err = s.mutate(ctx, "unlock_achievement", func(cur *domain.Noble, now time.Time) (*domain.NoblePatch, error) {
		next, changed, err := cur.UnlockAchievement(id, now)
		if err != nil || !changed {
			return nil, err
		}
		unlocked = true
		return &domain.NoblePatch{Achievements: next.Achievements}, nil
	})
	return noble, unlocked, err
}

// ApplyEffect adds a timed effect lasting duration.
func (s *NobleService) ApplyEffect(
	ctx context.Context,
	name string,
	resource domain.Resource,
	multiplier float64,
	duration time.Duration,
) (*domain.Noble, error) {
	return s.mutate(ctx, "apply_effect", func(cur *domain.Noble, now time.Time) (*domain.NoblePatch, error) {
		if duration <= 0 || duration > domain.MaxEffectDuration {
			return nil, fmt.Errorf("%w: duration must be positive and at most %s",
				domain.ErrInvalidEffect, domain.MaxEffectDuration)
		}
		effect := domain.Effect{
			Name:       strings.TrimSpace(name),
			Resource:   resource,
			Multiplier: multiplier,
			ExpiresAt:  now.Add(duration).UTC(),
		}
		next, err := cur.ApplyEffect(effect, now)
		if err != nil {
			return nil, err
		}
		return &domain.NoblePatch{Effects: next.Effects}, nil
	})
}

// ExpireEffects drops effects that have ended and returns how many were removed.
func (s *NobleService) ExpireEffects(ctx context.Context) (int, error) {
	removed := 0
	_, err := s.mutate(ctx, "expire_effects", func(cur *domain.Noble, now time.Time) (*domain.NoblePatch, error) {
		next, n := cur.ExpireEffects(now)
		if n == 0 {
			return nil, nil
		}
		removed = n
		return &domain.NoblePatch{Effects: next.Effects}, nil
	})
	return removed, err
}

// CollectYield credits base after applying the multipliers of active effects.
func (s *NobleService) CollectYield(ctx context.Context, base domain.Resources) (*domain.Noble, error) {
	return s.mutate(ctx, "collect_yield", func(cur *domain.Noble, now time.Time) (*domain.NoblePatch, error) {
		next, err := cur.AddResources(cur.EffectiveYield(base, now), now)
		if err != nil {
			return nil, err
		}
		return &domain.NoblePatch{Resources: next.Resources}, nil
	})
}
