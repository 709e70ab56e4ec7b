package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/noble-diary/internal/domain"
	"github.com/phrazzld/noble-diary/internal/events"
)

// NobleCommandHandler applies noble.* commands to a NobleService.
type NobleCommandHandler struct {
	nobles *NobleService
	logger *slog.Logger
}

// NewNobleCommandHandler creates a handler for noble commands.
func NewNobleCommandHandler(nobles *NobleService, logger *slog.Logger) *NobleCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NobleCommandHandler{
		nobles: nobles,
		logger: logger.With("component", "noble_command_handler"),
	}
}

// HandleCommand implements events.CommandHandler.
func (h *NobleCommandHandler) HandleCommand(ctx context.Context, cmd *events.Command) error {
	switch cmd.Type {
	case events.CommandNobleCreate:
		var p events.CreateNoblePayload
		if err := decode(cmd, &p); err != nil {
			return err
		}
		_, err := h.nobles.Create(ctx, p.Name, p.Title)
		return err

	case events.CommandNobleAddResources, events.CommandNobleRemoveResources, events.CommandNobleCollectYield:
		var p events.ResourcesPayload
		if err := decode(cmd, &p); err != nil {
			return err
		}
		delta := toResources(p.Resources)
		var err error
		switch cmd.Type {
		case events.CommandNobleAddResources:
			_, err = h.nobles.AddResources(ctx, delta)
		case events.CommandNobleRemoveResources:
			_, err = h.nobles.RemoveResources(ctx, delta)
		default:
			_, err = h.nobles.CollectYield(ctx, delta)
		}
		return err

	case events.CommandNobleUnlockAchievement:
		var p events.AchievementPayload
		if err := decode(cmd, &p); err != nil {
			return err
		}
		_, unlocked, err := h.nobles.UnlockAchievement(ctx, p.ID)
		if err == nil && !unlocked {
			h.logger.Debug("achievement already unlocked", "achievement_id", p.ID)
		}
		return err

	case events.CommandNobleApplyEffect:
		var p events.EffectPayload
		if err := decode(cmd, &p); err != nil {
			return err
		}
		duration, err := effectDuration(p.DurationSeconds)
		if err != nil {
			return err
		}
		_, err = h.nobles.ApplyEffect(ctx, p.Name, domain.Resource(p.Resource), p.Multiplier, duration)
		return err

	default:
		return events.ErrUnsupportedCommand
	}
}

// TerritoryCommandHandler applies territory.* commands to a TerritoryService.
type TerritoryCommandHandler struct {
	territories *TerritoryService
}

// NewTerritoryCommandHandler creates a handler for territory commands.
func NewTerritoryCommandHandler(territories *TerritoryService) *TerritoryCommandHandler {
	return &TerritoryCommandHandler{territories: territories}
}

// HandleCommand implements events.CommandHandler.
func (h *TerritoryCommandHandler) HandleCommand(ctx context.Context, cmd *events.Command) error {
	switch cmd.Type {
	case events.CommandTerritoryAcquire:
		var p events.AcquireTerritoryPayload
		if err := decode(cmd, &p); err != nil {
			return err
		}
		_, err := h.territories.Acquire(ctx, p.Name, domain.TerritoryKind(p.Kind))
		return err

	case events.CommandTerritoryUpgrade:
		var p events.UpgradeTerritoryPayload
		if err := decode(cmd, &p); err != nil {
			return err
		}
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return fmt.Errorf("%w: territory id: %v", ErrInvalidCommand, err)
		}
		_, err = h.territories.Upgrade(ctx, id)
		return err

	case events.CommandTerritoryCollect:
		_, err := h.territories.Collect(ctx)
		return err

	default:
		return events.ErrUnsupportedCommand
	}
}

func decode(cmd *events.Command, v any) error {
	if err := cmd.UnmarshalPayload(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCommand, cmd.Type, err)
	}
	return nil
}

// effectDuration converts seconds to a duration, rejecting values that
// would overflow time.Duration or exceed domain.MaxEffectDuration.
func effectDuration(seconds int64) (time.Duration, error) {
	if seconds <= 0 || seconds > int64(domain.MaxEffectDuration/time.Second) {
		return 0, fmt.Errorf("%w: duration_seconds %d out of range", domain.ErrInvalidEffect, seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

func toResources(in map[string]int64) domain.Resources {
	out := make(domain.Resources, len(in))
	for k, v := range in {
		out[domain.Resource(k)] = v
	}
	return out
}
