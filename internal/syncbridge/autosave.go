package syncbridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/noble-diary/internal/redact"
)

// DefaultAutosaveInterval is used when no interval is configured.
const DefaultAutosaveInterval = 5 * time.Minute

// Flusher is implemented by *Bridge.
type Flusher interface {
	Kind() string
	Flush(ctx context.Context) error
}

// Autosaver flushes a set of bridges on a fixed interval.
type Autosaver struct {
	interval time.Duration
	flushers []Flusher
	logger   *slog.Logger
}

// NewAutosaver creates an autosaver. An interval of zero or less disables it.
func NewAutosaver(interval time.Duration, logger *slog.Logger, flushers ...Flusher) *Autosaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{
		interval: interval,
		flushers: flushers,
		logger:   logger.With("component", "autosaver"),
	}
}

// Run flushes every interval until ctx is cancelled.
func (a *Autosaver) Run(ctx context.Context) {
	if a.interval <= 0 || len(a.flushers) == 0 {
		a.logger.Info("autosave disabled")
		return
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("autosave started", "interval", a.interval.String())
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("autosave stopped")
			return
		case <-ticker.C:
			a.FlushAll(ctx)
		}
	}
}

// FlushAll flushes every bridge once and returns the number of failures.
func (a *Autosaver) FlushAll(ctx context.Context) int {
	failed := 0
	for _, f := range a.flushers {
		if err := f.Flush(ctx); err != nil {
			failed++
			a.logger.Warn("autosave flush failed", "kind", f.Kind(), "error", redact.Error(err))
		}
	}
	return failed
}
