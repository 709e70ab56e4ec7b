package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/noble-diary/internal/config"
	"github.com/phrazzld/noble-diary/internal/platform/memstore"
	"github.com/phrazzld/noble-diary/internal/platform/postgres"
	"github.com/phrazzld/noble-diary/internal/platform/redisstore"
	"github.com/phrazzld/noble-diary/internal/platform/sqlite"
	"github.com/phrazzld/noble-diary/internal/store"
)

// openSnapshotStore opens the backend selected by cfg.Driver.
func openSnapshotStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.SnapshotStore, error) {
	var (
		snapshots store.SnapshotStore
		err       error
	)

	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; the diary will not survive a restart")
		return memstore.New(), nil
	case config.DriverSQLite:
		var s *sqlite.Store
		s, err = sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err == nil {
			snapshots = s
		}
	case config.DriverPostgres:
		var s *postgres.PostgresSnapshotStore
		s, err = postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err == nil {
			snapshots = s
		}
	case config.DriverRedis:
		var s *redisstore.Store
		s, err = redisstore.Open(ctx, cfg.RedisAddr, logger)
		if err == nil {
			snapshots = s
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Driver, err)
	}
	logger.Info("snapshot storage opened", "driver", cfg.Driver, "codec", cfg.Codec)
	return snapshots, nil
}
