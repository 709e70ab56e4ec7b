// Package main runs the noble diary server: it hydrates the noble and
// territory stores from the configured storage, mirrors every change back
// to it, and serves the HTTP command API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phrazzld/noble-diary/internal/config"
	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/service/auth"
)

func main() {
	issueToken := flag.Bool("issue-token", false, "print a bearer token for the configured noble and exit")
	flag.Parse()

	if err := run(context.Background(), *issueToken); err != nil {
		log.Fatalf("noble-diary: %v", err)
	}
}

func run(ctx context.Context, issueToken bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if issueToken {
		return printToken(ctx, cfg)
	}

	l, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"storage_driver", cfg.Storage.Driver,
		"noble_id", cfg.Sync.NobleID)

	snapshots, err := openSnapshotStore(ctx, cfg.Storage, l)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, l, snapshots)
	if err != nil {
		_ = snapshots.Close()
		return err
	}
	app.start(ctx)
	return app.serve(ctx)
}

func printToken(ctx context.Context, cfg *config.Config) error {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := jwtService.GenerateToken(logger.WithLogger(ctx, slog.Default()), cfg.Sync.NobleID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}
