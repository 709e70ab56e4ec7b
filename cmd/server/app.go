package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/phrazzld/noble-diary/internal/api"
	"github.com/phrazzld/noble-diary/internal/codec"
	"github.com/phrazzld/noble-diary/internal/config"
	"github.com/phrazzld/noble-diary/internal/domain"
	"github.com/phrazzld/noble-diary/internal/events"
	"github.com/phrazzld/noble-diary/internal/redact"
	"github.com/phrazzld/noble-diary/internal/service"
	"github.com/phrazzld/noble-diary/internal/service/auth"
	"github.com/phrazzld/noble-diary/internal/state"
	"github.com/phrazzld/noble-diary/internal/store"
	"github.com/phrazzld/noble-diary/internal/syncbridge"
	"github.com/phrazzld/noble-diary/internal/task"
)

// effectSweepInterval is how often expired effects are dropped from the noble.
const effectSweepInterval = time.Minute

// application holds the shared dependencies of the server and owns their
// startup and shutdown order.
type application struct {
	config *config.Config
	logger *slog.Logger

	snapshots store.SnapshotStore

	nobleStore     *state.Store[domain.Noble]
	territoryStore *state.Store[domain.Territories]

	nobleBridge     *syncbridge.Bridge[domain.Noble]
	territoryBridge *syncbridge.Bridge[domain.Territories]
	autosaver       *syncbridge.Autosaver

	saveQueue *task.TaskQueue
	savePool  *task.WorkerPool

	bus              *events.Bus
	nobleService     *service.NobleService
	territoryService *service.TerritoryService
	jwtService       auth.JWTService

	stopBackground context.CancelFunc
	background     sync.WaitGroup
	shutdownOnce   sync.Once
}

// newApplication wires every component on top of snapshots. Nothing is
// loaded or started until start is called.
func newApplication(cfg *config.Config, logger *slog.Logger, snapshots store.SnapshotStore) (*application, error) {
	app := &application{
		config:         cfg,
		logger:         logger,
		snapshots:      snapshots,
		nobleStore:     state.New[domain.Noble](nil),
		territoryStore: state.New[domain.Territories](nil),
		bus:            events.NewBus(logger),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	snapshotCodec, err := codec.ByName(cfg.Storage.Codec)
	if err != nil {
		return nil, err
	}

	nobleRepo, err := store.NewRepository[domain.Noble](domain.KindNoble, snapshots, snapshotCodec, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create noble repository: %w", err)
	}
	territoryRepo, err := store.NewRepository[domain.Territories](domain.KindTerritories, snapshots, snapshotCodec, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create territory repository: %w", err)
	}

	app.saveQueue = task.NewTaskQueue(cfg.Sync.SaveQueueSize, logger)
	app.savePool = task.NewWorkerPool(app.saveQueue, task.WorkerPoolConfig{WorkerCount: cfg.Sync.SaveWorkers}, logger)
	app.savePool.SetErrorHandler(func(t task.Task, err error) {
		logger.Debug("save task finished with error", "task_id", t.ID(), "error", redact.Error(err))
	})
	dispatcher := syncbridge.NewPoolDispatcher(app.saveQueue)

	app.nobleBridge, err = syncbridge.New(syncbridge.Config[domain.Noble]{
		Kind:        domain.KindNoble,
		ID:          cfg.Sync.NobleID,
		Store:       app.nobleStore,
		Adapter:     nobleRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
		SaveTimeout: cfg.Sync.SaveTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create noble bridge: %w", err)
	}
	app.territoryBridge, err = syncbridge.New(syncbridge.Config[domain.Territories]{
		Kind:        domain.KindTerritories,
		ID:          cfg.Sync.NobleID,
		Store:       app.territoryStore,
		Adapter:     territoryRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
		SaveTimeout: cfg.Sync.SaveTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create territory bridge: %w", err)
	}

	app.nobleService, err = service.NewNobleService(app.nobleStore, cfg.Sync.NobleID, logger)
	if err != nil {
		return nil, err
	}
	app.territoryService, err = service.NewTerritoryService(app.territoryStore, cfg.Sync.NobleID, app.bus, logger)
	if err != nil {
		return nil, err
	}

	// Command handlers live exactly as long as the bridge mirroring their store.
	nobleHandler := service.NewNobleCommandHandler(app.nobleService, logger)
	territoryHandler := service.NewTerritoryCommandHandler(app.territoryService)
	app.nobleBridge.Attach(func() func() { return app.bus.RegisterHandler(nobleHandler) })
	app.territoryBridge.Attach(func() func() { return app.bus.RegisterHandler(territoryHandler) })

	app.autosaver = syncbridge.NewAutosaver(cfg.Sync.AutosaveInterval, logger, app.nobleBridge, app.territoryBridge)

	return app, nil
}

// start launches the save workers, hydrates both stores and starts the
// background loops. A load failure leaves the affected store in its error
// state and is logged; the server still starts and answers 503 for it.
func (app *application) start(ctx context.Context) {
	app.savePool.Start()

	if err := app.nobleBridge.Mount(ctx); err != nil {
		app.logger.Error("noble store not hydrated", "error", redact.Error(err))
	}
	if err := app.territoryBridge.Mount(ctx); err != nil {
		app.logger.Error("territory store not hydrated", "error", redact.Error(err))
	}

	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app.stopBackground = cancel

	app.background.Add(2)
	go func() {
		defer app.background.Done()
		app.autosaver.Run(bgCtx)
	}()
	go func() {
		defer app.background.Done()
		app.sweepEffects(bgCtx)
	}()
}

func (app *application) sweepEffects(ctx context.Context) {
	ticker := time.NewTicker(effectSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := app.nobleService.ExpireEffects(ctx)
			switch {
			case errors.Is(err, service.ErrNoNoble), errors.Is(err, service.ErrStoreUnavailable):
			case err != nil:
				app.logger.Warn("failed to expire effects", "error", redact.Error(err))
			case removed > 0:
				app.logger.Info("expired effects removed", "count", removed)
			}
		}
	}
}

// router builds the HTTP handler for the application.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Nobles:      app.nobleService,
		Territories: app.territoryService,
		Bus:         app.bus,
		JWT:         app.jwtService,
		NobleID:     app.config.Sync.NobleID,
		Logger:      app.logger,
	})
}

// shutdown stops the background loops, writes a final snapshot of both
// stores, tears the bridges down and waits for queued saves before closing
// storage. It is safe to call more than once.
func (app *application) shutdown(ctx context.Context) {
	app.shutdownOnce.Do(func() {
		if app.stopBackground != nil {
			app.stopBackground()
		}
		app.background.Wait()

		if failed := app.autosaver.FlushAll(ctx); failed > 0 {
			app.logger.Error("final flush incomplete", "failed", failed)
		}

		app.nobleBridge.Teardown()
		app.territoryBridge.Teardown()

		app.saveQueue.Close()
		app.savePool.Wait()

		if err := app.snapshots.Close(); err != nil {
			app.logger.Error("error closing snapshot storage", "error", redact.Error(err))
		}
		app.logger.Info("application shutdown completed")
	})
}
