package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/noble-diary/internal/api/middleware"
	"github.com/phrazzld/noble-diary/internal/events"
	"github.com/phrazzld/noble-diary/internal/service/auth"
)

// RouterConfig carries the dependencies of the HTTP routes.
type RouterConfig struct {
	Nobles      NobleReader
	Territories TerritoryReader
	Bus         events.Dispatcher
	JWT         auth.JWTService
	NobleID     string
	Logger      *slog.Logger
}

// NewRouter builds the diary HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace(log))

	nobleHandler := NewNobleHandler(cfg.Nobles, cfg.Bus)
	territoryHandler := NewTerritoryHandler(cfg.Territories, cfg.Nobles, cfg.Bus)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT, cfg.NobleID)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/noble", nobleHandler.GetNoble)
		r.Post("/noble", nobleHandler.CreateNoble)
		r.Post("/noble/resources/add", nobleHandler.AddResources)
		r.Post("/noble/resources/remove", nobleHandler.RemoveResources)
		r.Post("/noble/achievements", nobleHandler.UnlockAchievement)
		r.Post("/noble/effects", nobleHandler.ApplyEffect)

		r.Get("/territories", territoryHandler.ListTerritories)
		r.Post("/territories", territoryHandler.AcquireTerritory)
		r.Post("/territories/collect", territoryHandler.Collect)
		r.Post("/territories/{id}/upgrade", territoryHandler.UpgradeTerritory)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
