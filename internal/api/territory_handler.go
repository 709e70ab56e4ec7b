package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/noble-diary/internal/api/shared"
	"github.com/phrazzld/noble-diary/internal/domain"
	"github.com/phrazzld/noble-diary/internal/events"
)

// TerritoryReader reads the noble's holdings.
type TerritoryReader interface {
	Get(ctx context.Context) (*domain.Territories, error)
}

// TerritoryHandler handles the /api/territories routes.
type TerritoryHandler struct {
	territories TerritoryReader
	nobles      NobleReader
	bus         events.Dispatcher
}

// NewTerritoryHandler creates a TerritoryHandler. Collect responds with
// the noble, so it needs a NobleReader as well.
func NewTerritoryHandler(territories TerritoryReader, nobles NobleReader, bus events.Dispatcher) *TerritoryHandler {
	return &TerritoryHandler{territories: territories, nobles: nobles, bus: bus}
}

// ListTerritories handles GET /api/territories.
func (h *TerritoryHandler) ListTerritories(w http.ResponseWriter, r *http.Request) {
	h.respondWithTerritories(w, r, http.StatusOK)
}

// AcquireTerritory handles POST /api/territories.
func (h *TerritoryHandler) AcquireTerritory(w http.ResponseWriter, r *http.Request) {
	var req AcquireTerritoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	payload := events.AcquireTerritoryPayload{Name: req.Name, Kind: req.Kind}
	if !dispatch(w, r, h.bus, events.CommandTerritoryAcquire, payload) {
		return
	}
	h.respondWithTerritories(w, r, http.StatusCreated)
}

// UpgradeTerritory handles POST /api/territories/{id}/upgrade.
func (h *TerritoryHandler) UpgradeTerritory(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathUUID(r, "id")
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid territory id")
		return
	}
	if !dispatch(w, r, h.bus, events.CommandTerritoryUpgrade, events.UpgradeTerritoryPayload{ID: id.String()}) {
		return
	}

	territories, err := h.territories.Get(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	item, found := territories.Find(id)
	if !found {
		HandleAPIError(w, r, domain.ErrUnknownTerritory, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, territoryToResponse(item))
}

// Collect handles POST /api/territories/collect and responds with the
// credited noble.
func (h *TerritoryHandler) Collect(w http.ResponseWriter, r *http.Request) {
	if !dispatch(w, r, h.bus, events.CommandTerritoryCollect, struct{}{}) {
		return
	}
	noble, err := h.nobles.Get(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, nobleToResponse(noble))
}

func (h *TerritoryHandler) respondWithTerritories(w http.ResponseWriter, r *http.Request, status int) {
	territories, err := h.territories.Get(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, status, territoriesToResponse(territories))
}
