package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/noble-diary/internal/api/shared"
	"github.com/phrazzld/noble-diary/internal/domain"
	"github.com/phrazzld/noble-diary/internal/events"
)

// NobleReader reads the current noble.
type NobleReader interface {
	Get(ctx context.Context) (*domain.Noble, error)
}

// NobleHandler handles the /api/noble routes.
type NobleHandler struct {
	nobles NobleReader
	bus    events.Dispatcher
}

// NewNobleHandler creates a NobleHandler. Mutations are sent to bus.
func NewNobleHandler(nobles NobleReader, bus events.Dispatcher) *NobleHandler {
	return &NobleHandler{nobles: nobles, bus: bus}
}

// GetNoble handles GET /api/noble.
func (h *NobleHandler) GetNoble(w http.ResponseWriter, r *http.Request) {
	h.respondWithNoble(w, r, http.StatusOK)
}

// CreateNoble handles POST /api/noble.
func (h *NobleHandler) CreateNoble(w http.ResponseWriter, r *http.Request) {
	var req CreateNobleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	payload := events.CreateNoblePayload{Name: req.Name, Title: req.Title}
	if !dispatch(w, r, h.bus, events.CommandNobleCreate, payload) {
		return
	}
	h.respondWithNoble(w, r, http.StatusCreated)
}

// AddResources handles POST /api/noble/resources/add.
func (h *NobleHandler) AddResources(w http.ResponseWriter, r *http.Request) {
	h.changeResources(w, r, events.CommandNobleAddResources)
}

// RemoveResources handles POST /api/noble/resources/remove.
func (h *NobleHandler) RemoveResources(w http.ResponseWriter, r *http.Request) {
	h.changeResources(w, r, events.CommandNobleRemoveResources)
}

func (h *NobleHandler) changeResources(w http.ResponseWriter, r *http.Request, cmdType string) {
	var req ResourcesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !dispatch(w, r, h.bus, cmdType, events.ResourcesPayload{Resources: req.Resources}) {
		return
	}
	h.respondWithNoble(w, r, http.StatusOK)
}

// UnlockAchievement handles POST /api/noble/achievements.
func (h *NobleHandler) UnlockAchievement(w http.ResponseWriter, r *http.Request) {
	var req AchievementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !dispatch(w, r, h.bus, events.CommandNobleUnlockAchievement, events.AchievementPayload{ID: req.ID}) {
		return
	}
	h.respondWithNoble(w, r, http.StatusOK)
}

// ApplyEffect handles POST /api/noble/effects.
func (h *NobleHandler) ApplyEffect(w http.ResponseWriter, r *http.Request) {
	var req EffectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	payload := events.EffectPayload{
		Name:            req.Name,
		Resource:        req.Resource,
		Multiplier:      req.Multiplier,
		DurationSeconds: req.DurationSeconds,
	}
	if !dispatch(w, r, h.bus, events.CommandNobleApplyEffect, payload) {
		return
	}
	h.respondWithNoble(w, r, http.StatusOK)
}

func (h *NobleHandler) respondWithNoble(w http.ResponseWriter, r *http.Request, status int) {
	noble, err := h.nobles.Get(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, status, nobleToResponse(noble))
}
