package api

import (
	"time"

	"github.com/phrazzld/noble-diary/internal/domain"
)

// CreateNobleRequest is the body of POST /api/noble.
type CreateNobleRequest struct {
	Name  string `json:"name"  validate:"required,max=80"`
	Title string `json:"title" validate:"max=80"`
}

// ResourcesRequest is the body of the resource add and remove routes.
type ResourcesRequest struct {
	Resources map[string]int64 `json:"resources" validate:"required,min=1,dive,keys,oneof=gold influence prestige food,endkeys,gte=0"`
}

// AchievementRequest is the body of POST /api/noble/achievements.
type AchievementRequest struct {
	ID string `json:"id" validate:"required,max=120"`
}

// EffectRequest is the body of POST /api/noble/effects.
type EffectRequest struct {
	Name            string  `json:"name"             validate:"required,max=80"`
	Resource        string  `json:"resource"         validate:"required,oneof=gold influence prestige food"`
	Multiplier      float64 `json:"multiplier"       validate:"gt=0,lte=100"`
	DurationSeconds int64   `json:"duration_seconds" validate:"gt=0,max=2592000"`
}

// AcquireTerritoryRequest is the body of POST /api/territories.
type AcquireTerritoryRequest struct {
	Name string `json:"name" validate:"required,max=80"`
	Kind string `json:"kind" validate:"required,oneof=farmland mine market keep"`
}

// NobleResponse is the public view of a noble.
type NobleResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Title        string               `json:"title"`
	Resources    map[string]int64     `json:"resources"`
	Achievements []domain.Achievement `json:"achievements"`
	Effects      []domain.Effect      `json:"effects"`
	Version      uint64               `json:"version"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// TerritoryResponse is the public view of one holding.
type TerritoryResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Kind       string           `json:"kind"`
	Level      int              `json:"level"`
	Yield      map[string]int64 `json:"yield"`
	AcquiredAt time.Time        `json:"acquired_at"`
}

// TerritoriesResponse lists the holdings and their combined yield.
type TerritoriesResponse struct {
	Items   []TerritoryResponse `json:"items"`
	Yield   map[string]int64    `json:"yield"`
	Version uint64              `json:"version"`
}

func resourcesToMap(r domain.Resources) map[string]int64 {
	out := make(map[string]int64, len(r))
	for k, v := range r {
		out[string(k)] = v
	}
	return out
}

func nobleToResponse(n *domain.Noble) NobleResponse {
	return NobleResponse{
		ID:           n.ID,
		Name:         n.Name,
		Title:        n.Title,
		Resources:    resourcesToMap(n.Resources),
		Achievements: n.Achievements,
		Effects:      n.Effects,
		Version:      n.Version,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

func territoryToResponse(t domain.Territory) TerritoryResponse {
	return TerritoryResponse{
		ID:         t.ID.String(),
		Name:       t.Name,
		Kind:       string(t.Kind),
		Level:      t.Level,
		Yield:      resourcesToMap(t.Yield()),
		AcquiredAt: t.AcquiredAt,
	}
}

func territoriesToResponse(t *domain.Territories) TerritoriesResponse {
	items := make([]TerritoryResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, territoryToResponse(item))
	}
	return TerritoriesResponse{
		Items:   items,
		Yield:   resourcesToMap(t.Yield()),
		Version: t.Version,
	}
}
