package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KindTerritories names the territory collection in persisted snapshots.
const KindTerritories = "territories"

// TerritoryKind classifies a holding and determines its yield.
type TerritoryKind string

// Known territory kinds.
const (
	TerritoryFarmland TerritoryKind = "farmland"
	TerritoryMine     TerritoryKind = "mine"
	TerritoryMarket   TerritoryKind = "market"
	TerritoryKeep     TerritoryKind = "keep"
)

// MaxTerritoryLevel caps Territory.Level.
const MaxTerritoryLevel = 5

// baseYield is the per-level yield of each kind.
var baseYield = map[TerritoryKind]Resources{
	TerritoryFarmland: {ResourceFood: 10},
	TerritoryMine:     {ResourceGold: 8},
	TerritoryMarket:   {ResourceGold: 5, ResourceInfluence: 2},
	TerritoryKeep:     {ResourcePrestige: 3, ResourceInfluence: 1},
}

// Valid reports whether k is a known territory kind.
func (k TerritoryKind) Valid() bool {
	_, ok := baseYield[k]
	return ok
}

// Territory is a single holding.
type Territory struct {
	ID         uuid.UUID     `json:"id"          cbor:"id"`
	Name       string        `json:"name"        cbor:"name"`
	Kind       TerritoryKind `json:"kind"        cbor:"kind"`
	Level      int           `json:"level"       cbor:"level"`
	AcquiredAt time.Time     `json:"acquired_at" cbor:"acquired_at"`
}

// Yield returns the resources this territory produces per collection.
func (t Territory) Yield() Resources {
	return baseYield[t.Kind].Scale(int64(t.Level))
}

// Validate checks if the Territory has valid data.
func (t Territory) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: territory ID cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTerritoryName
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTerritoryKind, t.Kind)
	}
	if t.Level < 1 || t.Level > MaxTerritoryLevel {
		return fmt.Errorf("%w: level %d out of range", ErrValidation, t.Level)
	}
	return nil
}

// Territories is the collection aggregate of a noble's holdings. Its ID is
// the owning noble's ID.
type Territories struct {
	ID        string      `json:"id"         cbor:"id"`
	Items     []Territory `json:"items"      cbor:"items"`
	Version   uint64      `json:"version"    cbor:"version"`
	UpdatedAt time.Time   `json:"updated_at" cbor:"updated_at"`
}

// NewTerritories creates an empty collection for the given noble.
func NewTerritories(nobleID string, now time.Time) (*Territories, error) {
	t := &Territories{
		ID:        strings.TrimSpace(nobleID),
		Items:     []Territory{},
		Version:   1,
		UpdatedAt: now.UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// AggregateID returns the owning noble's identifier.
func (t Territories) AggregateID() string { return t.ID }

// AggregateVersion returns the collection's mutation counter.
func (t Territories) AggregateVersion() uint64 { return t.Version }

// Validate checks the collection and each holding.
func (t *Territories) Validate() error {
	if t.ID == "" {
		return ErrEmptyNobleID
	}
	seen := make(map[uuid.UUID]bool, len(t.Items))
	for _, item := range t.Items {
		if err := item.Validate(); err != nil {
			return err
		}
		if seen[item.ID] {
			return fmt.Errorf("%w: duplicate territory %s", ErrValidation, item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Territories) Clone() *Territories {
	if t == nil {
		return nil
	}
	out := *t
	out.Items = slices.Clone(t.Items)
	return &out
}

// Find returns the holding with the given ID.
func (t *Territories) Find(id uuid.UUID) (Territory, bool) {
	for _, item := range t.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Territory{}, false
}

// Acquire returns a copy of t with a new level-1 holding added.
func (t *Territories) Acquire(name string, kind TerritoryKind, now time.Time) (*Territories, Territory, error) {
	item := Territory{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(name),
		Kind:       kind,
		Level:      1,
		AcquiredAt: now.UTC(),
	}
	if err := item.Validate(); err != nil {
		return nil, Territory{}, err
	}
	next := t.Clone()
	next.Items = append(next.Items, item)
	next.touch(now)
	return next, item, nil
}

// Upgrade returns a copy of t with the holding's level raised by one.
func (t *Territories) Upgrade(id uuid.UUID, now time.Time) (*Territories, Territory, error) {
	next := t.Clone()
	for i := range next.Items {
		if next.Items[i].ID != id {
			continue
		}
		if next.Items[i].Level >= MaxTerritoryLevel {
			return nil, Territory{}, ErrMaxLevel
		}
		next.Items[i].Level++
		next.touch(now)
		return next, next.Items[i], nil
	}
	return nil, Territory{}, fmt.Errorf("%w: %s", ErrUnknownTerritory, id)
}

// Yield sums the yield of every holding.
func (t *Territories) Yield() Resources {
	total := Resources{}
	for _, item := range t.Items {
		total = total.Add(item.Yield())
	}
	return total
}

func (t *Territories) touch(now time.Time) {
	t.Version++
	t.UpdatedAt = now.UTC()
}

// TerritoriesPatch replaces the holding list when Items is non-nil.
type TerritoriesPatch struct {
	Items []Territory
	At    time.Time
}

// Apply merges p into current. Applying to nil yields nil.
func (p TerritoriesPatch) Apply(current *Territories) *Territories {
	if current == nil {
		return nil
	}
	next := current.Clone()
	if p.Items != nil {
		next.Items = slices.Clone(p.Items)
	}
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}
	next.touch(at)
	return next
}
