package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// KindNoble names the noble aggregate in persisted snapshots.
const KindNoble = "noble"

// Effect bounds.
const (
	MaxEffectMultiplier = 100
	MaxEffectDuration   = 30 * 24 * time.Hour
)

// Achievement records an unlocked achievement.
type Achievement struct {
	ID         string    `json:"id"          cbor:"id"`
	UnlockedAt time.Time `json:"unlocked_at" cbor:"unlocked_at"`
}

// Effect is a temporary multiplier on the yield of one resource.
type Effect struct {
	Name       string    `json:"name"       cbor:"name"`
	Resource   Resource  `json:"resource"   cbor:"resource"`
	Multiplier float64   `json:"multiplier" cbor:"multiplier"`
	ExpiresAt  time.Time `json:"expires_at" cbor:"expires_at"`
}

// Validate checks that the effect targets a known resource with a positive multiplier.
func (e Effect) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidEffect)
	}
	if !e.Resource.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResource, e.Resource)
	}
	if e.Multiplier <= 0 || math.IsNaN(e.Multiplier) || math.IsInf(e.Multiplier, 0) {
		return fmt.Errorf("%w: multiplier must be positive", ErrInvalidEffect)
	}
	if e.Multiplier > MaxEffectMultiplier {
		return fmt.Errorf("%w: multiplier cannot exceed %d", ErrInvalidEffect, MaxEffectMultiplier)
	}
	if e.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: expiry is required", ErrInvalidEffect)
	}
	return nil
}

// Active reports whether the effect is still in force at now.
func (e Effect) Active(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Noble is the player's profile aggregate.
type Noble struct {
	ID           string        `json:"id"           cbor:"id"`
	Name         string        `json:"name"         cbor:"name"`
	Title        string        `json:"title"        cbor:"title"`
	Resources    Resources     `json:"resources"    cbor:"resources"`
	Achievements []Achievement `json:"achievements" cbor:"achievements"`
	Effects      []Effect      `json:"effects"      cbor:"effects"`
	Version      uint64        `json:"version"      cbor:"version"`
	CreatedAt    time.Time     `json:"created_at"   cbor:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"   cbor:"updated_at"`
}

// NewNoble creates a noble with every known resource at zero.
// Returns an error if validation fails.
func NewNoble(id, name, title string, now time.Time) (*Noble, error) {
	resources := make(Resources, len(AllResources))
	for _, r := range AllResources {
		resources[r] = 0
	}

	noble := &Noble{
		ID:           strings.TrimSpace(id),
		Name:         strings.TrimSpace(name),
		Title:        strings.TrimSpace(title),
		Resources:    resources,
		Achievements: []Achievement{},
		Effects:      []Effect{},
		Version:      1,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}

	if err := noble.Validate(); err != nil {
		return nil, err
	}
	return noble, nil
}

// AggregateID returns the noble's identifier.
func (n Noble) AggregateID() string { return n.ID }

// AggregateVersion returns the noble's mutation counter.
func (n Noble) AggregateVersion() uint64 { return n.Version }

// Validate checks if the Noble has valid data.
func (n *Noble) Validate() error {
	if n.ID == "" {
		return ErrEmptyNobleID
	}
	if n.Name == "" {
		return ErrEmptyNobleName
	}
	if err := n.Resources.Validate(); err != nil {
		return err
	}
	for _, e := range n.Effects {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of n.
func (n *Noble) Clone() *Noble {
	if n == nil {
		return nil
	}
	out := *n
	out.Resources = n.Resources.Clone()
	out.Achievements = slices.Clone(n.Achievements)
	out.Effects = slices.Clone(n.Effects)
	return &out
}

// HasAchievement reports whether the achievement is already unlocked.
func (n *Noble) HasAchievement(id string) bool {
	for _, a := range n.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// AddResources returns a copy of n with delta added to its counters.
func (n *Noble) AddResources(delta Resources, now time.Time) (*Noble, error) {
	if err := delta.Validate(); err != nil {
		return nil, err
	}
	next := n.Clone()
	next.Resources = next.Resources.Add(delta)
	next.touch(now)
	return next, nil
}

// RemoveResources returns a copy of n with delta subtracted. The whole
// removal is rejected if any counter would go below zero.
func (n *Noble) RemoveResources(delta Resources, now time.Time) (*Noble, error) {
	if err := delta.Validate(); err != nil {
		return nil, err
	}
	for _, k := range delta.Keys() {
		if have := n.Resources[k]; have < delta[k] {
			return nil, fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientResources, k, have, delta[k])
		}
	}
	next := n.Clone()
	for k, v := range delta {
		next.Resources[k] -= v
	}
	next.touch(now)
	return next, nil
}

// UnlockAchievement returns a copy of n with the achievement recorded.
// Unlocking an achievement twice returns n unchanged and changed=false.
func (n *Noble) UnlockAchievement(id string, now time.Time) (next *Noble, changed bool, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false, ErrEmptyAchievementID
	}
	if n.HasAchievement(id) {
		return n, false, nil
	}
	next = n.Clone()
	next.Achievements = append(next.Achievements, Achievement{ID: id, UnlockedAt: now.UTC()})
	next.touch(now)
	return next, true, nil
}

// ApplyEffect returns a copy of n with the effect added. An active effect
// with the same name is replaced.
func (n *Noble) ApplyEffect(effect Effect, now time.Time) (*Noble, error) {
	if err := effect.Validate(); err != nil {
		return nil, err
	}
	if !effect.Active(now) {
		return nil, fmt.Errorf("%w: already expired", ErrInvalidEffect)
	}
	next := n.Clone()
	kept := next.Effects[:0]
	for _, e := range next.Effects {
		if e.Name != effect.Name {
			kept = append(kept, e)
		}
	}
	next.Effects = append(kept, effect)
	next.touch(now)
	return next, nil
}

// ExpireEffects returns a copy of n without effects that ended before now,
// and the number removed. When nothing expired it returns n itself.
func (n *Noble) ExpireEffects(now time.Time) (*Noble, int) {
	removed := 0
	for _, e := range n.Effects {
		if !e.Active(now) {
			removed++
		}
	}
	if removed == 0 {
		return n, 0
	}
	next := n.Clone()
	kept := make([]Effect, 0, len(next.Effects)-removed)
	for _, e := range next.Effects {
		if e.Active(now) {
			kept = append(kept, e)
		}
	}
	next.Effects = kept
	next.touch(now)
	return next, removed
}

// EffectiveYield applies the multipliers of effects active at now to base.
// Multipliers on the same resource compound; results are rounded down and
// saturate at math.MaxInt64.
func (n *Noble) EffectiveYield(base Resources, now time.Time) Resources {
	out := base.Clone()
	for _, e := range n.Effects {
		if !e.Active(now) {
			continue
		}
		if v, ok := out[e.Resource]; ok {
			out[e.Resource] = scaleAmount(v, e.Multiplier)
		}
	}
	return out
}

func scaleAmount(v int64, multiplier float64) int64 {
	product := math.Floor(float64(v) * multiplier)
	switch {
	case math.IsNaN(product), product <= 0:
		return 0
	case product >= float64(math.MaxInt64):
		return math.MaxInt64
	}
	return int64(product)
}

func (n *Noble) touch(now time.Time) {
	n.Version++
	n.UpdatedAt = now.UTC()
}

// NoblePatch is a field-level update. Nil fields are left untouched;
// Resources merges key by key.
type NoblePatch struct {
	Name         *string
	Title        *string
	Resources    Resources
	Achievements []Achievement
	Effects      []Effect

	// At stamps UpdatedAt; zero means time.Now.
	At time.Time
}

// Apply merges p into current and returns the result as a new record.
// A patch cannot create a noble: applying to nil yields nil.
func (p NoblePatch) Apply(current *Noble) *Noble {
	if current == nil {
		return nil
	}
	next := current.Clone()
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Title != nil {
		next.Title = *p.Title
	}
	for k, v := range p.Resources {
		next.Resources[k] = v
	}
	if p.Achievements != nil {
		next.Achievements = slices.Clone(p.Achievements)
	}
	if p.Effects != nil {
		next.Effects = slices.Clone(p.Effects)
	}
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}
	next.touch(at)
	return next
}
