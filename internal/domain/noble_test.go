package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestNoble(t *testing.T) *Noble {
	t.Helper()
	n, err := NewNoble("n1", "Aldric", "Baron", testNow)
	require.NoError(t, err)
	return n
}

func TestNewNoble(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		n := newTestNoble(t)
		assert.Equal(t, "n1", n.ID)
		assert.Equal(t, "Aldric", n.Name)
		assert.Equal(t, uint64(1), n.Version)
		for _, r := range AllResources {
			assert.Zero(t, n.Resources[r], "resource %s should start at zero", r)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := NewNoble("  ", "Aldric", "", testNow)
		assert.ErrorIs(t, err, ErrEmptyNobleID)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewNoble("n1", "", "", testNow)
		assert.ErrorIs(t, err, ErrEmptyNobleName)
	})
}

func TestNobleAddResources(t *testing.T) {
	n := newTestNoble(t)

	next, err := n.AddResources(Resources{ResourceGold: 100, ResourceFood: 5}, testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(100), next.Resources[ResourceGold])
	assert.Equal(t, int64(5), next.Resources[ResourceFood])
	assert.Equal(t, n.Version+1, next.Version)
	assert.Zero(t, n.Resources[ResourceGold], "receiver must not be mutated")

	_, err = n.AddResources(Resources{"mana": 1}, testNow)
	assert.ErrorIs(t, err, ErrInvalidResource)

	_, err = n.AddResources(Resources{ResourceGold: -1}, testNow)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestNobleRemoveResources(t *testing.T) {
	n, err := newTestNoble(t).AddResources(Resources{ResourceGold: 50, ResourceInfluence: 3}, testNow)
	require.NoError(t, err)

	next, err := n.RemoveResources(Resources{ResourceGold: 20}, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(30), next.Resources[ResourceGold])

	_, err = n.RemoveResources(Resources{ResourceGold: 10, ResourceInfluence: 4}, testNow)
	assert.ErrorIs(t, err, ErrInsufficientResources)
	assert.Equal(t, int64(50), n.Resources[ResourceGold], "rejected removal must not change anything")
}

func TestNobleUnlockAchievement(t *testing.T) {
	n := newTestNoble(t)

	next, changed, err := n.UnlockAchievement("first_entry", testNow)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, next.HasAchievement("first_entry"))
	assert.False(t, n.HasAchievement("first_entry"))

	again, changed, err := next.UnlockAchievement("first_entry", testNow)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, next, again)

	_, _, err = n.UnlockAchievement(" ", testNow)
	assert.ErrorIs(t, err, ErrEmptyAchievementID)
}

func TestNobleEffects(t *testing.T) {
	n := newTestNoble(t)
	harvest := Effect{Name: "harvest", Resource: ResourceFood, Multiplier: 1.5, ExpiresAt: testNow.Add(time.Hour)}

	withEffect, err := n.ApplyEffect(harvest, testNow)
	require.NoError(t, err)
	require.Len(t, withEffect.Effects, 1)

	// Same name replaces.
	harvest.Multiplier = 2
	replaced, err := withEffect.ApplyEffect(harvest, testNow)
	require.NoError(t, err)
	require.Len(t, replaced.Effects, 1)
	assert.Equal(t, 2.0, replaced.Effects[0].Multiplier)

	yield := replaced.EffectiveYield(Resources{ResourceFood: 15, ResourceGold: 3}, testNow)
	assert.Equal(t, int64(30), yield[ResourceFood])
	assert.Equal(t, int64(3), yield[ResourceGold])

	later := testNow.Add(2 * time.Hour)
	assert.Equal(t, int64(15), replaced.EffectiveYield(Resources{ResourceFood: 15}, later)[ResourceFood])

	expired, removed := replaced.ExpireEffects(later)
	assert.Equal(t, 1, removed)
	assert.Empty(t, expired.Effects)

	same, removed := expired.ExpireEffects(later)
	assert.Zero(t, removed)
	assert.Same(t, expired, same)

	_, err = n.ApplyEffect(Effect{Name: "x", Resource: ResourceGold, Multiplier: 0, ExpiresAt: later}, testNow)
	assert.ErrorIs(t, err, ErrInvalidEffect)

	_, err = n.ApplyEffect(Effect{Name: "x", Resource: ResourceGold, Multiplier: 2, ExpiresAt: testNow}, testNow)
	assert.ErrorIs(t, err, ErrInvalidEffect)
}

func TestEffectMultiplierBounds(t *testing.T) {
	n := newTestNoble(t)
	later := testNow.Add(time.Hour)

	_, err := n.ApplyEffect(Effect{Name: "boon", Resource: ResourceGold, Multiplier: 1e30, ExpiresAt: later}, testNow)
	assert.ErrorIs(t, err, ErrInvalidEffect)

	capped, err := n.ApplyEffect(Effect{Name: "boon", Resource: ResourceGold, Multiplier: MaxEffectMultiplier, ExpiresAt: later}, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(800), capped.EffectiveYield(Resources{ResourceGold: 8}, testNow)[ResourceGold])
}

func TestEffectiveYieldSaturates(t *testing.T) {
	n := newTestNoble(t)
	// Stored effects are not revalidated on load, so yield must stay in range.
	n.Effects = []Effect{
		{Name: "a", Resource: ResourceGold, Multiplier: 1e30, ExpiresAt: testNow.Add(time.Hour)},
		{Name: "b", Resource: ResourceFood, Multiplier: 100, ExpiresAt: testNow.Add(time.Hour)},
	}

	yield := n.EffectiveYield(Resources{ResourceGold: 8, ResourceFood: math.MaxInt64 / 10}, testNow)
	assert.Equal(t, int64(math.MaxInt64), yield[ResourceGold])
	assert.Equal(t, int64(math.MaxInt64), yield[ResourceFood])
	require.NoError(t, yield.Validate())

	next, err := n.AddResources(yield, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), next.Resources[ResourceGold])
}

func TestNoblePatchApply(t *testing.T) {
	n, err := newTestNoble(t).AddResources(Resources{ResourceGold: 10, ResourceFood: 4}, testNow)
	require.NoError(t, err)

	title := "Count"
	next := NoblePatch{Title: &title, Resources: Resources{ResourceGold: 100}, At: testNow}.Apply(n)

	assert.Equal(t, "Count", next.Title)
	assert.Equal(t, "Aldric", next.Name, "unset fields are kept")
	assert.Equal(t, int64(100), next.Resources[ResourceGold])
	assert.Equal(t, int64(4), next.Resources[ResourceFood], "resources merge key by key")
	assert.Equal(t, n.Version+1, next.Version)
	assert.Equal(t, int64(10), n.Resources[ResourceGold])

	assert.Nil(t, NoblePatch{}.Apply(nil))
}
