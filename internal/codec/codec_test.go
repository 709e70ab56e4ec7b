package codec_test

import (
	"testing"
	"time"

	"github.com/phrazzld/noble-diary/internal/codec"
	"github.com/phrazzld/noble-diary/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	c, err := codec.ByName("json")
	require.NoError(t, err)
	assert.Equal(t, codec.NameJSON, c.Name())

	c, err = codec.ByName("")
	require.NoError(t, err)
	assert.Equal(t, codec.NameJSON, c.Name())

	c, err = codec.ByName("cbor")
	require.NoError(t, err)
	assert.Equal(t, codec.NameCBOR, c.Name())

	_, err = codec.ByName("xml")
	assert.ErrorIs(t, err, codec.ErrUnknownCodec)
}

func TestCodecsPreserveNoble(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	noble, err := domain.NewNoble("n1", "Aldric", "Baron", now)
	require.NoError(t, err)
	noble, err = noble.AddResources(domain.Resources{domain.ResourceGold: 250}, now)
	require.NoError(t, err)
	noble, _, err = noble.UnlockAchievement("first_harvest", now)
	require.NoError(t, err)

	for _, c := range []codec.Codec{codec.JSON{}, codec.CBOR{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(noble)
			require.NoError(t, err)

			var decoded domain.Noble
			require.NoError(t, c.Unmarshal(data, &decoded))
			assert.Equal(t, noble.Resources, decoded.Resources)
			assert.Equal(t, noble.Version, decoded.Version)
			assert.True(t, noble.UpdatedAt.Equal(decoded.UpdatedAt))
			require.Len(t, decoded.Achievements, 1)
			assert.Equal(t, "first_harvest", decoded.Achievements[0].ID)
		})
	}
}

func TestCBORIsDeterministic(t *testing.T) {
	v := map[string]int64{"gold": 1, "food": 2, "influence": 3, "prestige": 4}

	first, err := codec.CBOR{}.Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := codec.CBOR{}.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
