package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONColumns(t *testing.T) {
	t.Run("nil values are stored as empty documents", func(t *testing.T) {
		got, err := Types(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", got)

		got, err = Stats(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "{}", got)
	})

	t.Run("scan accepts bytes and strings", func(t *testing.T) {
		var types Types
		require.NoError(t, types.Scan([]byte(`["fire","flying"]`)))
		assert.Equal(t, Types{"fire", "flying"}, types)

		var sprites Sprites
		require.NoError(t, sprites.Scan(`{"front_default":"https://img.example.com/6.png"}`))
		assert.Equal(t, Sprites{"front_default": "https://img.example.com/6.png"}, sprites)

		var abilities Abilities
		require.NoError(t, abilities.Scan(nil))
		assert.Nil(t, abilities)
	})

	t.Run("scan rejects other types", func(t *testing.T) {
		var stats Stats
		assert.Error(t, stats.Scan(42))
		assert.Error(t, stats.Scan("not json"))
	})
}
