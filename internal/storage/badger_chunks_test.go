package storage

import (
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tile-world/internal/vec"
	"github.com/annel0/tile-world/internal/world"
	"github.com/annel0/tile-world/internal/world/gen"
	"github.com/annel0/tile-world/internal/world/tile"
)

func setupBadger(t *testing.T) *BadgerPersister {
	t.Helper()
	p, err := NewBadgerPersister("", InMemory())
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestBadgerSaveAndLoadChunk(t *testing.T) {
	p := setupBadger(t)

	c := tile.NewChunk(10, -20)
	c.Set(5, 5, 3)
	c.Set(0, 7, 1)
	require.NoError(t, p.Save(c))

	got, err := p.Load(10, -20)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.IDs(), got.IDs())
	assert.Equal(t, 10, got.X())
	assert.Equal(t, -20, got.Y())
}

func TestBadgerLoadNonExistentChunk(t *testing.T) {
	p := setupBadger(t)
	c, err := p.Load(1, 1)
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestBadgerCorruptedValue(t *testing.T) {
	p := setupBadger(t)
	require.NoError(t, p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(2, 3), []byte("garbage"))
	}))
	_, err := p.Load(2, 3)
	assert.Error(t, err)
}

func TestBadgerKeysAndDelete(t *testing.T) {
	p := setupBadger(t)
	for _, xy := range [][2]int{{0, 0}, {-1, 4}, {7, -7}} {
		require.NoError(t, p.Save(tile.NewChunk(xy[0], xy[1])))
	}

	keys, err := p.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []tile.Key{tile.PackKey(0, 0), tile.PackKey(-1, 4), tile.PackKey(7, -7)}, keys)

	require.NoError(t, p.Delete(-1, 4))
	c, err := p.Load(-1, 4)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestParseChunkKey(t *testing.T) {
	cx, cy, ok := parseChunkKey(chunkKey(-12, 34))
	require.True(t, ok)
	assert.Equal(t, -12, cx)
	assert.Equal(t, 34, cy)

	_, _, ok = parseChunkKey([]byte("entity:1"))
	assert.False(t, ok)
}

func TestWorldWithBadgerPersister(t *testing.T) {
	p := setupBadger(t)
	w, err := world.New(world.DefaultOptions("badger", 3), t.TempDir(), world.WithPersister(p))
	require.NoError(t, err)

	w.Stream(vec.Vec2Float{})
	w.SetTile(2, 9, gen.TileStone)
	w.Stream(vec.Vec2Float{X: float64(40 * tile.Size * w.TileSize())})

	stored, err := p.Load(0, 1)
	require.NoError(t, err)
	require.NotNil(t, stored, "выгруженный чанк сохранён в badger")
	assert.Equal(t, gen.TileStone, stored.Get(2, 1))

	w.Stream(vec.Vec2Float{})
	assert.Equal(t, gen.TileStone, w.GetTileID(2, 9))
}
