package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tile-world/internal/metrics"
	"github.com/annel0/tile-world/internal/vec"
	"github.com/annel0/tile-world/internal/world/entity"
	"github.com/annel0/tile-world/internal/world/gen"
	"github.com/annel0/tile-world/internal/world/tile"
)

func hillsOptions(name string) Options {
	o := DefaultOptions(name, 42)
	o.Generator = gen.Descriptor{Type: "smooth_hills"}
	return o
}

func TestOptionsRoundTrip(t *testing.T) {
	root := t.TempDir()
	w, err := New(hillsOptions("alpha"), root)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "alpha", OptionsFile))
	require.NoError(t, err)
	parsed, err := ParseOptions(data)
	require.NoError(t, err)
	assert.Equal(t, w.Options(), parsed)

	again, err := parsed.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestNewAndLoadAreEquivalent(t *testing.T) {
	root := t.TempDir()
	a, err := New(hillsOptions("beta"), root, WithoutPersistence())
	require.NoError(t, err)
	b, err := Load(root, "beta", WithoutPersistence())
	require.NoError(t, err)

	assert.Equal(t, a.Options(), b.Options())
	for tx := -40; tx <= 40; tx += 3 {
		for ty := -12; ty <= 12; ty++ {
			require.Equal(t, a.GetTileID(tx, ty), b.GetTileID(tx, ty), "тайл %d,%d", tx, ty)
		}
	}
}

func TestParseOptionsRejectsIncomplete(t *testing.T) {
	_, err := ParseOptions([]byte(`{"seed": 1, "name": "x"}`))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = ParseOptions([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	o := DefaultOptions("x", 1)
	o.TileSize = 0
	assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)

	o = DefaultOptions("../escape", 1)
	assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
}

func TestLoadMissingWorld(t *testing.T) {
	_, err := Load(t.TempDir(), "nope")
	assert.Error(t, err)
}

func TestLoadRejectsRenamedWorld(t *testing.T) {
	root := t.TempDir()
	_, err := New(DefaultOptions("delta", 3), root, WithoutPersistence())
	require.NoError(t, err)
	require.NoError(t, os.Rename(filepath.Join(root, "delta"), filepath.Join(root, "epsilon")))

	_, err = Load(root, "epsilon", WithoutPersistence())
	assert.ErrorIs(t, err, ErrInvalidOptions, "Имя в options.json должно совпадать с каталогом")
}

func TestUnknownGeneratorFallsBackToFlat(t *testing.T) {
	o := DefaultOptions("gamma", 1)
	o.Generator = gen.Descriptor{Type: "mystery"}
	w, err := New(o, t.TempDir(), WithoutPersistence())
	require.NoError(t, err)
	assert.Equal(t, gen.KindFlat, w.Generator().Kind())
	assert.Equal(t, gen.TileGrass, w.GetTileID(5, 0))
	assert.Equal(t, tile.AirID, w.GetTileID(5, 1))
}

func TestTileQueries(t *testing.T) {
	w, err := New(DefaultOptions("delta", 1), t.TempDir(), WithoutPersistence())
	require.NoError(t, err)
	ts := float64(w.TileSize())

	assert.True(t, w.IsSolidTile(-3, 0))
	assert.False(t, w.IsSolidTile(-3, 1))
	assert.True(t, w.IsSolidAtWorld(-0.5, ts-1))
	assert.False(t, w.IsSolidAtWorld(-0.5, -1))

	tl := w.GetTile(2, 0)
	require.NotNil(t, tl.Type())
	assert.Equal(t, "tiles:grass", tl.Type().Location)

	w.SetTileAtWorld(3*ts+1, 5*ts+1, gen.TileStone)
	assert.Equal(t, gen.TileStone, w.GetTileID(3, 5))
	assert.Equal(t, "tiles:stone", w.GetTileAtWorld(3*ts, 5*ts).Type().Location)
}

func TestLoadedFlag(t *testing.T) {
	w, err := New(DefaultOptions("eps", 1), t.TempDir(), WithoutPersistence())
	require.NoError(t, err)
	assert.False(t, w.IsLoaded())

	w.Update(vec.Vec2Float{})
	assert.True(t, w.IsLoaded())
	assert.Equal(t, 25, w.Chunks().Len())
	assert.Equal(t, uint64(1), w.Steps())

	// Флаг не сбрасывается при уходе фокуса
	far := vec.Vec2Float{X: 100 * 8 * float64(w.TileSize())}
	w.Stream(far)
	assert.True(t, w.IsLoaded())
	assert.Equal(t, 25, w.Chunks().Len())
	_, ok := w.Chunks().Peek(0, 0)
	assert.False(t, ok)
}

func TestRetainIsLosslessWithPersistence(t *testing.T) {
	root := t.TempDir()
	w, err := New(hillsOptions("zeta"), root)
	require.NoError(t, err)
	ts := w.TileSize()

	w.Stream(vec.Vec2Float{})
	w.SetTile(1, 20, gen.TileDirt)
	before := w.GetTileID(3, -2)

	far := vec.Vec2Float{X: float64(50 * tile.Size * ts)}
	w.Stream(far)
	_, ok := w.Chunks().Peek(0, 2)
	require.False(t, ok, "чанк должен быть выгружен")
	assert.FileExists(t, filepath.Join(root, "zeta", "chunks", "0_2.bin"))

	w.Stream(vec.Vec2Float{})
	assert.Equal(t, gen.TileDirt, w.GetTileID(1, 20), "правка пережила выгрузку")
	assert.Equal(t, before, w.GetTileID(3, -2))
	require.NoError(t, w.Close())

	// Новый экземпляр видит сохранённые правки
	re, err := Load(root, "zeta")
	require.NoError(t, err)
	assert.Equal(t, gen.TileDirt, re.GetTileID(1, 20))
}

func TestRetainWithoutPersistenceRegenerates(t *testing.T) {
	w, err := New(hillsOptions("eta"), t.TempDir(), WithoutPersistence())
	require.NoError(t, err)
	assert.False(t, w.PersistenceEnabled())

	w.Stream(vec.Vec2Float{})
	before := w.GetTileID(2, -3)
	w.SetTile(1, 20, gen.TileDirt)

	w.Stream(vec.Vec2Float{X: float64(50 * tile.Size * w.TileSize())})
	w.Stream(vec.Vec2Float{})
	assert.Equal(t, before, w.GetTileID(2, -3), "генерация детерминирована")
	assert.Equal(t, tile.AirID, w.GetTileID(1, 20), "правка без сохранения теряется")
}

func TestCorruptedChunkIsRegenerated(t *testing.T) {
	root := t.TempDir()
	w, err := New(DefaultOptions("theta", 1), root)
	require.NoError(t, err)

	path := filepath.Join(root, "theta", "chunks", "0_0.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, tile.EncodedSize), 0644))

	assert.Equal(t, gen.TileGrass, w.GetTileID(4, 0))
	assert.Equal(t, tile.AirID, w.GetTileID(4, 3))
}

func TestFilePersisterRoundTrip(t *testing.T) {
	p, err := NewFilePersister(t.TempDir())
	require.NoError(t, err)

	c, err := p.Load(7, -3)
	require.NoError(t, err)
	assert.Nil(t, c, "отсутствующий чанк: не ошибка")

	src := tile.NewChunk(7, -3)
	src.Set(1, 6, 3)
	src.Set(7, 0, 2)
	require.NoError(t, p.Save(src))

	got, err := p.Load(7, -3)
	require.NoError(t, err)
	assert.Equal(t, src.IDs(), got.IDs())

	_, err = tile.DecodeBytes(mustRead(t, p.ChunkPath(7, -3)), 7, 4)
	assert.ErrorIs(t, err, tile.ErrCoordMismatch)
}

func TestFilePersisterCleansTempOnFailedRename(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersister(dir)
	require.NoError(t, err)

	// Каталог на месте файла чанка не даёт выполнить rename
	blocker := p.ChunkPath(1, 1)
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "x"), 0755))

	assert.Error(t, p.Save(tile.NewChunk(1, 1)))
	leftovers, err := filepath.Glob(filepath.Join(dir, "chunks", ".chunk-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "Временный файл удаляется после неудачной записи")
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestPersistenceToggle(t *testing.T) {
	root := t.TempDir()
	w, err := New(DefaultOptions("iota", 1), root, WithoutPersistence())
	require.NoError(t, err)

	w.Stream(vec.Vec2Float{})
	assert.Equal(t, 0, w.Flush())

	require.NoError(t, w.EnableChunkPersistence(w.SaveDir()))
	assert.Equal(t, 25, w.Flush())
	assert.FileExists(t, filepath.Join(root, "iota", "chunks", "-2_-2.bin"))

	w.DisablePersistence()
	assert.False(t, w.PersistenceEnabled())
}

func TestEntitySettlesOnFlatWorld(t *testing.T) {
	rec := metrics.NewRecorder()
	w, err := New(DefaultOptions("kappa", 1), t.TempDir(), WithoutPersistence(), WithMetrics(rec))
	require.NoError(t, err)
	ts := float64(w.TileSize())

	typ := &entity.Type{Name: "Player", Width: 40, Height: 60, Speed: 4, Health: 10, JumpPower: 10}
	e := w.Spawn(typ, 10, 3*ts)
	for i := 0; i < 200; i++ {
		w.Update(e.Position())
	}
	assert.True(t, e.OnGround())
	assert.Equal(t, ts, e.Position().Y, "стоит на травяной строке")
	assert.Equal(t, uint64(200), w.Steps())
	count, err := testutil.GatherAndCount(rec.Registry(), "tileworld_physics_steps_total", "tileworld_entities")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, ok := w.Entity(e.Handle())
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.True(t, w.Despawn(e.Handle()))
	_, ok = w.Entity(e.Handle())
	assert.False(t, ok)
}

func TestChaserApproachesTarget(t *testing.T) {
	w, err := New(DefaultOptions("lambda", 1), t.TempDir(), WithoutPersistence())
	require.NoError(t, err)
	ts := float64(w.TileSize())

	player := w.Spawn(&entity.Type{Name: "Player", Width: 40, Height: 60, Speed: 4, Health: 10}, 6*ts, ts)
	zombie := w.Spawn(&entity.Type{
		Name: "Zombie", Width: 40, Height: 60, Speed: 4, Health: 10, JumpPower: 10,
		Pathfinder: &entity.PathfinderSpec{Targets: []string{"player"}, MaxJumpHeight: ts},
	}, 0, ts)

	start := player.Position().X - zombie.Position().X
	for i := 0; i < 60; i++ {
		w.Update(player.Position())
	}
	target, ok := zombie.Pathfinder().Target()
	require.True(t, ok)
	assert.Equal(t, uint64(player.Handle()), target)
	assert.Less(t, player.Position().X-zombie.Position().X, start)
}

func TestStepIgnoresNonPositiveDt(t *testing.T) {
	w, err := New(DefaultOptions("mu", 1), t.TempDir(), WithoutPersistence())
	require.NoError(t, err)
	e := w.Spawn(&entity.Type{Name: "Box", Width: 10, Height: 10, Health: 1}, 0, 500)
	w.Step(0)
	w.Step(-1)
	assert.Equal(t, 500.0, e.Position().Y)
	w.Step(0.016)
	assert.Less(t, e.Position().Y, 500.0)
}
