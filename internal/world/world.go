package world

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/annel0/tile-world/internal/logging"
	"github.com/annel0/tile-world/internal/metrics"
	"github.com/annel0/tile-world/internal/physics"
	"github.com/annel0/tile-world/internal/vec"
	"github.com/annel0/tile-world/internal/world/entity"
	"github.com/annel0/tile-world/internal/world/gen"
	"github.com/annel0/tile-world/internal/world/tile"
)

// StreamRadius: радиус окна удержания в чанках (5x5)
const StreamRadius = 2

// World управляет чанками, сущностями и физикой одного мира.
// Однопоточный: все методы вызываются из цикла симуляции.
type World struct {
	opts      Options
	saveDir   string
	generator gen.Generator
	palette   tile.MapPalette
	params    physics.Params
	store     *ChunkStore
	entities  *entity.Manager

	loaded bool
	steps  uint64

	persister   Persister
	persistence bool
	metrics     *metrics.Recorder
	logger      *logging.Logger
}

// Option настраивает World при создании
type Option func(*World)

// WithPersister подменяет файловое хранилище чанков (например, на badger)
func WithPersister(p Persister) Option {
	return func(w *World) {
		w.persister = p
		w.persistence = p != nil
	}
}

// WithoutPersistence отключает сохранение чанков
func WithoutPersistence() Option {
	return func(w *World) {
		w.persister = nil
		w.persistence = false
	}
}

// WithMetrics подключает метрики Prometheus
func WithMetrics(m *metrics.Recorder) Option {
	return func(w *World) { w.metrics = m }
}

// New создаёт мир по параметрам и записывает их в <saveRoot>/<name>/options.json
func New(opts Options, saveRoot string, options ...Option) (*World, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	w, err := build(opts, filepath.Join(saveRoot, opts.Name), options)
	if err != nil {
		return nil, err
	}
	if err := WriteOptions(w.saveDir, w.Options()); err != nil {
		return nil, fmt.Errorf("write world options: %w", err)
	}
	w.logger.Info("🌍 Создан мир %q (seed %d, генератор %s)", opts.Name, opts.Seed, w.generator.Kind())
	return w, nil
}

// Load восстанавливает мир из <saveRoot>/<name>/options.json
func Load(saveRoot, name string, options ...Option) (*World, error) {
	dir := filepath.Join(saveRoot, name)
	opts, err := ReadOptions(dir)
	if err != nil {
		return nil, fmt.Errorf("load world %q: %w", name, err)
	}
	// Каталог переименован или options.json скопирован из другого мира
	if opts.Name != name {
		return nil, fmt.Errorf("load world %q: %w: options.json описывает мир %q", name, ErrInvalidOptions, opts.Name)
	}
	w, err := build(opts, dir, options)
	if err != nil {
		return nil, err
	}
	w.logger.Info("🌍 Загружен мир %q (seed %d, генератор %s)", opts.Name, opts.Seed, w.generator.Kind())
	return w, nil
}

func build(opts Options, saveDir string, options []Option) (*World, error) {
	if err := os.MkdirAll(saveDir, 0755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}

	g := gen.FromDescriptor(&opts.Generator)
	w := &World{
		opts:        opts,
		saveDir:     saveDir,
		generator:   g,
		palette:     make(tile.MapPalette),
		params:      opts.Physics(),
		entities:    entity.NewManager(),
		persistence: true,
		logger:      logging.GetWorldLogger(),
	}
	for _, o := range options {
		o(w)
	}
	for id, loc := range g.Palette() {
		w.palette[id] = &tile.Type{Location: loc}
	}

	if w.persistence && w.persister == nil {
		fp, err := NewFilePersister(saveDir)
		if err != nil {
			// Без каталога мир работает, просто ничего не сохраняет
			w.logger.Warn("сохранение чанков отключено: %v", err)
		} else {
			w.persister = fp
		}
	}
	w.store = NewChunkStore(g, w.persister, w.metrics)
	return w, nil
}

// Options возвращает параметры мира с нормализованным дескриптором генератора
func (w *World) Options() Options {
	o := w.opts
	o.Generator = w.generator.Descriptor()
	return o
}

func (w *World) Name() string              { return w.opts.Name }
func (w *World) Seed() int64               { return w.opts.Seed }
func (w *World) TileSize() int             { return w.opts.TileSize }
func (w *World) Gravity() float64          { return w.params.Gravity }
func (w *World) LinearDamping() float64    { return w.params.LinearDamping }
func (w *World) GroundFriction() float64   { return w.params.GroundFriction }
func (w *World) Restitution() float64      { return w.params.Restitution }
func (w *World) Floor() float64            { return w.opts.WorldFloorY }
func (w *World) SaveDir() string           { return w.saveDir }
func (w *World) Generator() gen.Generator  { return w.generator }
func (w *World) Chunks() *ChunkStore       { return w.store }
func (w *World) Entities() *entity.Manager { return w.entities }
func (w *World) Palette() tile.Palette     { return w.palette }
func (w *World) Physics() physics.Params   { return w.params }
func (w *World) Steps() uint64             { return w.steps }
func (w *World) PersistenceEnabled() bool  { return w.store.Persister() != nil }
func (w *World) tileCoords(wx, wy float64) (int, int) {
	return physics.TileIndex(wx, w.opts.TileSize), physics.TileIndex(wy, w.opts.TileSize)
}

// IsLoaded возвращает true, если окно 5x5 вокруг фокуса хотя бы раз было резидентным
func (w *World) IsLoaded() bool { return w.loaded }

// EnableChunkPersistence включает файловое сохранение чанков в каталоге dir
func (w *World) EnableChunkPersistence(dir string) error {
	fp, err := NewFilePersister(dir)
	if err != nil {
		return err
	}
	w.swapPersister(fp)
	return nil
}

// DisablePersistence выключает сохранение чанков
func (w *World) DisablePersistence() {
	w.swapPersister(nil)
}

func (w *World) swapPersister(p Persister) {
	if old := w.store.Persister(); old != nil {
		if err := old.Close(); err != nil {
			w.logger.Warn("ошибка закрытия хранилища чанков: %v", err)
		}
	}
	w.persister = p
	w.store.SetPersister(p)
}

// --- Тайлы ---

func (w *World) chunkFor(tx, ty int) (*tile.Chunk, int, int) {
	t := vec.Vec2{X: tx, Y: ty}
	c := t.ToChunkCoords()
	l := t.LocalInChunk()
	return w.store.GetOrCreate(c.X, c.Y), l.X, l.Y
}

// GetTileID возвращает ID тайла, загружая или генерируя чанк при необходимости
func (w *World) GetTileID(tx, ty int) tile.ID {
	c, lx, ly := w.chunkFor(tx, ty)
	return c.Get(lx, ly)
}

// GetTile возвращает тайл с разрешённым через палитру типом
func (w *World) GetTile(tx, ty int) *tile.Tile {
	c, lx, ly := w.chunkFor(tx, ty)
	t := c.Tile(lx, ly)
	t.ResolveType(w.palette)
	return t
}

// GetTileIDAtWorld возвращает ID тайла по мировым координатам
func (w *World) GetTileIDAtWorld(wx, wy float64) tile.ID {
	return w.GetTileID(w.tileCoords(wx, wy))
}

// GetTileAtWorld возвращает тайл по мировым координатам
func (w *World) GetTileAtWorld(wx, wy float64) *tile.Tile {
	return w.GetTile(w.tileCoords(wx, wy))
}

// SetTile меняет ID тайла
func (w *World) SetTile(tx, ty int, id tile.ID) {
	c, lx, ly := w.chunkFor(tx, ty)
	c.Set(lx, ly, id)
}

// SetTileAtWorld меняет ID тайла по мировым координатам
func (w *World) SetTileAtWorld(wx, wy float64, id tile.ID) {
	tx, ty := w.tileCoords(wx, wy)
	w.SetTile(tx, ty, id)
}

// IsSolid: всё, кроме воздуха, твёрдое
func (w *World) IsSolid(id tile.ID) bool { return id != tile.AirID }

// IsSolidTile реализует physics.Grid
func (w *World) IsSolidTile(tx, ty int) bool { return w.IsSolid(w.GetTileID(tx, ty)) }

// IsSolidAtWorld проверяет твёрдость по мировым координатам
func (w *World) IsSolidAtWorld(wx, wy float64) bool { return w.IsSolid(w.GetTileIDAtWorld(wx, wy)) }

// --- Сущности ---

// Spawn создаёт сущность в мировых координатах
func (w *World) Spawn(t *entity.Type, x, y float64) *entity.Entity {
	e := w.entities.Spawn(t, x, y)
	w.metrics.SetEntities(w.entities.Len())
	w.logger.Debug("сущность %s создана в (%.1f, %.1f)", t.Name, x, y)
	return e
}

// Despawn удаляет сущность
func (w *World) Despawn(h entity.Handle) bool {
	ok := w.entities.Despawn(h)
	w.metrics.SetEntities(w.entities.Len())
	return ok
}

// Entity разрешает слабую ссылку на сущность
func (w *World) Entity(h entity.Handle) (*entity.Entity, bool) { return w.entities.Get(h) }

// --- Симуляция ---

// Stream держит резидентным окно 5x5 чанков вокруг фокуса и выгружает остальное
func (w *World) Stream(focus vec.Vec2Float) {
	c := focus.ToTile(w.opts.TileSize).ToChunkCoords()
	w.store.PreloadSquare(c.X, c.Y, StreamRadius)
	if !w.loaded && w.store.HasSquareLoaded(c.X, c.Y, StreamRadius) {
		w.loaded = true
		w.logger.Info("✅ Мир %q загружен вокруг чанка %d,%d", w.opts.Name, c.X, c.Y)
	}
	w.store.Retain(Square(c.X, c.Y, StreamRadius))
}

// Step продвигает физику всех сущностей на один фиксированный шаг.
// dt не масштабирует шаг: dt <= 0 означает «пропустить».
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.entities.StepAll(w, w.params)
	w.steps++
	w.metrics.PhysicsStep()
}

// Think обновляет пути сущностей с поисковиком и направляет их по пути
func (w *World) Think() {
	st := w.entities.ThinkAll(w)
	w.metrics.PathSearches(st.Recomputes, st.Fallbacks)
}

// Update выполняет один тик: стриминг вокруг фокуса, затем пути и физика, если мир загружен
func (w *World) Update(focus vec.Vec2Float) {
	start := time.Now()
	w.Stream(focus)
	if w.loaded {
		w.Think()
		w.Step(1)
	}
	w.metrics.ObserveUpdate(time.Since(start))
}

// Flush сохраняет все резидентные чанки
func (w *World) Flush() int {
	return w.store.Flush()
}

// Close сохраняет чанки и закрывает хранилище
func (w *World) Close() error {
	saved := w.Flush()
	w.logger.Info("💾 Мир %q сохранён: %d чанков", w.opts.Name, saved)
	if p := w.store.Persister(); p != nil {
		return p.Close()
	}
	return nil
}
