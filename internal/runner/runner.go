// Package runner собирает мир из конфигурации и крутит цикл симуляции.
package runner

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/tile-world/internal/config"
	"github.com/annel0/tile-world/internal/eventbus"
	"github.com/annel0/tile-world/internal/logging"
	"github.com/annel0/tile-world/internal/metrics"
	"github.com/annel0/tile-world/internal/storage"
	"github.com/annel0/tile-world/internal/vec"
	"github.com/annel0/tile-world/internal/world"
	"github.com/annel0/tile-world/internal/world/entity"
	"github.com/annel0/tile-world/internal/world/gen"
)

// reportEvery: период сводки в журнал и шину событий, в тиках
const reportEvery = 600

//go:embed default_entities.yaml
var defaultEntities []byte

// Runner владеет миром, сущностями старта и хранилищем контрольных точек
type Runner struct {
	cfg         *config.Config
	session     string
	world       *world.World
	types       *entity.Registry
	focus       entity.Handle
	checkpoints storage.CheckpointRepo
	events      eventbus.EventBus
	metrics     *metrics.Recorder
	ticks       uint64
	logger      *logging.Logger
}

// New открывает (или создаёт) мир и расставляет сущности из конфигурации
func New(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (*Runner, error) {
	repo, err := openCheckpoints(ctx, cfg.Storage.Checkpoints)
	if err != nil {
		return nil, err
	}
	bus, err := openEvents(ctx, cfg.Events)
	if err != nil {
		if repo != nil {
			repo.Close()
		}
		return nil, err
	}
	r, err := newRunner(ctx, cfg, rec, repo, bus)
	if err != nil {
		if repo != nil {
			repo.Close()
		}
		if bus != nil {
			bus.Close()
		}
	}
	return r, err
}

func newRunner(ctx context.Context, cfg *config.Config, rec *metrics.Recorder, repo storage.CheckpointRepo, bus eventbus.EventBus) (*Runner, error) {
	r := &Runner{
		cfg:         cfg,
		session:     uuid.NewString(),
		checkpoints: repo,
		events:      bus,
		metrics:     rec,
		logger:      logging.GetRunnerLogger(),
	}
	r.logger.Info("🆔 Сессия %s, мир %q", r.session, cfg.World.Name)

	types, err := loadTypes(cfg.Runner.EntityTypes)
	if err != nil {
		return nil, err
	}
	r.types = types

	persister, err := openPersister(cfg)
	if err != nil {
		return nil, err
	}
	opts := []world.Option{world.WithMetrics(rec)}
	if persister != nil {
		opts = append(opts, world.WithPersister(persister))
	}
	w, err := openWorld(cfg, opts...)
	if err != nil {
		if persister != nil {
			persister.Close()
		}
		return nil, err
	}
	r.world = w

	if err := r.spawn(ctx); err != nil {
		w.Close()
		return nil, err
	}
	if bus != nil && rec != nil {
		if err := rec.Registry().Register(eventbus.NewCollector(bus)); err != nil {
			r.logger.Warn("метрики шины событий не зарегистрированы: %v", err)
		}
	}
	r.publish(ctx, eventbus.TypeSessionStarted, 5, SessionInfo{
		World:     w.Name(),
		Seed:      w.Seed(),
		Generator: w.Generator().Kind().String(),
		Entities:  w.Entities().Len(),
	})
	return r, nil
}

func loadTypes(path string) (*entity.Registry, error) {
	if path == "" {
		return entity.ParseTypes(defaultEntities)
	}
	return entity.LoadTypes(path)
}

// openPersister открывает BadgerDB, если она выбрана; nil: файловое хранилище мира
func openPersister(cfg *config.Config) (world.Persister, error) {
	if cfg.Storage.Backend != "badger" {
		return nil, nil
	}
	dir := cfg.Storage.Path
	if dir == "" {
		dir = filepath.Join(cfg.World.SaveRoot, cfg.World.Name, "badger")
	}
	p, err := storage.NewBadgerPersister(dir)
	if err != nil {
		return nil, err
	}
	logging.GetStorageLogger().Info("💾 Чанки хранятся в BadgerDB: %s", dir)
	return p, nil
}

// openWorld загружает мир по имени, а если его нет, создаёт из конфигурации
func openWorld(cfg *config.Config, opts ...world.Option) (*world.World, error) {
	w, err := world.Load(cfg.World.SaveRoot, cfg.World.Name, opts...)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	wopts, err := OptionsFromConfig(cfg.World)
	if err != nil {
		return nil, err
	}
	return world.New(wopts, cfg.World.SaveRoot, opts...)
}

// OptionsFromConfig строит параметры нового мира из секции world
func OptionsFromConfig(wc config.WorldConfig) (world.Options, error) {
	seed := wc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	o := world.DefaultOptions(wc.Name, seed)
	o.TileSize = wc.TileSize
	if wc.Gravity != nil {
		o.Gravity = *wc.Gravity
	}
	if wc.LinearDamping != nil {
		o.LinearDamping = *wc.LinearDamping
	}
	if wc.GroundFriction != nil {
		o.GroundFriction = *wc.GroundFriction
	}
	if wc.Restitution != nil {
		o.Restitution = *wc.Restitution
	}
	if wc.FloorY != nil {
		o.WorldFloorY = *wc.FloorY
	}
	if len(wc.Generator) > 0 {
		// Секция YAML повторяет дескриптор из options.json
		data, err := json.Marshal(wc.Generator)
		if err != nil {
			return o, fmt.Errorf("world.generator: %w", err)
		}
		var d gen.Descriptor
		if err := json.Unmarshal(data, &d); err != nil {
			return o, fmt.Errorf("world.generator: %w", err)
		}
		o.Generator = d
	}
	return o, o.Validate()
}

func openCheckpoints(ctx context.Context, cc config.CheckpointConfig) (storage.CheckpointRepo, error) {
	switch cc.Backend {
	case "memory":
		return storage.NewMemoryCheckpointRepo(), nil
	case "redis":
		return storage.NewRedisCheckpointRepo(ctx, &storage.RedisConfig{
			Addr:      cc.RedisAddr,
			Password:  cc.RedisPassword,
			DB:        cc.RedisDB,
			KeyPrefix: storage.DefaultRedisConfig().KeyPrefix,
			TTL:       cc.TTL,
		})
	case "mysql":
		return storage.NewMariaCheckpointRepo(ctx, cc.MySQLDSN)
	default:
		return nil, nil
	}
}

func openEvents(ctx context.Context, ec config.EventsConfig) (eventbus.EventBus, error) {
	switch ec.Backend {
	case "memory":
		bus := eventbus.NewMemoryBus(ec.Buffer)
		// Подписка живёт до закрытия шины, чтобы SessionStopped попал в журнал после отмены ctx
		if _, err := eventbus.StartLoggingListener(context.WithoutCancel(ctx), bus); err != nil {
			bus.Close()
			return nil, err
		}
		return bus, nil
	case "nats":
		return eventbus.NewJetStreamBus(ec.URL, ec.Stream, ec.Retention)
	default:
		return nil, nil
	}
}

func (r *Runner) spawn(ctx context.Context) error {
	for _, s := range r.cfg.Runner.Spawns {
		t, ok := r.types.Get(s.Type)
		if !ok {
			return fmt.Errorf("spawn: неизвестный тип сущности %q", s.Type)
		}
		isFocus := r.focus == entity.NilHandle && (r.cfg.Runner.FocusType == "" || t.Is(r.cfg.Runner.FocusType))
		if !isFocus {
			r.spawned(ctx, r.world.Spawn(t, s.X, s.Y), false)
			continue
		}

		cp, found := r.restore(ctx, t.Name)
		if !found {
			e := r.world.Spawn(t, s.X, s.Y)
			r.focus = e.Handle()
			r.spawned(ctx, e, true)
			continue
		}
		e := r.world.Spawn(t, cp.X, cp.Y)
		e.SetVelocity(cp.VX, cp.VY)
		if cp.Health > 0 {
			e.SetHealth(cp.Health)
		}
		r.focus = e.Handle()
		r.spawned(ctx, e, true)
		r.logger.Info("📍 %s восстановлен в (%.1f, %.1f)", t.Name, cp.X, cp.Y)
	}
	return nil
}

func (r *Runner) spawned(ctx context.Context, e *entity.Entity, focus bool) {
	pos := e.Position()
	r.publish(ctx, eventbus.TypeEntitySpawned, 1, EntityInfo{
		Handle: uint64(e.Handle()),
		Type:   e.Type().Name,
		X:      pos.X,
		Y:      pos.Y,
		Focus:  focus,
	})
}

// publish отправляет событие в шину; ошибки шины только логируются
func (r *Runner) publish(ctx context.Context, eventType string, priority int, payload interface{}) {
	if r.events == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(r.session, eventType, priority, payload)
	if err == nil {
		err = r.events.Publish(ctx, ev)
	}
	if err != nil {
		r.logger.Warn("событие %s не опубликовано: %v", eventType, err)
	}
}

// restore читает контрольную точку; ошибка хранилища не мешает старту
func (r *Runner) restore(ctx context.Context, typ string) (storage.Checkpoint, bool) {
	if r.checkpoints == nil {
		return storage.Checkpoint{}, false
	}
	cp, found, err := r.checkpoints.Load(ctx, r.world.Name(), typ)
	if err != nil {
		r.logger.Warn("контрольная точка не загружена: %v", err)
		return storage.Checkpoint{}, false
	}
	return cp, found
}

// World возвращает мир
func (r *Runner) World() *world.World { return r.world }

// Session возвращает идентификатор запуска
func (r *Runner) Session() string { return r.session }

// Ticks возвращает число выполненных тиков
func (r *Runner) Ticks() uint64 { return r.ticks }

// Focus возвращает точку, вокруг которой держится окно чанков
func (r *Runner) Focus() vec.Vec2Float {
	if e, ok := r.world.Entity(r.focus); ok {
		return e.Position()
	}
	return vec.Vec2Float{}
}

// Tick выполняет одно обновление мира
func (r *Runner) Tick() {
	r.world.Update(r.Focus())
	r.ticks++
}

// Run крутит цикл до исчерпания тиков или отмены контекста
func (r *Runner) Run(ctx context.Context) error {
	limit := uint64(r.cfg.Runner.GetTicks())
	every := r.cfg.Runner.TickEvery

	var ticker *time.Ticker
	if every > 0 {
		ticker = time.NewTicker(every)
		defer ticker.Stop()
	}

	for limit == 0 || r.ticks < limit {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		r.Tick()
		if r.ticks%reportEvery == 0 {
			r.report(ctx)
		}
	}
	return nil
}

func (r *Runner) report(ctx context.Context) {
	pos := r.Focus()
	info := TickInfo{
		Tick:     r.ticks,
		FocusX:   pos.X,
		FocusY:   pos.Y,
		Chunks:   r.world.Chunks().Len(),
		Entities: r.world.Entities().Len(),
	}
	r.logger.Info("⏱️ Тик %d: фокус (%.1f, %.1f), чанков %d, сущностей %d",
		info.Tick, info.FocusX, info.FocusY, info.Chunks, info.Entities)
	if stats, err := r.metrics.SampleProcess(); err == nil {
		r.logger.Debug("📊 %s", stats)
	}
	r.publish(ctx, eventbus.TypeTickReport, 1, info)
}

// Close сохраняет контрольную точку фокуса, чанки и закрывает хранилища
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	if r.checkpoints != nil {
		if e, ok := r.world.Entity(r.focus); ok {
			vel := e.Velocity()
			err := r.checkpoints.Save(ctx, storage.Checkpoint{
				World:  r.world.Name(),
				Type:   e.Type().Name,
				X:      e.Position().X,
				Y:      e.Position().Y,
				VX:     vel.X,
				VY:     vel.Y,
				Health: e.Health(),
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("save checkpoint: %w", err))
			}
		}
		if err := r.checkpoints.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.world.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.events != nil {
		r.publish(ctx, eventbus.TypeSessionStopped, 5, TickInfo{
			Tick:     r.ticks,
			Entities: r.world.Entities().Len(),
		})
		if err := r.events.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.logger.Info("👋 Сессия %s завершена после %d тиков", r.session, r.ticks)
	return errors.Join(errs...)
}
