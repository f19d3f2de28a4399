package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Runner  RunnerConfig  `yaml:"runner"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Events  EventsConfig  `yaml:"events"`
}

// WorldConfig описывает создаваемый мир
type WorldConfig struct {
	Name     string `yaml:"name"`
	SaveRoot string `yaml:"save_root"`
	Seed     int64  `yaml:"seed"` // 0: случайный
	TileSize int    `yaml:"tile_size"`

	Gravity        *float64 `yaml:"gravity"`
	LinearDamping  *float64 `yaml:"linear_damping"`
	GroundFriction *float64 `yaml:"ground_friction"`
	Restitution    *float64 `yaml:"restitution"`
	FloorY         *float64 `yaml:"floor_y"`

	// Generator: дескриптор генератора в том же виде, что и в options.json
	Generator map[string]interface{} `yaml:"generator"`
}

// RunnerConfig задаёт цикл симуляции
type RunnerConfig struct {
	Ticks       int           `yaml:"ticks"`        // 0: до сигнала остановки
	TickEvery   time.Duration `yaml:"tick_every"`   // 0: без паузы
	EntityTypes string        `yaml:"entity_types"` // YAML с типами сущностей
	Spawns      []SpawnConfig `yaml:"spawns"`
	FocusType   string        `yaml:"focus"` // Тип сущности, за которой следует окно чанков
}

// SpawnConfig: сущность, создаваемая при старте
type SpawnConfig struct {
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// StorageConfig выбирает хранилище чанков
type StorageConfig struct {
	Backend string `yaml:"backend"` // file | badger
	Path    string `yaml:"path"`    // Каталог badger, по умолчанию <save>/badger

	Checkpoints CheckpointConfig `yaml:"checkpoints"`
}

// CheckpointConfig выбирает хранилище позиции фокусной сущности между запусками
type CheckpointConfig struct {
	Backend       string        `yaml:"backend"` // none | memory | redis | mysql
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
	MySQLDSN      string        `yaml:"mysql_dsn"`
}

// LoggingConfig задаёт вывод логов
type LoggingConfig struct {
	Level     string `yaml:"level"`
	FileLevel string `yaml:"file_level"`
	Dir       string `yaml:"dir"`
}

// EventsConfig выбирает шину событий симуляции
type EventsConfig struct {
	Backend   string        `yaml:"backend"` // none | memory | nats
	URL       string        `yaml:"url"`     // nats://127.0.0.1:4222
	Stream    string        `yaml:"stream"`
	Retention time.Duration `yaml:"retention"`
	Buffer    int           `yaml:"buffer"` // Ёмкость in-memory шины
}

// MetricsConfig задаёт HTTP-эндпоинт Prometheus
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Пусто: метрики не публикуются
}

const (
	defaultWorldName = "world"
	defaultSaveRoot  = "saves"
	defaultTileSize  = 128
	defaultBackend   = "file"
	defaultRedisAddr = "localhost:6379"
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults заполняет пустые поля: config -> env -> default
func (c *Config) applyDefaults() {
	if c.World.Name == "" {
		c.World.Name = defaultWorldName
	}
	c.World.SaveRoot = stringWithEnvFallback(c.World.SaveRoot, "TILEWORLD_SAVE_ROOT", defaultSaveRoot)
	if c.World.TileSize <= 0 {
		c.World.TileSize = defaultTileSize
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultBackend
	}
	cp := &c.Storage.Checkpoints
	if cp.Backend == "" {
		cp.Backend = "none"
	}
	cp.RedisAddr = stringWithEnvFallback(cp.RedisAddr, "TILEWORLD_REDIS_ADDR", defaultRedisAddr)
	cp.MySQLDSN = stringWithEnvFallback(cp.MySQLDSN, "TILEWORLD_MYSQL_DSN", "")
	if c.Events.Backend == "" {
		c.Events.Backend = "none"
	}
	c.Events.URL = stringWithEnvFallback(c.Events.URL, "TILEWORLD_NATS_URL", "nats://127.0.0.1:4222")
	if c.Events.Retention <= 0 {
		c.Events.Retention = 24 * time.Hour
	}
	if c.Events.Buffer <= 0 {
		c.Events.Buffer = 256
	}
	c.Metrics.Addr = stringWithEnvFallback(c.Metrics.Addr, "TILEWORLD_METRICS_ADDR", "")
	if c.Runner.Ticks < 0 {
		c.Runner.Ticks = 0
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "badger":
	default:
		return fmt.Errorf("storage.backend: неизвестное хранилище %q", c.Storage.Backend)
	}
	switch c.Storage.Checkpoints.Backend {
	case "none", "memory", "redis":
	case "mysql":
		if c.Storage.Checkpoints.MySQLDSN == "" {
			return fmt.Errorf("storage.checkpoints.mysql_dsn обязателен для mysql")
		}
	default:
		return fmt.Errorf("storage.checkpoints.backend: неизвестное хранилище %q", c.Storage.Checkpoints.Backend)
	}
	switch c.Events.Backend {
	case "none", "memory", "nats":
	default:
		return fmt.Errorf("events.backend: неизвестная шина %q", c.Events.Backend)
	}
	if c.World.TileSize <= 0 {
		return fmt.Errorf("world.tile_size должен быть положительным")
	}
	return nil
}

// GetTicks возвращает число тиков с поддержкой переменной окружения
func (r *RunnerConfig) GetTicks() int {
	return intWithEnvFallback(r.Ticks, "TILEWORLD_TICKS", 0)
}

func stringWithEnvFallback(value, envVar, def string) string {
	if value != "" {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return def
}

// intWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func intWithEnvFallback(value int, envVar string, def int) int {
	if value > 0 {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV TILEWORLD_CONFIG или возвращает дефолты.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TILEWORLD_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse разбирает YAML и применяет значения по умолчанию
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
