package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/tile-world/internal/logging"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей, 0: бессрочно
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "tileworld:cp:",
	}
}

// RedisCheckpointRepo хранит контрольные точки в Redis как JSON
type RedisCheckpointRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCheckpointRepo подключается к Redis и проверяет соединение
func NewRedisCheckpointRepo(ctx context.Context, config *RedisConfig) (*RedisCheckpointRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetStorageLogger().Info("🔴 Connected to Redis at %s", config.Addr)
	return &RedisCheckpointRepo{
		client:    client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

func (r *RedisCheckpointRepo) key(world, typ string) string {
	return r.keyPrefix + checkpointID(world, typ)
}

// Save сохраняет контрольную точку
func (r *RedisCheckpointRepo) Save(ctx context.Context, cp Checkpoint) error {
	if err := checkKey(cp.World, cp.Type); err != nil {
		return err
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	if err := r.client.Set(ctx, r.key(cp.World, cp.Type), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load загружает контрольную точку
func (r *RedisCheckpointRepo) Load(ctx context.Context, world, typ string) (Checkpoint, bool, error) {
	if err := checkKey(world, typ); err != nil {
		return Checkpoint{}, false, err
	}
	data, err := r.client.Get(ctx, r.key(world, typ)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return cp, true, nil
}

// Delete удаляет контрольную точку
func (r *RedisCheckpointRepo) Delete(ctx context.Context, world, typ string) error {
	if err := checkKey(world, typ); err != nil {
		return err
	}
	return r.client.Del(ctx, r.key(world, typ)).Err()
}

// Count возвращает количество контрольных точек мира
func (r *RedisCheckpointRepo) Count(ctx context.Context, world string) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, r.keyPrefix+world+":*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count, iter.Err()
}

// Close закрывает соединение
func (r *RedisCheckpointRepo) Close() error {
	return r.client.Close()
}
