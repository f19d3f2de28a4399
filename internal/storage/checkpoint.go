package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidCheckpoint возвращается для записи без мира или типа
var ErrInvalidCheckpoint = errors.New("invalid checkpoint")

// Checkpoint: сохранённое состояние фокусной сущности между запусками.
// Ключ записи: пара (мир, тип сущности).
type Checkpoint struct {
	World     string    `json:"world"`
	Type      string    `json:"type"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	VX        float64   `json:"vx"`
	VY        float64   `json:"vy"`
	Health    int       `json:"health"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckpointRepo хранит контрольные точки.
// Load возвращает found=false без ошибки, если записи нет.
type CheckpointRepo interface {
	Save(ctx context.Context, cp Checkpoint) error
	Load(ctx context.Context, world, typ string) (Checkpoint, bool, error)
	Delete(ctx context.Context, world, typ string) error
	Close() error
}

func checkKey(world, typ string) error {
	if world == "" || typ == "" {
		return fmt.Errorf("%w: world %q, type %q", ErrInvalidCheckpoint, world, typ)
	}
	return nil
}

// Тип сущности сравнивается без учёта регистра, как в реестре типов
func normalizeType(typ string) string { return strings.ToLower(typ) }

func checkpointID(world, typ string) string {
	return world + ":" + normalizeType(typ)
}
