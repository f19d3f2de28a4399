package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryCheckpointRepo хранит контрольные точки в памяти.
// Используется, когда внешнее хранилище не настроено, и в тестах.
// Данные теряются при перезапуске!
type MemoryCheckpointRepo struct {
	mu   sync.RWMutex
	data map[string]Checkpoint
}

// NewMemoryCheckpointRepo создаёт репозиторий в памяти
func NewMemoryCheckpointRepo() *MemoryCheckpointRepo {
	return &MemoryCheckpointRepo{data: make(map[string]Checkpoint)}
}

// Save сохраняет контрольную точку
func (r *MemoryCheckpointRepo) Save(ctx context.Context, cp Checkpoint) error {
	if err := checkKey(cp.World, cp.Type); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}

	r.mu.Lock()
	r.data[checkpointID(cp.World, cp.Type)] = cp
	r.mu.Unlock()
	return nil
}

// Load загружает контрольную точку
func (r *MemoryCheckpointRepo) Load(ctx context.Context, world, typ string) (Checkpoint, bool, error) {
	if err := checkKey(world, typ); err != nil {
		return Checkpoint{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return Checkpoint{}, false, err
	}

	r.mu.RLock()
	cp, ok := r.data[checkpointID(world, typ)]
	r.mu.RUnlock()
	return cp, ok, nil
}

// Delete удаляет контрольную точку. Отсутствие записи не ошибка.
func (r *MemoryCheckpointRepo) Delete(ctx context.Context, world, typ string) error {
	if err := checkKey(world, typ); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.data, checkpointID(world, typ))
	r.mu.Unlock()
	return nil
}

// Len возвращает количество записей
func (r *MemoryCheckpointRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Close реализует CheckpointRepo
func (r *MemoryCheckpointRepo) Close() error { return nil }
