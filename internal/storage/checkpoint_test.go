package storage

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseRepo проверяет общий контракт CheckpointRepo
func exerciseRepo(t *testing.T, repo CheckpointRepo) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		cp := Checkpoint{World: "w1", Type: "Player", X: 10.5, Y: 128, VX: 1, Health: 7}
		require.NoError(t, repo.Save(ctx, cp))

		got, found, err := repo.Load(ctx, "w1", "player")
		require.NoError(t, err)
		require.True(t, found, "тип сравнивается без учёта регистра")
		assert.Equal(t, 10.5, got.X)
		assert.Equal(t, 128.0, got.Y)
		assert.Equal(t, 1.0, got.VX)
		assert.Equal(t, 7, got.Health)
	})

	t.Run("Load Missing", func(t *testing.T) {
		_, found, err := repo.Load(ctx, "w1", "ghost")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Update", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, Checkpoint{World: "w1", Type: "zombie", X: 1}))
		require.NoError(t, repo.Save(ctx, Checkpoint{World: "w1", Type: "zombie", X: 2}))
		got, found, err := repo.Load(ctx, "w1", "zombie")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 2.0, got.X)
	})

	t.Run("Worlds Are Separate", func(t *testing.T) {
		_, found, err := repo.Load(ctx, "w2", "player")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "w1", "zombie"))
		_, found, err := repo.Load(ctx, "w1", "zombie")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Invalid Key", func(t *testing.T) {
		assert.ErrorIs(t, repo.Save(ctx, Checkpoint{Type: "player"}), ErrInvalidCheckpoint)
		_, _, err := repo.Load(ctx, "w1", "")
		assert.ErrorIs(t, err, ErrInvalidCheckpoint)
	})
}

func TestMemoryCheckpointRepo(t *testing.T) {
	repo := NewMemoryCheckpointRepo()
	exerciseRepo(t, repo)
	assert.Equal(t, 1, repo.Len())
}

func TestMemoryCheckpointRepoCancelledContext(t *testing.T) {
	repo := NewMemoryCheckpointRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, repo.Save(ctx, Checkpoint{World: "w", Type: "t"}), context.Canceled)
}

func TestMemoryCheckpointRepoSetsTimestamp(t *testing.T) {
	repo := NewMemoryCheckpointRepo()
	ctx := context.Background()
	before := time.Now()
	require.NoError(t, repo.Save(ctx, Checkpoint{World: "w", Type: "t"}))
	got, _, err := repo.Load(ctx, "w", "t")
	require.NoError(t, err)
	assert.False(t, got.UpdatedAt.Before(before))
}

func TestMemoryCheckpointRepoConcurrentAccess(t *testing.T) {
	repo := NewMemoryCheckpointRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = repo.Save(ctx, Checkpoint{World: "w", Type: string(rune('a' + i)), X: float64(j)})
				_, _, _ = repo.Load(ctx, "w", string(rune('a'+i)))
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, repo.Len())
}

// Внешние хранилища проверяются только при заданном адресе

func TestRedisCheckpointRepo(t *testing.T) {
	addr := os.Getenv("TILEWORLD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TILEWORLD_TEST_REDIS_ADDR не задан")
	}
	cfg := DefaultRedisConfig()
	cfg.Addr = addr
	cfg.KeyPrefix = "tileworld:test:" + time.Now().Format("150405.000") + ":"
	repo, err := NewRedisCheckpointRepo(context.Background(), cfg)
	require.NoError(t, err)
	defer repo.Close()

	exerciseRepo(t, repo)
	n, err := repo.Count(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMariaCheckpointRepo(t *testing.T) {
	dsn := os.Getenv("TILEWORLD_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TILEWORLD_TEST_MYSQL_DSN не задан")
	}
	repo, err := NewMariaCheckpointRepo(context.Background(), dsn)
	require.NoError(t, err)
	defer repo.Close()

	exerciseRepo(t, repo)
}
