package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MariaCheckpointRepo хранит контрольные точки в MariaDB/MySQL,
// таблица entity_checkpoints
type MariaCheckpointRepo struct {
	db *sql.DB
}

// NewMariaCheckpointRepo подключается к базе и создаёт таблицу, если её нет.
// dsn: user:pass@tcp(host:port)/dbname?parseTime=true
func NewMariaCheckpointRepo(ctx context.Context, dsn string) (*MariaCheckpointRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaCheckpointRepo{db: db}
	if err := repo.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *MariaCheckpointRepo) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS entity_checkpoints (
			world      VARCHAR(128) NOT NULL,
			type       VARCHAR(64)  NOT NULL,
			x          DOUBLE       NOT NULL,
			y          DOUBLE       NOT NULL,
			vx         DOUBLE       NOT NULL DEFAULT 0,
			vy         DOUBLE       NOT NULL DEFAULT 0,
			health     INT          NOT NULL DEFAULT 0,
			updated_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE    CURRENT_TIMESTAMP,
			PRIMARY KEY (world, type)
		) ENGINE=InnoDB
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания таблицы entity_checkpoints: %w", err)
	}
	return nil
}

// Save сохраняет контрольную точку (INSERT ... ON DUPLICATE KEY UPDATE)
func (r *MariaCheckpointRepo) Save(ctx context.Context, cp Checkpoint) error {
	if err := checkKey(cp.World, cp.Type); err != nil {
		return err
	}
	query := `
		INSERT INTO entity_checkpoints (world, type, x, y, vx, vy, health)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			x = VALUES(x),
			y = VALUES(y),
			vx = VALUES(vx),
			vy = VALUES(vy),
			health = VALUES(health),
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, cp.World, normalizeType(cp.Type), cp.X, cp.Y, cp.VX, cp.VY, cp.Health)
	if err != nil {
		return fmt.Errorf("ошибка сохранения точки %s: %w", checkpointID(cp.World, cp.Type), err)
	}
	return nil
}

// Load загружает контрольную точку
func (r *MariaCheckpointRepo) Load(ctx context.Context, world, typ string) (Checkpoint, bool, error) {
	if err := checkKey(world, typ); err != nil {
		return Checkpoint{}, false, err
	}
	query := `SELECT x, y, vx, vy, health, updated_at FROM entity_checkpoints WHERE world = ? AND type = ?`

	cp := Checkpoint{World: world, Type: typ}
	var updated sql.NullTime
	err := r.db.QueryRowContext(ctx, query, world, normalizeType(typ)).
		Scan(&cp.X, &cp.Y, &cp.VX, &cp.VY, &cp.Health, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("ошибка загрузки точки %s: %w", checkpointID(world, typ), err)
	}
	if updated.Valid {
		cp.UpdatedAt = updated.Time
	}
	return cp, true, nil
}

// Delete удаляет контрольную точку
func (r *MariaCheckpointRepo) Delete(ctx context.Context, world, typ string) error {
	if err := checkKey(world, typ); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM entity_checkpoints WHERE world = ? AND type = ?`, world, normalizeType(typ))
	if err != nil {
		return fmt.Errorf("ошибка удаления точки %s: %w", checkpointID(world, typ), err)
	}
	return nil
}

// Close закрывает соединение с базой данных
func (r *MariaCheckpointRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
