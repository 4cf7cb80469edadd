package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/scrimbot/internal/model"
)

// SQLMapRepo はマップカタログのリポジトリ。
type SQLMapRepo struct {
	db *sql.DB
}

// NewSQLMapRepo はSQLMapRepoを生成する。
func NewSQLMapRepo(db *sql.DB) *SQLMapRepo {
	return &SQLMapRepo{db: db}
}

var _ MapRepository = (*SQLMapRepo)(nil)

// List は登録済みマップを名前順に返す。
func (r *SQLMapRepo) List(ctx context.Context) ([]model.MapEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, created_at FROM maps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var maps []model.MapEntry
	for rows.Next() {
		var m model.MapEntry
		if err := rows.Scan(&m.Name, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan map: %w", err)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate maps: %w", err)
	}
	return maps, nil
}

// Add はマップを登録する。既に存在する場合はfalseを返す。
func (r *SQLMapRepo) Add(ctx context.Context, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO maps (name, created_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		name, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to add map: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Remove はマップを削除する。存在しない場合はfalseを返す。
func (r *SQLMapRepo) Remove(ctx context.Context, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM maps WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("failed to remove map: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}
