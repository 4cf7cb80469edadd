package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLSettingRepo は実行時設定のリポジトリ。
type SQLSettingRepo struct {
	db *sql.DB
}

// NewSQLSettingRepo はSQLSettingRepoを生成する。
func NewSQLSettingRepo(db *sql.DB) *SQLSettingRepo {
	return &SQLSettingRepo{db: db}
}

var _ SettingRepository = (*SQLSettingRepo)(nil)

// Get は設定値を返す。未設定の場合は空文字を返す。
func (r *SQLSettingRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// Set は設定値を作成または更新する。
func (r *SQLSettingRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
