package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLAlertRepo は通知受信設定のリポジトリ。
type SQLAlertRepo struct {
	db *sql.DB
}

// NewSQLAlertRepo はSQLAlertRepoを生成する。
func NewSQLAlertRepo(db *sql.DB) *SQLAlertRepo {
	return &SQLAlertRepo{db: db}
}

var _ AlertRepository = (*SQLAlertRepo)(nil)

// Set は受信設定を作成または更新する。
func (r *SQLAlertRepo) Set(ctx context.Context, userID string, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alert_preferences (user_id, alerts_enabled, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET
		   alerts_enabled = excluded.alerts_enabled,
		   updated_at = excluded.updated_at`,
		userID, enabled, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set alert preference: %w", err)
	}
	return nil
}

// Find は受信設定を返す。
func (r *SQLAlertRepo) Find(ctx context.Context, userID string) (bool, bool, error) {
	var enabled bool
	err := r.db.QueryRowContext(ctx,
		`SELECT alerts_enabled FROM alert_preferences WHERE user_id = $1`,
		userID,
	).Scan(&enabled)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to find alert preference: %w", err)
	}
	return enabled, true, nil
}

// ListEnabledUserIDs は受信を有効にしているユーザーIDを登録順に返す。
func (r *SQLAlertRepo) ListEnabledUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM alert_preferences WHERE alerts_enabled = $1 ORDER BY updated_at, user_id`,
		true,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert recipients: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan alert recipient: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert recipients: %w", err)
	}
	return ids, nil
}
