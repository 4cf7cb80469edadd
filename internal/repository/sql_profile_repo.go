package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/scrimbot/internal/model"
)

// SQLProfileRepo はチームプロフィールのリポジトリ。
type SQLProfileRepo struct {
	db *sql.DB
}

// NewSQLProfileRepo はSQLProfileRepoを生成する。
func NewSQLProfileRepo(db *sql.DB) *SQLProfileRepo {
	return &SQLProfileRepo{db: db}
}

var _ ProfileRepository = (*SQLProfileRepo)(nil)

// Find はユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *SQLProfileRepo) Find(ctx context.Context, userID string) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, team_name, division, updated_at FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.TeamName, &p.Division, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return p, nil
}

// Upsert はプロフィールを作成または更新する。
func (r *SQLProfileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, team_name, division, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		   team_name = excluded.team_name,
		   division = excluded.division,
		   updated_at = excluded.updated_at`,
		p.UserID, p.TeamName, p.Division, p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
