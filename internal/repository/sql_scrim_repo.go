package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/scrimbot/internal/model"
)

// SQLScrimRepo はdatabase/sqlを使用したスクリムリポジトリ。
// PostgreSQLとSQLiteの両方で動作するSQLのみを使用する。
type SQLScrimRepo struct {
	db *sql.DB
}

// NewSQLScrimRepo はSQLScrimRepoを生成する。
func NewSQLScrimRepo(db *sql.DB) *SQLScrimRepo {
	return &SQLScrimRepo{db: db}
}

var _ ScrimRepository = (*SQLScrimRepo)(nil)

const scrimColumns = `id, message_id, channel_id, thread_id, team_name, division,
	scrim_date, scrim_time, maps, has_server, user_id, status, created_at, updated_at`

// Create はスクリムを作成する。
func (r *SQLScrimRepo) Create(ctx context.Context, s *model.Scrim) error {
	if s.Status == "" {
		s.Status = model.ScrimStatusActive
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scrims (`+scrimColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.ID, s.MessageID, s.ChannelID, s.ThreadID, s.TeamName, s.Division,
		s.ScheduledDate, s.ScheduledTime, s.Maps, s.HasServer, s.OwnerUserID,
		string(s.Status), s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scrim: %w", err)
	}
	return nil
}

// FindByMessageID は投稿メッセージIDでスクリムを取得する。
func (r *SQLScrimRepo) FindByMessageID(ctx context.Context, messageID string) (*model.Scrim, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scrimColumns+` FROM scrims WHERE message_id = $1`,
		messageID,
	)
	s, err := scanScrim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scrim by message ID: %w", err)
	}
	return s, nil
}

// FindActiveByMessageID はactive状態のスクリムを取得する。
func (r *SQLScrimRepo) FindActiveByMessageID(ctx context.Context, messageID string) (*model.Scrim, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scrimColumns+` FROM scrims WHERE message_id = $1 AND status = $2`,
		messageID, string(model.ScrimStatusActive),
	)
	s, err := scanScrim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active scrim: %w", err)
	}
	return s, nil
}

// ListActive はactive状態のスクリムを新しい順に返す。
func (r *SQLScrimRepo) ListActive(ctx context.Context) ([]*model.Scrim, error) {
	return r.listActive(ctx, "DESC")
}

// ListExpired は期限切れのactiveスクリムを古い順に返す。
// 予定日時はユーザー入力の自由文字列のため、判定はmodel.IsExpiredでGo側で行う。
func (r *SQLScrimRepo) ListExpired(ctx context.Context, now time.Time, staleAfter time.Duration) ([]*model.Scrim, error) {
	active, err := r.listActive(ctx, "ASC")
	if err != nil {
		return nil, err
	}

	expired := make([]*model.Scrim, 0, len(active))
	for _, s := range active {
		if model.IsExpired(s, now, staleAfter) {
			expired = append(expired, s)
		}
	}
	return expired, nil
}

func (r *SQLScrimRepo) listActive(ctx context.Context, order string) ([]*model.Scrim, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+scrimColumns+` FROM scrims WHERE status = $1 ORDER BY created_at `+order,
		string(model.ScrimStatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active scrims: %w", err)
	}
	defer rows.Close()

	var scrims []*model.Scrim
	for rows.Next() {
		s, err := scanScrim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrim: %w", err)
		}
		scrims = append(scrims, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scrims: %w", err)
	}
	return scrims, nil
}

// UpdateStatus はactive状態のスクリムのみを遷移させる。
func (r *SQLScrimRepo) UpdateStatus(ctx context.Context, messageID string, status model.ScrimStatus) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE scrims SET status = $1, updated_at = $2
		 WHERE message_id = $3 AND status = $4`,
		string(status), time.Now().UTC(), messageID, string(model.ScrimStatusActive),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update scrim status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScrim(row rowScanner) (*model.Scrim, error) {
	s := &model.Scrim{}
	var status string
	err := row.Scan(
		&s.ID, &s.MessageID, &s.ChannelID, &s.ThreadID, &s.TeamName, &s.Division,
		&s.ScheduledDate, &s.ScheduledTime, &s.Maps, &s.HasServer, &s.OwnerUserID,
		&status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = model.ScrimStatus(status)
	return s, nil
}
