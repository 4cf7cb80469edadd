// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/scrimbot/internal/model"
)

// ScrimRepository はスクリム募集の永続化インターフェース。
// レコードは削除せず、ステータス遷移のみを行う。
type ScrimRepository interface {
	// Create はスクリムを作成する。MessageIDが重複する場合はエラーを返す。
	Create(ctx context.Context, scrim *model.Scrim) error

	// FindByMessageID は投稿メッセージIDでスクリムを取得する。
	// ステータスに関わらず返す。見つからない場合はnilを返す。
	FindByMessageID(ctx context.Context, messageID string) (*model.Scrim, error)

	// FindActiveByMessageID はactive状態のスクリムを取得する。見つからない場合はnilを返す。
	FindActiveByMessageID(ctx context.Context, messageID string) (*model.Scrim, error)

	// ListActive はactive状態のスクリムを作成日時の新しい順に返す。
	ListActive(ctx context.Context) ([]*model.Scrim, error)

	// ListExpired はnow時点で期限切れと判定されるactiveスクリムを作成日時の古い順に返す。
	ListExpired(ctx context.Context, now time.Time, staleAfter time.Duration) ([]*model.Scrim, error)

	// UpdateStatus はactive状態のスクリムを指定ステータスへ遷移させる。
	// 既に終端状態の場合は何もせず0を返す。
	UpdateStatus(ctx context.Context, messageID string, status model.ScrimStatus) (int64, error)
}

// MapRepository はマップカタログの永続化インターフェース。
type MapRepository interface {
	// List は登録済みマップを名前順に返す。
	List(ctx context.Context) ([]model.MapEntry, error)

	// Add はマップを登録する。既に存在する場合はfalseを返す。
	Add(ctx context.Context, name string) (bool, error)

	// Remove はマップを削除する。存在しない場合はfalseを返す。
	Remove(ctx context.Context, name string) (bool, error)
}

// ProfileRepository は保存済みチームプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// Find はユーザーのプロフィールを取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, userID string) (*model.Profile, error)

	// Upsert はプロフィールを作成または更新する。
	Upsert(ctx context.Context, profile *model.Profile) error
}

// AlertRepository は新着通知の受信設定の永続化インターフェース。
type AlertRepository interface {
	// Set は受信設定を作成または更新する。
	Set(ctx context.Context, userID string, enabled bool) error

	// Find は受信設定を返す。未設定の場合はfound=falseを返す。
	Find(ctx context.Context, userID string) (enabled bool, found bool, err error)

	// ListEnabledUserIDs は受信を有効にしているユーザーIDを返す。
	ListEnabledUserIDs(ctx context.Context) ([]string, error)
}

// SettingRepository は実行時設定の永続化インターフェース。
type SettingRepository interface {
	// Get は設定値を返す。未設定の場合は空文字を返す。
	Get(ctx context.Context, key string) (string, error)

	// Set は設定値を作成または更新する。
	Set(ctx context.Context, key, value string) error
}
