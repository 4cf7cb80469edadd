// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Scrim はスクリム募集の投稿を表す永続エンティティ。
// レコードは物理削除せず、ステータス遷移のみで履歴を残す。
type Scrim struct {
	ID            string
	MessageID     string // 投稿メッセージID（一意・不変）
	ChannelID     string
	ThreadID      string // スレッドがない場合は空文字
	TeamName      string
	Division      string
	ScheduledDate string // ユーザー入力のまま保持する
	ScheduledTime string
	Maps          string // ", " 区切りの順序付きマップ名
	HasServer     bool
	OwnerUserID   string
	Status        ScrimStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MapList はMapsを順序を保ったままスライスに分解する。
func (s *Scrim) MapList() []string {
	if s.Maps == "" {
		return nil
	}
	parts := strings.Split(s.Maps, MapSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MapSeparator はMapsカラムの区切り文字。
const MapSeparator = ", "

// JoinMaps はマップ名をMapsカラムの形式に結合する。
func JoinMaps(maps []string) string {
	return strings.Join(maps, MapSeparator)
}

// ScrimStatus はスクリムのライフサイクル状態を表す。
type ScrimStatus string

const (
	// ScrimStatusActive は募集中。唯一の非終端状態。
	ScrimStatusActive ScrimStatus = "active"
	// ScrimStatusFilled はオーナーまたは管理者が成立済みにした状態。
	ScrimStatusFilled ScrimStatus = "filled"
	// ScrimStatusCancelled はオーナーまたは管理者が取り消した状態。
	ScrimStatusCancelled ScrimStatus = "cancelled"
	// ScrimStatusCleaned は管理者の手動クリーンアップで回収された状態。
	ScrimStatusCleaned ScrimStatus = "cleaned"
	// ScrimStatusAutoCleaned は定期クリーンアップで回収された状態。
	ScrimStatusAutoCleaned ScrimStatus = "auto_cleaned"
)

// IsTerminal は終端状態かどうかを返す。
func (s ScrimStatus) IsTerminal() bool {
	switch s {
	case ScrimStatusFilled, ScrimStatusCancelled, ScrimStatusCleaned, ScrimStatusAutoCleaned:
		return true
	default:
		return false
	}
}

// Profile はユーザーが保存したチーム情報。
// ウィザードのBasicInfoを事前入力するためだけに使う。
type Profile struct {
	UserID    string
	TeamName  string
	Division  string
	UpdatedAt time.Time
}

// MapEntry は管理者が管理するマップカタログの1件。
type MapEntry struct {
	Name      string
	CreatedAt time.Time
}

// DefaultMaps は初期投入されるマップ一覧。
var DefaultMaps = []string{
	"Mirage", "Dust2", "Inferno", "Cache", "Overpass",
	"Vertigo", "Ancient", "Anubis", "Nuke",
}

// SettingScrimChannelID は投稿先チャンネルIDの設定キー。
const SettingScrimChannelID = "SCRIM_CHANNEL_ID"

// 入力値の制約
const (
	MaxTeamNameLen     = 50
	MaxDivisionLen     = 30
	MinProfileFieldLen = 2
	MinMapNameLen      = 2
	MaxMapNameLen      = 30
	MaxMapsPerScrim    = 10
	MapChunkSize       = 25
)
