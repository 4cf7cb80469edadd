// Package interaction はチャットプラットフォームに依存しないイベントと応答の型を定義する。
package interaction

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind はボタン・セレクト・モーダルの操作種別。
// 新しい種別を追加した場合はhandler.Routerのswitchも更新すること。
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionUseProfile
	ActionNewScrim
	ActionBasicInfoSubmit
	ActionMapSelect
	ActionServerYes
	ActionServerNo
	ActionShowInterest
	ActionMarkFilled
	ActionCancelScrim
	ActionListPrev
	ActionListNext
	ActionListRefresh
	ActionCleanupConfirm
	ActionCleanupCancel
	ActionProfileEdit
	ActionProfileSubmit
	ActionQuickScrim
)

// Action はcustom idを解析した結果。IndexはActionMapSelectのチャンク番号。
type Action struct {
	Kind  ActionKind
	Index int
}

// 固定のcustom id。既存の投稿に付いたボタンが動き続けるよう値は変更しない。
var customIDs = map[ActionKind]string{
	ActionUseProfile:      "use_profile",
	ActionNewScrim:        "new_scrim",
	ActionBasicInfoSubmit: "scrim_basic_info",
	ActionServerYes:       "server_yes",
	ActionServerNo:        "server_no",
	ActionShowInterest:    "show_interest",
	ActionMarkFilled:      "scrim_filled",
	ActionCancelScrim:     "cancel_scrim",
	ActionListPrev:        "scrimlist_prev",
	ActionListNext:        "scrimlist_next",
	ActionListRefresh:     "scrimlist_refresh",
	ActionCleanupConfirm:  "cleanup_confirm",
	ActionCleanupCancel:   "cleanup_cancel",
	ActionProfileEdit:     "edit_profile",
	ActionProfileSubmit:   "edit_profile_modal",
	ActionQuickScrim:      "quick_scrim",
}

// 旧バージョンで使われていた別名
var customIDAliases = map[string]ActionKind{
	"create_profile":           ActionProfileEdit,
	"quick_scrim_from_profile": ActionQuickScrim,
}

const mapSelectPrefix = "map_select_"

var parseTable = func() map[string]ActionKind {
	m := make(map[string]ActionKind, len(customIDs)+len(customIDAliases))
	for k, id := range customIDs {
		m[id] = k
	}
	for id, k := range customIDAliases {
		m[id] = k
	}
	return m
}()

// CustomID はプラットフォームに送るcustom idを返す。
func (a Action) CustomID() string {
	if a.Kind == ActionMapSelect {
		return mapSelectPrefix + strconv.Itoa(a.Index)
	}
	return customIDs[a.Kind]
}

// ParseCustomID はcustom idをActionに変換する。未知のidはActionUnknownになる。
func ParseCustomID(id string) Action {
	if k, ok := parseTable[id]; ok {
		return Action{Kind: k}
	}
	if rest, ok := strings.CutPrefix(id, mapSelectPrefix); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
			return Action{Kind: ActionMapSelect, Index: n}
		}
	}
	return Action{Kind: ActionUnknown}
}

func (k ActionKind) String() string {
	if k == ActionMapSelect {
		return "map_select"
	}
	if id, ok := customIDs[k]; ok {
		return id
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}
