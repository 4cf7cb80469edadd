package interaction

import "time"

// Response はイベントへの応答メッセージ。
type Response struct {
	Content    string
	Embeds     []Embed
	Components []Row
	Ephemeral  bool
}

// Embed は埋め込み表示。
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
	Timestamp   *time.Time
}

// EmbedField は埋め込みの1項目。
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Row はコンポーネントの1行。ButtonsとSelectはどちらか一方のみを使う。
type Row struct {
	Buttons []Button
	Select  *Select
}

// ButtonStyle はボタンの見た目。
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

// Button はボタン。
type Button struct {
	Action   Action
	Label    string
	Emoji    string
	Style    ButtonStyle
	Disabled bool
}

// Select は文字列セレクトメニュー。
type Select struct {
	Action      Action
	Placeholder string
	MinValues   int
	MaxValues   int
	Options     []SelectOption
}

// SelectOption はセレクトメニューの選択肢。
type SelectOption struct {
	Label string
	Value string
	Emoji string
}

// Modal は入力フォーム。
type Modal struct {
	Action Action
	Title  string
	Inputs []TextInput
}

// TextInput はモーダルの1行入力。
type TextInput struct {
	ID          string
	Label       string
	Placeholder string
	Value       string
	Required    bool
	MinLength   int
	MaxLength   int
}
