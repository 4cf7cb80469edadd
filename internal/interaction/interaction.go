package interaction

import "context"

// Kind はイベントの種類。
type Kind int

const (
	KindCommand Kind = iota + 1
	KindComponent
	KindModal
)

// User はイベントを発生させたユーザー。
// Adminはサーバー管理者権限またはADMIN_IDSに含まれることを表す。
type User struct {
	ID          string
	DisplayName string
	Admin       bool
}

// Command はスラッシュコマンドの呼び出し内容。
type Command struct {
	Name       CommandName
	Subcommand string
	Options    map[string]string
}

// Interaction はプラットフォーム非依存のイベント。
type Interaction struct {
	Kind      Kind
	User      User
	ChannelID string
	MessageID string // コンポーネント操作の対象メッセージ
	Command   Command
	Action    Action
	Values    []string          // セレクトメニューの選択値
	Fields    map[string]string // モーダルの入力値
}

// Field はモーダルの入力値を返す。
func (i *Interaction) Field(id string) string {
	return i.Fields[id]
}

// Option はコマンドオプションの値を返す。
func (i *Interaction) Option(name string) string {
	return i.Command.Options[name]
}

// Responder はイベントへの応答手段。各メソッドは1回のイベントにつき
// Reply/Update/ShowModal/DeferUpdateのいずれかを最初に1回だけ呼ぶ。
type Responder interface {
	// Reply は新しい応答メッセージを送る。
	Reply(ctx context.Context, resp Response) error
	// Update は操作されたメッセージを書き換える。
	Update(ctx context.Context, resp Response) error
	// ShowModal はモーダルを表示する。
	ShowModal(ctx context.Context, modal Modal) error
	// DeferUpdate は応答を保留する。時間のかかる処理の前に呼ぶ。
	DeferUpdate(ctx context.Context) error
	// EditReply は保留または送信済みの応答を書き換える。
	EditReply(ctx context.Context, resp Response) error
	// FollowUp は追加のメッセージを送る。
	FollowUp(ctx context.Context, resp Response) error
}
