// Package messaging はチャットプラットフォームへの送信操作を抽象化する。
package messaging

import (
	"context"
	"errors"

	"github.com/hitoshi/scrimbot/internal/interaction"
)

var (
	// ErrNotFound は対象のメッセージやスレッドが既に存在しないことを表す。
	// クリーンアップでは成功として扱う。
	ErrNotFound = errors.New("messaging: not found")

	// ErrUnreachable はDMを受け付けない等の理由で宛先に届けられないことを表す。
	ErrUnreachable = errors.New("messaging: recipient unreachable")
)

// Message はチャンネルやスレッドに送信するメッセージ。
type Message struct {
	Content    string
	Embeds     []interaction.Embed
	Components []interaction.Row
}

// Messenger はプラットフォームへの送信操作。
type Messenger interface {
	// Post はチャンネルにメッセージを投稿し、メッセージIDを返す。
	Post(ctx context.Context, channelID string, msg Message) (string, error)
	// StartThread はメッセージから議論用スレッドを作成し、スレッドIDを返す。
	StartThread(ctx context.Context, channelID, messageID, title string) (string, error)
	// Send はチャンネルまたはスレッドにメッセージを送る。
	Send(ctx context.Context, channelID string, msg Message) error
	// ArchiveThread はスレッドをアーカイブする。
	ArchiveThread(ctx context.Context, threadID string) error
	// DeleteMessage はメッセージを削除する。存在しない場合はErrNotFoundを返す。
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	// DeleteThread はスレッドを削除する。存在しない場合はErrNotFoundを返す。
	DeleteThread(ctx context.Context, threadID string) error
	// SendDirect はユーザーにDMを送る。
	SendDirect(ctx context.Context, userID string, msg Message) error
}

// IsNotFound はerrが対象不在を表すかどうかを返す。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
