// Package messagingtest はmessaging.Messengerのテスト用実装を提供する。
package messagingtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/hitoshi/scrimbot/internal/messaging"
)

// Recorded は Recorder が記録した1回の送信操作。
type Recorded struct {
	Op        string
	ChannelID string
	TargetID  string
	Message   messaging.Message
}

// Recorder は送信操作を記録するテスト用のMessenger。
// 各Errフィールドで操作ごとの失敗を注入できる。
type Recorder struct {
	mu    sync.Mutex
	calls []Recorded
	seq   int

	PostErr         error
	ThreadErr       error
	SendErr         error
	ArchiveErr      error
	DeleteErr       func(messageID string) error
	DeleteThreadErr func(threadID string) error
	DirectErr       func(userID string) error
}

var _ messaging.Messenger = (*Recorder)(nil)

func (r *Recorder) record(c Recorded) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *Recorder) next(prefix string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

// Calls は記録された操作のコピーを返す。
func (r *Recorder) Calls() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsOf は指定した操作のみを返す。
func (r *Recorder) CallsOf(op string) []Recorded {
	var out []Recorded
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Post(_ context.Context, channelID string, msg messaging.Message) (string, error) {
	if r.PostErr != nil {
		return "", r.PostErr
	}
	id := r.next("msg")
	r.record(Recorded{Op: "post", ChannelID: channelID, TargetID: id, Message: msg})
	return id, nil
}

func (r *Recorder) StartThread(_ context.Context, channelID, _, title string) (string, error) {
	if r.ThreadErr != nil {
		return "", r.ThreadErr
	}
	id := r.next("thread")
	r.record(Recorded{Op: "thread", ChannelID: channelID, TargetID: id, Message: messaging.Message{Content: title}})
	return id, nil
}

func (r *Recorder) Send(_ context.Context, channelID string, msg messaging.Message) error {
	if r.SendErr != nil {
		return r.SendErr
	}
	r.record(Recorded{Op: "send", ChannelID: channelID, Message: msg})
	return nil
}

func (r *Recorder) ArchiveThread(_ context.Context, threadID string) error {
	if r.ArchiveErr != nil {
		return r.ArchiveErr
	}
	r.record(Recorded{Op: "archive", TargetID: threadID})
	return nil
}

func (r *Recorder) DeleteMessage(_ context.Context, channelID, messageID string) error {
	if r.DeleteErr != nil {
		if err := r.DeleteErr(messageID); err != nil {
			return err
		}
	}
	r.record(Recorded{Op: "delete_message", ChannelID: channelID, TargetID: messageID})
	return nil
}

func (r *Recorder) DeleteThread(_ context.Context, threadID string) error {
	if r.DeleteThreadErr != nil {
		if err := r.DeleteThreadErr(threadID); err != nil {
			return err
		}
	}
	r.record(Recorded{Op: "delete_thread", TargetID: threadID})
	return nil
}

func (r *Recorder) SendDirect(_ context.Context, userID string, msg messaging.Message) error {
	if r.DirectErr != nil {
		if err := r.DirectErr(userID); err != nil {
			return err
		}
	}
	r.record(Recorded{Op: "direct", TargetID: userID, Message: msg})
	return nil
}
