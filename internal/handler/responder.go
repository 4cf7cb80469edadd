package handler

import (
	"context"
	"sync"

	"github.com/hitoshi/scrimbot/internal/interaction"
)

type ackState int

const (
	ackNone ackState = iota
	ackReplied
	ackUpdated
	ackDeferred
	ackModal
)

// trackingResponder は最初の応答の種類を記録する。
// エラー応答を送るときに、まだ応答していなければReply、
// 更新や保留の後ならEditReply、それ以外はFollowUpを使う。
type trackingResponder struct {
	interaction.Responder

	mu    sync.Mutex
	state ackState
}

func (t *trackingResponder) mark(s ackState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == ackNone {
		t.state = s
	}
}

func (t *trackingResponder) Reply(ctx context.Context, resp interaction.Response) error {
	err := t.Responder.Reply(ctx, resp)
	if err == nil {
		t.mark(ackReplied)
	}
	return err
}

func (t *trackingResponder) Update(ctx context.Context, resp interaction.Response) error {
	err := t.Responder.Update(ctx, resp)
	if err == nil {
		t.mark(ackUpdated)
	}
	return err
}

func (t *trackingResponder) DeferUpdate(ctx context.Context) error {
	err := t.Responder.DeferUpdate(ctx)
	if err == nil {
		t.mark(ackDeferred)
	}
	return err
}

func (t *trackingResponder) ShowModal(ctx context.Context, modal interaction.Modal) error {
	err := t.Responder.ShowModal(ctx, modal)
	if err == nil {
		t.mark(ackModal)
	}
	return err
}

func (t *trackingResponder) respond(ctx context.Context, resp interaction.Response) error {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	switch state {
	case ackNone:
		return t.Reply(ctx, resp)
	case ackUpdated, ackDeferred:
		return t.EditReply(ctx, resp)
	default:
		return t.FollowUp(ctx, resp)
	}
}
