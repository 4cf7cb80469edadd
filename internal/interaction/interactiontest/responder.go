// Package interactiontest はinteraction.Responderのテスト用実装を提供する。
package interactiontest

import (
	"context"
	"sync"

	"github.com/hitoshi/scrimbot/internal/interaction"
)

// Call はResponderに対する1回の呼び出し。
type Call struct {
	Method   string
	Response interaction.Response
	Modal    interaction.Modal
}

// Responder は応答を記録するinteraction.Responder。
// Errを設定するとすべての呼び出しがそのエラーを返す。
type Responder struct {
	mu    sync.Mutex
	calls []Call
	Err   error
}

var _ interaction.Responder = (*Responder)(nil)

func (r *Responder) add(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.Err
}

func (r *Responder) Reply(_ context.Context, resp interaction.Response) error {
	return r.add(Call{Method: "reply", Response: resp})
}

func (r *Responder) Update(_ context.Context, resp interaction.Response) error {
	return r.add(Call{Method: "update", Response: resp})
}

func (r *Responder) ShowModal(_ context.Context, m interaction.Modal) error {
	return r.add(Call{Method: "modal", Modal: m})
}

func (r *Responder) DeferUpdate(_ context.Context) error {
	return r.add(Call{Method: "defer"})
}

func (r *Responder) EditReply(_ context.Context, resp interaction.Response) error {
	return r.add(Call{Method: "edit", Response: resp})
}

func (r *Responder) FollowUp(_ context.Context, resp interaction.Response) error {
	return r.add(Call{Method: "followup", Response: resp})
}

// Calls は記録された呼び出しのコピーを返す。
func (r *Responder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Last は最後の呼び出しを返す。呼び出しがない場合はゼロ値を返す。
func (r *Responder) Last() Call {
	calls := r.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

// Methods は呼び出されたメソッド名を順に返す。
func (r *Responder) Methods() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}
