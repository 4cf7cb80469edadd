// Package middleware はイベント処理と運用HTTPサーバーに共通の横断処理を提供する。
package middleware

import (
	"context"

	"github.com/hitoshi/scrimbot/internal/interaction"
)

// Handler はプラットフォーム非依存のイベントハンドラー。
// 返すエラーはログとメトリクスのためのもので、ユーザーへの応答は済んでいる前提。
type Handler interface {
	Handle(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error
}

// HandlerFunc は関数をHandlerとして扱うアダプタ。
type HandlerFunc func(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error

// Handle はf自身を呼び出す。
func (f HandlerFunc) Handle(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	return f(ctx, in, r)
}

// Middleware はHandlerをラップする。
type Middleware func(next Handler) Handler

// Chain はミドルウェアを適用する。先頭のミドルウェアが最も外側になる。
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// describe はログ用にイベントの種別と名前を返す。
func describe(in *interaction.Interaction) (kind, name string) {
	switch in.Kind {
	case interaction.KindCommand:
		name = string(in.Command.Name)
		if in.Command.Subcommand != "" {
			name += " " + in.Command.Subcommand
		}
		return "command", name
	case interaction.KindModal:
		return "modal", in.Action.Kind.String()
	default:
		return "component", in.Action.Kind.String()
	}
}
