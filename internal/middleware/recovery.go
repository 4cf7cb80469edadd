package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/render"
)

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 500レスポンスを返すHTTPミドルウェアを生成する。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					WriteInternalServerError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Recover はイベント処理中のpanicを回収し、ユーザーに汎用エラーを返す。
// 1件のイベントの失敗がボット全体を止めないようにする。
func Recover(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, in *interaction.Interaction, r interaction.Responder) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					kind, name := describe(in)
					logger.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("kind", kind),
						slog.String("name", name),
						slog.String("user_id", in.User.ID),
						slog.String("stack", string(debug.Stack())),
					)
					// 既に応答済みの場合は失敗するが、それ以上できることはない
					_ = r.Reply(ctx, render.InternalError())
					err = fmt.Errorf("panic: %v", rec)
				}
			}()
			return next.Handle(ctx, in, r)
		})
	}
}
