package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/metrics"
	"github.com/hitoshi/scrimbot/internal/model"
)

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// NewLoggingMiddleware は運用HTTPサーバーのリクエストをJSON構造化ログに出力する。
// ログにはmethod、path、status、duration_msを含む。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http_request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", msSince(start)),
			)
		})
	}
}

// イベント処理結果のラベル値
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Log はイベント処理を構造化ログに出力し、結果をメトリクスに記録する。
// AppErrorはユーザー起因としてWARN、それ以外のエラーはERRORで出力する。
func Log(logger *slog.Logger, collector metrics.MetricsCollector) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
			start := time.Now()
			err := next.Handle(ctx, in, r)

			kind, name := describe(in)
			attrs := []any{
				slog.String("kind", kind),
				slog.String("name", name),
				slog.String("user_id", in.User.ID),
				slog.Float64("duration_ms", msSince(start)),
			}
			if in.MessageID != "" {
				attrs = append(attrs, slog.String("message_id", in.MessageID))
			}

			level, outcome := slog.LevelInfo, OutcomeOK
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				if appErr, ok := model.AsAppError(err); ok {
					level, outcome = slog.LevelWarn, OutcomeRejected
					attrs = append(attrs, slog.String("code", appErr.Code))
				} else {
					level, outcome = slog.LevelError, OutcomeError
				}
			}

			logger.Log(ctx, level, "interaction", attrs...)
			collector.RecordInteraction(kind, outcome)
			return err
		})
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)
}
