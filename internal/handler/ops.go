package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/scrimbot/internal/metrics"
	"github.com/hitoshi/scrimbot/internal/middleware"
)

// HealthChecker は依存先の疎通を確認する。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// OpsDeps はNewOpsRouterに必要な依存関係をまとめた構造体。
type OpsDeps struct {
	DB       HealthChecker
	Gateway  HealthChecker // nilの場合は確認しない
	Gatherer prometheus.Gatherer
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Gateway  string `json:"gateway,omitempty"`
}

// NewOpsRouter は運用向けHTTPエンドポイントのルーティングを構成したchi.Routerを返す。
//
//	GET /health  - DBとゲートウェイの疎通
//	GET /metrics - Prometheusメトリクス
func NewOpsRouter(deps OpsDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	r.Get("/health", healthHandler(deps))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	return r
}

func healthHandler(deps OpsDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Database: "ok"}
		status := http.StatusOK
		if err := deps.DB.PingContext(ctx); err != nil {
			resp.Status, resp.Database = "unavailable", "unreachable"
			status = http.StatusServiceUnavailable
		}
		if deps.Gateway != nil {
			resp.Gateway = "ok"
			if err := deps.Gateway.PingContext(ctx); err != nil {
				resp.Status, resp.Gateway = "unavailable", "disconnected"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
