// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordScrimPublished()
	RecordStatusTransition(status string)
	RecordNotification(result string)
	RecordReaperRun(mode string, cleaned, errors int, duration time.Duration)
	RecordReaperSkipped(mode string)
	RecordInteraction(kind string, outcome string)
	SetActiveSessions(store string, count int)
}

// 通知結果のラベル値
const (
	NotificationDelivered = "delivered"
	NotificationFailed    = "failed"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	scrimsPublished   prometheus.Counter
	statusTransitions *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	reaperRuns        *prometheus.CounterVec
	reaperCleaned     *prometheus.CounterVec
	reaperErrors      *prometheus.CounterVec
	reaperSkipped     *prometheus.CounterVec
	reaperDuration    prometheus.Histogram
	interactions      *prometheus.CounterVec
	activeSessions    *prometheus.GaugeVec
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scrimsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrimbot_scrims_published_total",
			Help: "投稿されたスクリム募集の合計数",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrimbot_status_transitions_total",
			Help: "終端ステータスへの遷移数",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrimbot_notifications_total",
			Help: "DM通知の送信結果別の件数",
		}, []string{"result"}),
		reaperRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrimbot_reaper_runs_total",
			Help: "クリーンアップの実行回数",
		}, []string{"mode"}),
		reaperCleaned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrimbot_reaper_cleaned_total",
			Help: "クリーンアップで回収したスクリム数",
		}, []string{"mode"}),
		reaperErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrimbot_reaper_errors_total",
			Help: "クリーンアップ中に失敗した候補数",
		}, []string{"mode"}),
		reaperSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrimbot_reaper_skipped_total",
			Help: "実行中のためスキップしたクリーンアップ数",
		}, []string{"mode"}),
		reaperDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scrimbot_reaper_duration_seconds",
			Help:    "クリーンアップ1回の所要時間（秒）",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrimbot_interactions_total",
			Help: "処理したイベントの種別・結果別の件数",
		}, []string{"kind", "outcome"}),
		activeSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scrimbot_active_sessions",
			Help: "保持しているセッション数",
		}, []string{"store"}),
	}

	reg.MustRegister(
		c.scrimsPublished,
		c.statusTransitions,
		c.notifications,
		c.reaperRuns,
		c.reaperCleaned,
		c.reaperErrors,
		c.reaperSkipped,
		c.reaperDuration,
		c.interactions,
		c.activeSessions,
	)

	return c
}

// RecordScrimPublished は投稿成功を記録する。
func (c *Collector) RecordScrimPublished() {
	c.scrimsPublished.Inc()
}

// RecordStatusTransition はステータス遷移を記録する。
func (c *Collector) RecordStatusTransition(status string) {
	c.statusTransitions.WithLabelValues(status).Inc()
}

// RecordNotification はDM通知の結果を記録する。
func (c *Collector) RecordNotification(result string) {
	c.notifications.WithLabelValues(result).Inc()
}

// RecordReaperRun はクリーンアップ1回分の結果を記録する。
func (c *Collector) RecordReaperRun(mode string, cleaned, errors int, duration time.Duration) {
	c.reaperRuns.WithLabelValues(mode).Inc()
	c.reaperCleaned.WithLabelValues(mode).Add(float64(cleaned))
	c.reaperErrors.WithLabelValues(mode).Add(float64(errors))
	c.reaperDuration.Observe(duration.Seconds())
}

// RecordReaperSkipped は実行中のためスキップしたことを記録する。
func (c *Collector) RecordReaperSkipped(mode string) {
	c.reaperSkipped.WithLabelValues(mode).Inc()
}

// RecordInteraction はイベント処理の結果を記録する。
func (c *Collector) RecordInteraction(kind string, outcome string) {
	c.interactions.WithLabelValues(kind, outcome).Inc()
}

// SetActiveSessions はセッション数を更新する。
func (c *Collector) SetActiveSessions(store string, count int) {
	c.activeSessions.WithLabelValues(store).Set(float64(count))
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordScrimPublished()                           {}
func (Nop) RecordStatusTransition(string)                   {}
func (Nop) RecordNotification(string)                       {}
func (Nop) RecordReaperRun(string, int, int, time.Duration) {}
func (Nop) RecordReaperSkipped(string)                      {}
func (Nop) RecordInteraction(string, string)                {}
func (Nop) SetActiveSessions(string, int)                   {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
