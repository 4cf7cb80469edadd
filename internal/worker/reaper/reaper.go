// Package reaper は期限切れスクリムの回収ジョブを提供する。
//
// activeのまま放置された募集の投稿とスレッドを削除し、ステータスを終端状態へ遷移させる。
// プラットフォーム側で既に削除済みの投稿は成功として扱い、永続化側の状態を正とする。
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/hitoshi/scrimbot/internal/messaging"
	"github.com/hitoshi/scrimbot/internal/metrics"
	"github.com/hitoshi/scrimbot/internal/model"
)

// ErrAlreadyRunning は回収処理が既に実行中であることを表す。
var ErrAlreadyRunning = errors.New("reaper: already running")

// Mode は回収処理の起動方法。遷移先のステータスが異なる。
type Mode string

const (
	// ModeAuto は定期実行。auto_cleanedへ遷移する。
	ModeAuto Mode = "auto"
	// ModeManual は管理者による手動実行。cleanedへ遷移する。
	ModeManual Mode = "manual"
)

// Status は遷移先のステータスを返す。
func (m Mode) Status() model.ScrimStatus {
	if m == ModeManual {
		return model.ScrimStatusCleaned
	}
	return model.ScrimStatusAutoCleaned
}

// デフォルト値
const (
	DefaultSchedule     = "0 */6 * * *"
	DefaultStartupDelay = 30 * time.Second
	DefaultPacing       = time.Second
)

// ScrimStore は回収処理に必要なスクリムの永続化操作。
type ScrimStore interface {
	FindActiveByMessageID(ctx context.Context, messageID string) (*model.Scrim, error)
	ListActive(ctx context.Context) ([]*model.Scrim, error)
	ListExpired(ctx context.Context, now time.Time, staleAfter time.Duration) ([]*model.Scrim, error)
	UpdateStatus(ctx context.Context, messageID string, status model.ScrimStatus) (int64, error)
}

// Config はReaperの設定。
type Config struct {
	Schedule     string        // cron式または "@every 6h" 形式
	StartupDelay time.Duration // 起動後の初回実行までの待ち時間
	Pacing       time.Duration // 候補ごとの処理間隔
	StaleAfter   time.Duration // 作成からこの期間を過ぎたactiveスクリムを回収する
}

// DefaultConfig はデフォルト設定を返す。
func DefaultConfig() Config {
	return Config{
		Schedule:     DefaultSchedule,
		StartupDelay: DefaultStartupDelay,
		Pacing:       DefaultPacing,
		StaleAfter:   model.DefaultStaleAfter,
	}
}

// Report は1回の回収処理の結果。
type Report struct {
	Candidates int
	Cleaned    int
	Skipped    int // 処理中に他の操作で終端状態になったもの
	Errors     int
	// ArtifactErrors は投稿・スレッドの削除に失敗した件数。
	// 削除に失敗してもステータスは遷移させるため、Cleanedにも含まれる。
	ArtifactErrors int
	Duration       time.Duration
}

// Preview は手動回収の確認画面に表示する件数。
type Preview struct {
	Active  int
	Expired []*model.Scrim
}

// Reaper は期限切れスクリムを回収する。同時に実行される回収処理は常に1つまで。
type Reaper struct {
	scrims    ScrimStore
	messenger messaging.Messenger
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	config    Config

	running atomic.Bool
	now     func() time.Time
}

// New はReaperを生成する。
func New(scrims ScrimStore, messenger messaging.Messenger, collector metrics.MetricsCollector, logger *slog.Logger, config Config) *Reaper {
	if config.Schedule == "" {
		config.Schedule = DefaultSchedule
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = model.DefaultStaleAfter
	}
	return &Reaper{
		scrims:    scrims,
		messenger: messenger,
		metrics:   collector,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// ParseSchedule はcron式を検証する。標準の5フィールド形式と "@every" などの記述子を受け付ける。
func ParseSchedule(expr string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", expr, err)
	}
	return s, nil
}

// Running は回収処理が実行中かどうかを返す。
func (r *Reaper) Running() bool {
	return r.running.Load()
}

// Start はスケジュールに従って回収処理を定期実行する。
// 起動からStartupDelay後に1回実行し、ctxがキャンセルされるまで継続する。
func (r *Reaper) Start(ctx context.Context) error {
	schedule, err := ParseSchedule(r.config.Schedule)
	if err != nil {
		return err
	}

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() { r.runScheduled(ctx) }))
	c.Start()

	r.logger.Info("クリーンアップスケジューラを開始しました",
		slog.String("schedule", r.config.Schedule),
		slog.Duration("startup_delay", r.config.StartupDelay),
	)

	startup := time.NewTimer(r.config.StartupDelay)
	defer startup.Stop()

	for {
		select {
		case <-ctx.Done():
			<-c.Stop().Done()
			r.logger.Info("クリーンアップスケジューラを停止しました")
			return nil
		case <-startup.C:
			r.runScheduled(ctx)
		}
	}
}

func (r *Reaper) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := r.RunOnce(ctx, ModeAuto); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		r.logger.Error("クリーンアップの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}

// Preview は手動回収の前に現在のactive件数と回収対象を返す。
func (r *Reaper) Preview(ctx context.Context) (*Preview, error) {
	active, err := r.scrims.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	expired, err := r.scrims.ListExpired(ctx, r.now(), r.config.StaleAfter)
	if err != nil {
		return nil, err
	}
	return &Preview{Active: len(active), Expired: expired}, nil
}

// RunOnce は回収処理を1回実行する。
// 既に実行中の場合はストアに一切触れずにErrAlreadyRunningを返す。
// 候補は1件ずつ順番に処理し、個別の失敗は件数に数えて残りの処理を継続する。
func (r *Reaper) RunOnce(ctx context.Context, mode Mode) (*Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.metrics.RecordReaperSkipped(string(mode))
		r.logger.Info("クリーンアップは実行中のためスキップします",
			slog.String("mode", string(mode)),
		)
		return nil, ErrAlreadyRunning
	}
	defer r.running.Store(false)

	start := time.Now()
	candidates, err := r.scrims.ListExpired(ctx, r.now(), r.config.StaleAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired scrims: %w", err)
	}

	report := &Report{Candidates: len(candidates)}
	if len(candidates) == 0 {
		report.Duration = time.Since(start)
		r.logger.Info("クリーンアップ対象のスクリムはありません",
			slog.String("mode", string(mode)),
		)
		r.metrics.RecordReaperRun(string(mode), 0, 0, report.Duration)
		return report, nil
	}

	r.logger.Info("クリーンアップを開始します",
		slog.String("mode", string(mode)),
		slog.Int("candidate_count", len(candidates)),
	)

	limiter := rate.NewLimiter(r.pacing(), 1)
	for i, s := range candidates {
		if err := limiter.Wait(ctx); err != nil {
			report.Errors += len(candidates) - i
			r.logger.Warn("クリーンアップを中断しました",
				slog.Int("remaining", len(candidates)-i),
				slog.String("error", err.Error()),
			)
			break
		}
		res, err := r.reap(ctx, s, mode.Status())
		report.ArtifactErrors += res.artifactErrors
		switch {
		case err != nil:
			report.Errors++
			r.logger.Error("スクリムの回収に失敗しました",
				slog.String("scrim_id", s.ID),
				slog.String("message_id", s.MessageID),
				slog.String("error", err.Error()),
			)
		case res.skipped:
			report.Skipped++
			r.logger.Info("回収中に状態が変わったためスキップしました",
				slog.String("scrim_id", s.ID),
				slog.String("message_id", s.MessageID),
			)
		default:
			report.Cleaned++
		}
	}

	report.Duration = time.Since(start)
	r.metrics.RecordReaperRun(string(mode), report.Cleaned, report.Errors, report.Duration)
	r.logger.Info("クリーンアップが完了しました",
		slog.String("mode", string(mode)),
		slog.Int("candidate_count", report.Candidates),
		slog.Int("cleaned_count", report.Cleaned),
		slog.Int("skipped_count", report.Skipped),
		slog.Int("error_count", report.Errors),
		slog.Int("artifact_error_count", report.ArtifactErrors),
		slog.Float64("duration_ms", float64(report.Duration.Milliseconds())),
	)
	return report, nil
}

func (r *Reaper) pacing() rate.Limit {
	if r.config.Pacing <= 0 {
		return rate.Inf
	}
	return rate.Every(r.config.Pacing)
}

type reapResult struct {
	skipped        bool
	artifactErrors int
}

// reap は1件のスクリムを回収する。
// 削除の直前にactiveであることを確認し、既に終端状態なら何も削除しない。
// 投稿とスレッドの削除失敗は件数に数えるのみで、ステータス遷移は必ず試みる。
func (r *Reaper) reap(ctx context.Context, candidate *model.Scrim, status model.ScrimStatus) (reapResult, error) {
	var res reapResult
	s, err := r.scrims.FindActiveByMessageID(ctx, candidate.MessageID)
	if err != nil {
		return res, err
	}
	if s == nil {
		res.skipped = true
		return res, nil
	}

	if err := r.messenger.DeleteMessage(ctx, s.ChannelID, s.MessageID); err != nil && !messaging.IsNotFound(err) {
		res.artifactErrors++
		r.logger.Warn("投稿の削除に失敗しました",
			slog.String("message_id", s.MessageID),
			slog.String("error", err.Error()),
		)
	}
	if s.ThreadID != "" {
		if err := r.messenger.DeleteThread(ctx, s.ThreadID); err != nil && !messaging.IsNotFound(err) {
			res.artifactErrors++
			r.logger.Warn("スレッドの削除に失敗しました",
				slog.String("thread_id", s.ThreadID),
				slog.String("error", err.Error()),
			)
		}
	}

	affected, err := r.scrims.UpdateStatus(ctx, s.MessageID, status)
	if err != nil {
		return res, err
	}
	if affected == 0 {
		res.skipped = true
		return res, nil
	}
	r.metrics.RecordStatusTransition(string(status))
	return res, nil
}
