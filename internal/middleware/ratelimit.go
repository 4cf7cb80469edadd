package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/render"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // イベント全般のレート（件/秒）
	GeneralBurst    int           // イベント全般のバーストサイズ
	PostRate        rate.Limit    // スクリム投稿のレート（件/秒）
	PostBurst       int           // スクリム投稿のバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// イベント全般 60件/分/ユーザー、スクリム投稿 postsPerHour件/時/ユーザー。
func DefaultRateLimiterConfig(postsPerHour int) RateLimiterConfig {
	if postsPerHour < 1 {
		postsPerHour = 1
	}
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(60.0 / 60.0),
		GeneralBurst:    20,
		PostRate:        rate.Limit(float64(postsPerHour) / 3600.0),
		PostBurst:       postsPerHour,
		CleanupInterval: 5 * time.Minute,
	}
}

// userLimiter はユーザーごとのレートリミッターとアクセス時刻を保持する。
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet は1種類のレート制限についてユーザーごとのリミッターを管理する。
type limiterSet struct {
	mu       sync.RWMutex
	limiters map[string]*userLimiter
	limit    rate.Limit
	burst    int
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{limiters: make(map[string]*userLimiter), limit: limit, burst: burst}
}

// get はユーザーのリミッターを取得または作成する。
func (s *limiterSet) get(userID string) *rate.Limiter {
	s.mu.RLock()
	ul, exists := s.limiters[userID]
	s.mu.RUnlock()

	if exists {
		s.mu.Lock()
		ul.lastAccess = time.Now()
		s.mu.Unlock()
		return ul.limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// ダブルチェック
	if ul, exists := s.limiters[userID]; exists {
		ul.lastAccess = time.Now()
		return ul.limiter
	}

	limiter := rate.NewLimiter(s.limit, s.burst)
	s.limiters[userID] = &userLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

func (s *limiterSet) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

func (s *limiterSet) evict(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, ul := range s.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(s.limiters, userID)
		}
	}
}

// RateLimiter はユーザーごとのレート制限を管理する。
// イベント全般のレート制限とスクリム投稿のレート制限の2種類を提供する。
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterSet
	post    *limiterSet
	logger  *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		general: newLimiterSet(config.GeneralRate, config.GeneralBurst),
		post:    newLimiterSet(config.PostRate, config.PostBurst),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。複数回呼んでもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware はイベント全般のレート制限ミドルウェアを返す。
// 上限を超えたイベントはハンドラーに渡さずに拒否する。
func (rl *RateLimiter) Middleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
			if !rl.general.get(in.User.ID).Allow() {
				rl.logger.Warn("rate limit exceeded",
					slog.String("user_id", in.User.ID),
					slog.String("limit_type", "general"),
				)
				appErr := model.NewTooManyRequestsError()
				_ = r.Reply(ctx, render.Error(appErr))
				return appErr
			}
			return next.Handle(ctx, in, r)
		})
	}
}

// CanPost はユーザーにスクリム投稿の枠が残っているかを判定する。トークンは消費しない。
func (rl *RateLimiter) CanPost(userID string) bool {
	if rl.post.get(userID).Tokens() >= 1 {
		return true
	}
	rl.logger.Warn("rate limit exceeded",
		slog.String("user_id", userID),
		slog.String("limit_type", "scrim_post"),
	)
	return false
}

// RecordPost は確定したスクリム投稿1件分のトークンを消費する。
func (rl *RateLimiter) RecordPost(userID string) {
	rl.post.get(userID).Allow()
}

// GeneralLimiterCount は現在管理されているイベント全般リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.len()
}

// PostLimiterCount は現在管理されている投稿リミッターのエントリ数を返す。
func (rl *RateLimiter) PostLimiterCount() int {
	return rl.post.len()
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻からの経過がttlを超えたエントリを削除する。
// 投稿リミッターは補充に時間がかかるため、トークンが満タンに戻るまで保持する。
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.general.evict(now, rl.config.CleanupInterval*2)
	rl.post.evict(now, refillDuration(rl.config.PostRate, rl.config.PostBurst))
}

// refillDuration はバーストが空から満タンに戻るまでの時間を返す。
func refillDuration(r rate.Limit, burst int) time.Duration {
	if r <= 0 || r == rate.Inf {
		return 0
	}
	return time.Duration(float64(burst) / float64(r) * float64(time.Second))
}
