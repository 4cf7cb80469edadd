package session

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable は期限切れセッションを削除できるストア。
type Sweepable interface {
	Sweep(olderThan time.Duration) int
	Len() int
}

// Sweeper は複数のストアを定期的に掃除する。
type Sweeper struct {
	stores   map[string]Sweepable
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	onSweep  func(name string, remaining int)
}

// NewSweeper はSweeperを生成する。onSweepは掃除後の残件数の通知に使う（nil可）。
func NewSweeper(stores map[string]Sweepable, ttl, interval time.Duration, logger *slog.Logger, onSweep func(name string, remaining int)) *Sweeper {
	return &Sweeper{
		stores:   stores,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		onSweep:  onSweep,
	}
}

// SweepOnce はすべてのストアを1回掃除し、削除件数の合計を返す。
func (s *Sweeper) SweepOnce() int {
	total := 0
	for name, store := range s.stores {
		removed := store.Sweep(s.ttl)
		total += removed
		if removed > 0 {
			s.logger.Info("期限切れセッションを削除しました",
				slog.String("store", name),
				slog.Int("removed", removed),
			)
		}
		if s.onSweep != nil {
			s.onSweep(name, store.Len())
		}
	}
	return total
}

// Start はctxがキャンセルされるまでinterval間隔で掃除を行う。
// TTLまたはintervalが0以下の場合は即座に戻る。
func (s *Sweeper) Start(ctx context.Context) {
	if s.ttl <= 0 || s.interval <= 0 {
		s.logger.Info("セッション掃除は無効化されています")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}
