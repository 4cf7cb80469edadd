// Package notify はスクリムに関する通知とステータス変更を扱う。
// 配信はベストエフォートで、個々の失敗は記録して処理を継続する。
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/messaging"
	"github.com/hitoshi/scrimbot/internal/metrics"
	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/render"
	"github.com/hitoshi/scrimbot/internal/repository"
)

// デフォルト値
const (
	DefaultMaxRecipients = 50
	DefaultRate          = 5
	DefaultArchiveDelay  = 5 * time.Second
)

// ScrimStore は通知とステータス変更に必要なスクリムの永続化操作。
type ScrimStore interface {
	FindActiveByMessageID(ctx context.Context, messageID string) (*model.Scrim, error)
	UpdateStatus(ctx context.Context, messageID string, status model.ScrimStatus) (int64, error)
}

// Config はNotifierの設定。
type Config struct {
	MaxRecipients int           // 一斉通知の最大宛先数
	Rate          rate.Limit    // DM送信の毎秒上限
	Burst         int           // DM送信のバースト数
	ArchiveDelay  time.Duration // 取消後にスレッドをアーカイブするまでの待ち時間
}

// DefaultConfig はデフォルト設定を返す。
func DefaultConfig() Config {
	return Config{
		MaxRecipients: DefaultMaxRecipients,
		Rate:          DefaultRate,
		Burst:         1,
		ArchiveDelay:  DefaultArchiveDelay,
	}
}

// Report は一斉通知の結果。
type Report struct {
	Recipients int
	Delivered  int
	Failed     int
}

// InterestResult は興味表明の結果。
type InterestResult struct {
	Scrim    *model.Scrim
	Notified bool // DMがすべて届いた場合true
}

// Notifier は通知の送信とスクリムのステータス変更を行う。
type Notifier struct {
	scrims    ScrimStore
	alerts    repository.AlertRepository
	messenger messaging.Messenger
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	config    Config
	limiter   *rate.Limiter

	afterFunc func(d time.Duration, f func())
	now       func() time.Time
}

// NewNotifier はNotifierを生成する。
func NewNotifier(
	scrims ScrimStore,
	alerts repository.AlertRepository,
	messenger messaging.Messenger,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	config Config,
) *Notifier {
	if config.MaxRecipients <= 0 {
		config.MaxRecipients = DefaultMaxRecipients
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &Notifier{
		scrims:    scrims,
		alerts:    alerts,
		messenger: messenger,
		metrics:   collector,
		logger:    logger,
		config:    config,
		limiter:   rate.NewLimiter(config.Rate, config.Burst),
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		now:       time.Now,
	}
}

// Recipients は一斉通知の宛先を返す。
// 募集者本人を除外してから上限数で切り詰める。
func (n *Notifier) Recipients(ctx context.Context, ownerID string) ([]string, error) {
	ids, err := n.alerts.ListEnabledUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, min(len(ids), n.config.MaxRecipients))
	for _, id := range ids {
		if id == ownerID {
			continue
		}
		out = append(out, id)
		if len(out) == n.config.MaxRecipients {
			break
		}
	}
	return out, nil
}

// Broadcast は新しい募集を通知受信を有効にしているユーザーへDMで知らせる。
// 失敗は宛先ごとに記録し、残りの宛先への配信を継続する。
func (n *Notifier) Broadcast(ctx context.Context, s *model.Scrim) Report {
	recipients, err := n.Recipients(ctx, s.OwnerUserID)
	if err != nil {
		n.logger.Error("通知宛先の取得に失敗しました",
			slog.String("scrim_id", s.ID),
			slog.String("error", err.Error()),
		)
		return Report{}
	}

	report := Report{Recipients: len(recipients)}
	msg := render.ScrimAlert(s)
	for i, userID := range recipients {
		if err := n.limiter.Wait(ctx); err != nil {
			report.Failed += len(recipients) - i
			n.logger.Warn("一斉通知を中断しました",
				slog.String("scrim_id", s.ID),
				slog.Int("remaining", len(recipients)-i),
				slog.String("error", err.Error()),
			)
			break
		}
		if err := n.messenger.SendDirect(ctx, userID, msg); err != nil {
			report.Failed++
			n.metrics.RecordNotification(metrics.NotificationFailed)
			n.logger.Warn("通知の送信に失敗しました",
				slog.String("scrim_id", s.ID),
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			continue
		}
		report.Delivered++
		n.metrics.RecordNotification(metrics.NotificationDelivered)
	}

	n.logger.Info("一斉通知が完了しました",
		slog.String("scrim_id", s.ID),
		slog.Int("recipients", report.Recipients),
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed),
	)
	return report
}

func (n *Notifier) findActive(ctx context.Context, messageID string) (*model.Scrim, error) {
	s, err := n.scrims.FindActiveByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, model.NewScrimNotActiveError()
	}
	return s, nil
}

// ShowInterest は募集者に興味表明を知らせ、表明したユーザーに確認を送る。
// DMが届かない場合もエラーにはせず、Notified=falseで返す。
func (n *Notifier) ShowInterest(ctx context.Context, messageID string, user interaction.User) (*InterestResult, error) {
	s, err := n.findActive(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if s.OwnerUserID == user.ID {
		return nil, model.NewOwnScrimError()
	}

	result := &InterestResult{Scrim: s, Notified: true}
	if err := n.messenger.SendDirect(ctx, s.OwnerUserID, render.InterestToOwner(s, user, n.now())); err != nil {
		result.Notified = false
	} else if err := n.messenger.SendDirect(ctx, user.ID, render.InterestConfirmation(s)); err != nil {
		result.Notified = false
	}

	if result.Notified {
		n.metrics.RecordNotification(metrics.NotificationDelivered)
	} else {
		n.metrics.RecordNotification(metrics.NotificationFailed)
		n.logger.Warn("興味表明の通知を送信できませんでした",
			slog.String("scrim_id", s.ID),
			slog.String("user_id", user.ID),
		)
	}
	return result, nil
}

// MarkFilled はスクリムを成立済みにする。
func (n *Notifier) MarkFilled(ctx context.Context, messageID string, user interaction.User) (*model.Scrim, error) {
	s, err := n.transition(ctx, messageID, user, model.ScrimStatusFilled, "mark this scrim as filled")
	if err != nil {
		return nil, err
	}
	if s.ThreadID != "" {
		if err := n.messenger.Send(ctx, s.ThreadID, render.FilledNotice()); err != nil {
			n.logger.Warn("スレッドへの通知に失敗しました",
				slog.String("scrim_id", s.ID),
				slog.String("thread_id", s.ThreadID),
				slog.String("error", err.Error()),
			)
		}
	}
	return s, nil
}

// Cancel はスクリムを取り消し、少し待ってからスレッドをアーカイブする。
func (n *Notifier) Cancel(ctx context.Context, messageID string, user interaction.User) (*model.Scrim, error) {
	s, err := n.transition(ctx, messageID, user, model.ScrimStatusCancelled, "cancel this scrim")
	if err != nil {
		return nil, err
	}
	if s.ThreadID == "" {
		return s, nil
	}

	if err := n.messenger.Send(ctx, s.ThreadID, render.CancelledNotice()); err != nil {
		n.logger.Warn("スレッドへの通知に失敗しました",
			slog.String("scrim_id", s.ID),
			slog.String("thread_id", s.ThreadID),
			slog.String("error", err.Error()),
		)
	}

	archiveCtx := context.WithoutCancel(ctx)
	threadID := s.ThreadID
	n.afterFunc(n.config.ArchiveDelay, func() {
		if err := n.messenger.ArchiveThread(archiveCtx, threadID); err != nil {
			n.logger.Warn("スレッドのアーカイブに失敗しました",
				slog.String("thread_id", threadID),
				slog.String("error", err.Error()),
			)
		}
	})
	return s, nil
}

// transition は募集者または管理者による終端状態への遷移を行う。
func (n *Notifier) transition(ctx context.Context, messageID string, user interaction.User, status model.ScrimStatus, verb string) (*model.Scrim, error) {
	s, err := n.findActive(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if s.OwnerUserID != user.ID && !user.Admin {
		return nil, model.NewNotOwnerError(verb)
	}

	affected, err := n.scrims.UpdateStatus(ctx, messageID, status)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, model.NewScrimNotActiveError()
	}

	s.Status = status
	s.UpdatedAt = n.now()
	n.metrics.RecordStatusTransition(string(status))
	n.logger.Info("スクリムのステータスを変更しました",
		slog.String("scrim_id", s.ID),
		slog.String("message_id", messageID),
		slog.String("status", string(status)),
		slog.String("user_id", user.ID),
	)
	return s, nil
}

// SetAlerts は新着通知の受信設定を変更する。
func (n *Notifier) SetAlerts(ctx context.Context, userID string, enabled bool) error {
	if err := n.alerts.Set(ctx, userID, enabled); err != nil {
		return fmt.Errorf("failed to set alert preference: %w", err)
	}
	return nil
}

// AlertsEnabled は新着通知の受信設定を返す。
// 未設定の場合は有効として扱い、explicit=falseを返す。
func (n *Notifier) AlertsEnabled(ctx context.Context, userID string) (enabled, explicit bool, err error) {
	enabled, found, err := n.alerts.Find(ctx, userID)
	if err != nil {
		return false, false, err
	}
	if !found {
		return true, false, nil
	}
	return enabled, true, nil
}
