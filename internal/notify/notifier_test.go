package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/messaging"
	"github.com/hitoshi/scrimbot/internal/messaging/messagingtest"
	"github.com/hitoshi/scrimbot/internal/metrics"
	"github.com/hitoshi/scrimbot/internal/model"
)

// memoryScrims はテスト用のインメモリScrimStore。
type memoryScrims struct {
	mu     sync.Mutex
	scrims map[string]*model.Scrim
}

func newMemoryScrims(scrims ...*model.Scrim) *memoryScrims {
	m := &memoryScrims{scrims: map[string]*model.Scrim{}}
	for _, s := range scrims {
		m.scrims[s.MessageID] = s
	}
	return m
}

func (m *memoryScrims) FindActiveByMessageID(ctx context.Context, messageID string) (*model.Scrim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scrims[messageID]
	if !ok || s.Status != model.ScrimStatusActive {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memoryScrims) UpdateStatus(ctx context.Context, messageID string, status model.ScrimStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scrims[messageID]
	if !ok || s.Status != model.ScrimStatusActive {
		return 0, nil
	}
	s.Status = status
	return 1, nil
}

func (m *memoryScrims) status(messageID string) model.ScrimStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scrims[messageID].Status
}

// memoryAlerts はテスト用のインメモリAlertRepository。
type memoryAlerts struct {
	order []string
	prefs map[string]bool
	err   error
}

func newMemoryAlerts() *memoryAlerts {
	return &memoryAlerts{prefs: map[string]bool{}}
}

func (m *memoryAlerts) Set(ctx context.Context, userID string, enabled bool) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.prefs[userID]; !ok {
		m.order = append(m.order, userID)
	}
	m.prefs[userID] = enabled
	return nil
}

func (m *memoryAlerts) Find(ctx context.Context, userID string) (bool, bool, error) {
	if m.err != nil {
		return false, false, m.err
	}
	enabled, ok := m.prefs[userID]
	return enabled, ok, nil
}

func (m *memoryAlerts) ListEnabledUserIDs(ctx context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for _, id := range m.order {
		if m.prefs[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func activeScrim() *model.Scrim {
	return &model.Scrim{
		ID:          "scrim-1",
		MessageID:   "msg-1",
		ChannelID:   "chan-1",
		ThreadID:    "thread-1",
		TeamName:    "Alpha",
		Division:    "Premier",
		Maps:        "Mirage, Dust2",
		OwnerUserID: "owner",
		Status:      model.ScrimStatusActive,
	}
}

type fixture struct {
	notifier *Notifier
	scrims   *memoryScrims
	alerts   *memoryAlerts
	rec      *messagingtest.Recorder
	delayed  []func()
	delays   []time.Duration
}

func newFixture(t *testing.T, scrims ...*model.Scrim) *fixture {
	t.Helper()
	f := &fixture{
		scrims: newMemoryScrims(scrims...),
		alerts: newMemoryAlerts(),
		rec:    &messagingtest.Recorder{},
	}
	cfg := DefaultConfig()
	cfg.Rate = rate.Inf
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	f.notifier = NewNotifier(f.scrims, f.alerts, f.rec, metrics.Nop{}, logger, cfg)
	f.notifier.afterFunc = func(d time.Duration, fn func()) {
		f.delays = append(f.delays, d)
		f.delayed = append(f.delayed, fn)
	}
	return f
}

func TestRecipients_ExcludesOwnerBeforeCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.alerts.Set(ctx, "owner", true))
	for i := 0; i < 60; i++ {
		require.NoError(t, f.alerts.Set(ctx, fmt.Sprintf("user-%02d", i), true))
	}

	got, err := f.notifier.Recipients(ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, got, DefaultMaxRecipients)
	assert.NotContains(t, got, "owner")
	assert.Equal(t, "user-00", got[0])
	assert.Equal(t, "user-49", got[49], "本人を除外してから50件に切り詰めること")
}

func TestRecipients_SkipsDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.alerts.Set(ctx, "a", true))
	require.NoError(t, f.alerts.Set(ctx, "b", false))

	got, err := f.notifier.Recipients(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestBroadcast_PartialFailureContinues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"owner", "a", "b", "c"} {
		require.NoError(t, f.alerts.Set(ctx, id, true))
	}
	f.rec.DirectErr = func(userID string) error {
		if userID == "b" {
			return messaging.ErrUnreachable
		}
		return nil
	}

	report := f.notifier.Broadcast(ctx, activeScrim())

	assert.Equal(t, Report{Recipients: 3, Delivered: 2, Failed: 1}, report)
	var sent []string
	for _, c := range f.rec.CallsOf("direct") {
		sent = append(sent, c.TargetID)
	}
	assert.Equal(t, []string{"a", "c"}, sent)
}

func TestBroadcast_StoreErrorSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.alerts.err = errors.New("db down")

	report := f.notifier.Broadcast(context.Background(), activeScrim())
	assert.Equal(t, Report{}, report)
	assert.Empty(t, f.rec.Calls())
}

func TestBroadcast_CancelledContextStops(t *testing.T) {
	f := newFixture(t)
	f.notifier.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	ctx, cancel := context.WithCancel(context.Background())
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, f.alerts.Set(ctx, id, true))
	}
	cancel()

	report := f.notifier.Broadcast(ctx, activeScrim())
	assert.Equal(t, 3, report.Recipients)
	assert.Equal(t, 3, report.Failed+report.Delivered)
	assert.LessOrEqual(t, report.Delivered, 1)
}

func TestShowInterest(t *testing.T) {
	signaler := interaction.User{ID: "bravo", DisplayName: "Bravo"}

	t.Run("募集者と表明者にDMを送る", func(t *testing.T) {
		f := newFixture(t, activeScrim())
		res, err := f.notifier.ShowInterest(context.Background(), "msg-1", signaler)
		require.NoError(t, err)
		assert.True(t, res.Notified)

		direct := f.rec.CallsOf("direct")
		require.Len(t, direct, 2)
		assert.Equal(t, "owner", direct[0].TargetID)
		assert.Equal(t, "bravo", direct[1].TargetID)
	})

	t.Run("DM失敗はエラーにしない", func(t *testing.T) {
		f := newFixture(t, activeScrim())
		f.rec.DirectErr = func(string) error { return messaging.ErrUnreachable }

		res, err := f.notifier.ShowInterest(context.Background(), "msg-1", signaler)
		require.NoError(t, err)
		assert.False(t, res.Notified)
	})

	t.Run("自分の募集は拒否", func(t *testing.T) {
		f := newFixture(t, activeScrim())
		_, err := f.notifier.ShowInterest(context.Background(), "msg-1", interaction.User{ID: "owner"})
		appErr, ok := model.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, model.ErrCodeOwnScrim, appErr.Code)
		assert.Empty(t, f.rec.Calls())
	})

	t.Run("終了済みの募集は拒否", func(t *testing.T) {
		s := activeScrim()
		s.Status = model.ScrimStatusFilled
		f := newFixture(t, s)
		_, err := f.notifier.ShowInterest(context.Background(), "msg-1", signaler)
		appErr, ok := model.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, model.ErrCodeScrimNotActive, appErr.Code)
	})
}

func TestMarkFilled(t *testing.T) {
	f := newFixture(t, activeScrim())

	s, err := f.notifier.MarkFilled(context.Background(), "msg-1", interaction.User{ID: "owner"})
	require.NoError(t, err)
	assert.Equal(t, model.ScrimStatusFilled, s.Status)
	assert.Equal(t, model.ScrimStatusFilled, f.scrims.status("msg-1"))

	sends := f.rec.CallsOf("send")
	require.Len(t, sends, 1)
	assert.Equal(t, "thread-1", sends[0].ChannelID)
	assert.Empty(t, f.delayed, "成立ではアーカイブしない")

	_, err = f.notifier.MarkFilled(context.Background(), "msg-1", interaction.User{ID: "owner"})
	appErr, ok := model.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrCodeScrimNotActive, appErr.Code)
}

func TestTransition_RequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t, activeScrim())

	_, err := f.notifier.Cancel(context.Background(), "msg-1", interaction.User{ID: "stranger"})
	appErr, ok := model.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrCodeNotOwner, appErr.Code)
	assert.Equal(t, model.ScrimStatusActive, f.scrims.status("msg-1"))

	_, err = f.notifier.Cancel(context.Background(), "msg-1", interaction.User{ID: "mod", Admin: true})
	require.NoError(t, err)
	assert.Equal(t, model.ScrimStatusCancelled, f.scrims.status("msg-1"))
}

func TestCancel_ArchivesThreadAfterDelay(t *testing.T) {
	f := newFixture(t, activeScrim())

	_, err := f.notifier.Cancel(context.Background(), "msg-1", interaction.User{ID: "owner"})
	require.NoError(t, err)

	require.Len(t, f.delayed, 1)
	assert.Equal(t, DefaultArchiveDelay, f.delays[0])
	assert.Empty(t, f.rec.CallsOf("archive"), "遅延前にはアーカイブしない")

	f.delayed[0]()
	archived := f.rec.CallsOf("archive")
	require.Len(t, archived, 1)
	assert.Equal(t, "thread-1", archived[0].TargetID)
}

func TestCancel_ThreadNoticeFailureIsBestEffort(t *testing.T) {
	f := newFixture(t, activeScrim())
	f.rec.SendErr = errors.New("missing access")

	s, err := f.notifier.Cancel(context.Background(), "msg-1", interaction.User{ID: "owner"})
	require.NoError(t, err)
	assert.Equal(t, model.ScrimStatusCancelled, s.Status)
}

func TestAlertsEnabled_DefaultsToEnabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enabled, explicit, err := f.notifier.AlertsEnabled(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.False(t, explicit)

	require.NoError(t, f.notifier.SetAlerts(ctx, "u1", false))
	enabled, explicit, err = f.notifier.AlertsEnabled(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.True(t, explicit)

	recipients, err := f.notifier.Recipients(ctx, "owner")
	require.NoError(t, err)
	assert.Empty(t, recipients, "未設定のユーザーには一斉通知しない")
}
