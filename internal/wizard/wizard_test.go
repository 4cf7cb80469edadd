package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/messaging/messagingtest"
	"github.com/hitoshi/scrimbot/internal/middleware"
	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/notify"
	"github.com/hitoshi/scrimbot/internal/session"
)

type stubProfiles struct {
	profiles map[string]*model.Profile
}

func (s *stubProfiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return s.profiles[userID], nil
}

type stubMaps struct {
	names []string
	err   error
}

func (s *stubMaps) Names(ctx context.Context) ([]string, error) {
	return s.names, s.err
}

type stubChannel string

func (c stubChannel) ScrimChannel(ctx context.Context) (string, error) {
	return string(c), nil
}

type memoryScrims struct {
	created []*model.Scrim
	err     error
}

func (m *memoryScrims) Create(ctx context.Context, s *model.Scrim) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, s)
	return nil
}

type recordingBroadcaster struct {
	scrims []*model.Scrim
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, s *model.Scrim) notify.Report {
	b.scrims = append(b.scrims, s)
	return notify.Report{Recipients: 2, Delivered: 1, Failed: 1}
}

type fixture struct {
	svc         *Service
	drafts      *session.Store[Draft]
	profiles    *stubProfiles
	maps        *stubMaps
	scrims      *memoryScrims
	rec         *messagingtest.Recorder
	broadcaster *recordingBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		drafts:      session.NewStore[Draft](),
		profiles:    &stubProfiles{profiles: map[string]*model.Profile{}},
		maps:        &stubMaps{names: []string{"Ancient", "Dust2", "Mirage", "Nuke"}},
		scrims:      &memoryScrims{},
		rec:         &messagingtest.Recorder{},
		broadcaster: &recordingBroadcaster{},
	}
	f.svc = NewService(Deps{
		Drafts:      f.drafts,
		Profiles:    f.profiles,
		Maps:        f.maps,
		Channels:    stubChannel("scrim-channel"),
		Scrims:      f.scrims,
		Messenger:   f.rec,
		Broadcaster: f.broadcaster,
		Logger:      slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)),
	})
	f.svc.now = func() time.Time { return time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC) }
	f.svc.newID = func() string { return "scrim-id" }
	return f
}

func alphaInfo() BasicInfo {
	return BasicInfo{TeamName: "Alpha", Division: "Premier", ScheduledDate: "29/08/2025", ScheduledTime: "7:00 PM ACDT"}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := model.AsAppError(err)
	require.True(t, ok, "expected AppError %s, got %v", code, err)
	assert.Equal(t, code, appErr.Code)
}

func TestFullWizard_PublishesScrim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := interaction.User{ID: "user-a", DisplayName: "A"}

	p, err := f.svc.Start(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, f.svc.SubmitBasicInfo(user.ID, alphaInfo()))
	_, err = f.svc.MapChoices(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.SelectMaps(ctx, user.ID, []string{"Mirage", "Dust2"}))
	require.NoError(t, f.svc.SelectServer(user.ID, true))

	_, ok := f.drafts.Get(user.ID)
	require.True(t, ok, "公開直前には下書きが存在する")

	res, err := f.svc.Publish(ctx, user)
	require.NoError(t, err)

	require.Len(t, f.scrims.created, 1)
	s := f.scrims.created[0]
	assert.Equal(t, model.ScrimStatusActive, s.Status)
	assert.Equal(t, "Mirage, Dust2", s.Maps)
	assert.True(t, s.HasServer)
	assert.Equal(t, "Alpha", s.TeamName)
	assert.Equal(t, "7:00 PM ACDT", s.ScheduledTime)
	assert.Equal(t, "user-a", s.OwnerUserID)
	assert.Equal(t, "scrim-channel", s.ChannelID)
	assert.NotEmpty(t, s.MessageID)
	assert.NotEmpty(t, s.ThreadID)

	_, ok = f.drafts.Get(user.ID)
	assert.False(t, ok, "公開後は下書きが存在しない")

	threads := f.rec.CallsOf("thread")
	require.Len(t, threads, 1)
	assert.Equal(t, "Alpha - 29/08/2025", threads[0].Message.Content)

	sends := f.rec.CallsOf("send")
	require.Len(t, sends, 1)
	assert.Equal(t, s.ThreadID, sends[0].ChannelID)

	assert.Equal(t, []*model.Scrim{s}, f.broadcaster.scrims)
	assert.Equal(t, 1, res.Broadcast.Delivered)
}

func TestStart_TwiceDiscardsFirstDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, f.svc.SubmitBasicInfo("u1", alphaInfo()))

	_, err = f.svc.Start(ctx, "u1")
	require.NoError(t, err)
	_, ok := f.drafts.Get("u1")
	assert.False(t, ok, "2回目の開始で最初の下書きは破棄される")

	second := BasicInfo{TeamName: "Bravo", Division: "Open", ScheduledDate: "01/09/2025", ScheduledTime: "20:00"}
	require.NoError(t, f.svc.SubmitBasicInfo("u1", second))
	d, ok := f.drafts.Get("u1")
	require.True(t, ok)
	assert.Equal(t, Draft{TeamName: "Bravo", Division: "Open", ScheduledDate: "01/09/2025", ScheduledTime: "20:00"}, d)
}

func TestStart_ReturnsSavedProfile(t *testing.T) {
	f := newFixture(t)
	f.profiles.profiles["u1"] = &model.Profile{UserID: "u1", TeamName: "Alpha", Division: "Premier"}

	p, err := f.svc.Start(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)

	team, division, err := f.svc.ChooseProfile(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", team)
	assert.Equal(t, "Premier", division)
	assert.Equal(t, 0, f.drafts.Len(), "プロフィール選択では下書きを作らない")

	team, division, err = f.svc.ChooseProfile(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.Empty(t, team+division)
}

func withPostLimit(t *testing.T, f *fixture, perHour int) {
	t.Helper()
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(perHour), slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))
	t.Cleanup(rl.Stop)
	f.svc.Limiter = rl
}

func TestStart_RepeatedEntriesAreNotThrottled(t *testing.T) {
	f := newFixture(t)
	withPostLimit(t, f, 5)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := f.svc.Start(ctx, "u1")
		require.NoError(t, err, "entry %d", i+1)
		require.NoError(t, f.svc.SubmitBasicInfo("u1", alphaInfo()))
	}

	readyDraft(t, f, "u1")
	_, err := f.svc.Publish(ctx, interaction.User{ID: "u1"})
	require.NoError(t, err, "中断したウィザードは投稿枠を消費しない")
}

func TestPublish_RateLimitedKeepsDraft(t *testing.T) {
	f := newFixture(t)
	withPostLimit(t, f, 1)
	ctx := context.Background()
	user := interaction.User{ID: "u1"}

	readyDraft(t, f, "u1")
	_, err := f.svc.Publish(ctx, user)
	require.NoError(t, err)

	readyDraft(t, f, "u1")
	_, err = f.svc.Publish(ctx, user)
	requireCode(t, err, model.ErrCodeRateLimited)

	assert.Len(t, f.rec.CallsOf("post"), 1, "制限中は投稿しない")
	assert.Len(t, f.scrims.created, 1)
	_, ok := f.drafts.Get("u1")
	assert.True(t, ok)

	readyDraft(t, f, "u2")
	_, err = f.svc.Publish(ctx, interaction.User{ID: "u2"})
	assert.NoError(t, err, "別ユーザーは影響を受けない")
}

func TestPublish_FailuresDoNotSpendPostBudget(t *testing.T) {
	f := newFixture(t)
	withPostLimit(t, f, 1)
	ctx := context.Background()
	user := interaction.User{ID: "u1"}
	readyDraft(t, f, "u1")

	f.rec.PostErr = errors.New("discord down")
	_, err := f.svc.Publish(ctx, user)
	require.Error(t, err)

	f.rec.PostErr = nil
	f.scrims.err = errors.New("db down")
	_, err = f.svc.Publish(ctx, user)
	require.Error(t, err)

	f.scrims.err = nil
	_, err = f.svc.Publish(ctx, user)
	require.NoError(t, err)
	assert.Len(t, f.scrims.created, 1)
}

func TestSubmitBasicInfo_Validation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SubmitBasicInfo("u1", alphaInfo()))

	tests := []struct {
		name string
		info BasicInfo
	}{
		{"チーム名が空", BasicInfo{TeamName: "  ", Division: "P", ScheduledDate: "d", ScheduledTime: "t"}},
		{"チーム名が長すぎる", BasicInfo{TeamName: strings.Repeat("a", 51), Division: "P", ScheduledDate: "d", ScheduledTime: "t"}},
		{"ディビジョンが空", BasicInfo{TeamName: "Bravo", ScheduledDate: "d", ScheduledTime: "t"}},
		{"日付が空", BasicInfo{TeamName: "Bravo", Division: "P", ScheduledTime: "t"}},
		{"時刻が空", BasicInfo{TeamName: "Bravo", Division: "P", ScheduledDate: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.SubmitBasicInfo("u1", tt.info)
			requireCode(t, err, model.ErrCodeInvalidInput)

			d, ok := f.drafts.Get("u1")
			require.True(t, ok)
			assert.Equal(t, "Alpha", d.TeamName, "検証エラーでは下書きに触れない")
		})
	}
}

func TestSubmitBasicInfo_FiftyRunesAccepted(t *testing.T) {
	f := newFixture(t)
	info := alphaInfo()
	info.TeamName = strings.Repeat("é", 50)
	assert.NoError(t, f.svc.SubmitBasicInfo("u1", info))
}

func TestMapChoices_EmptyCatalog(t *testing.T) {
	f := newFixture(t)
	f.maps.names = nil
	require.NoError(t, f.svc.SubmitBasicInfo("u1", alphaInfo()))

	_, err := f.svc.MapChoices(context.Background(), "u1")
	requireCode(t, err, model.ErrCodeNoMaps)

	_, ok := f.drafts.Get("u1")
	assert.True(t, ok, "下書きは残る")
	assert.Empty(t, f.scrims.created)
	assert.Empty(t, f.rec.Calls())
}

func TestMapChoices_Chunks(t *testing.T) {
	f := newFixture(t)
	var names []string
	for i := 0; i < 30; i++ {
		names = append(names, fmt.Sprintf("Map%02d", i))
	}
	f.maps.names = names
	require.NoError(t, f.svc.SubmitBasicInfo("u1", alphaInfo()))

	chunks, err := f.svc.MapChoices(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0].Options, 25)
	assert.Equal(t, 10, chunks[0].MaxValues)
	assert.Len(t, chunks[1].Options, 5)
	assert.Equal(t, 5, chunks[1].MaxValues)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestSteps_WithoutDraftAreSessionExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.MapChoices(ctx, "u1")
	requireCode(t, err, model.ErrCodeSessionExpired)

	requireCode(t, f.svc.SelectMaps(ctx, "u1", []string{"Mirage"}), model.ErrCodeSessionExpired)
	requireCode(t, f.svc.SelectServer("u1", true), model.ErrCodeSessionExpired)

	_, err = f.svc.Publish(ctx, interaction.User{ID: "u1"})
	requireCode(t, err, model.ErrCodeSessionExpired)
}

func TestSelectServer_RequiresMaps(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SubmitBasicInfo("u1", alphaInfo()))
	requireCode(t, f.svc.SelectServer("u1", true), model.ErrCodeSessionExpired)
}

func TestSelectMaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.SubmitBasicInfo("u1", alphaInfo()))

	require.NoError(t, f.svc.SelectMaps(ctx, "u1", []string{"Nuke", "Mirage", "Nuke"}))
	d, _ := f.drafts.Get("u1")
	assert.Equal(t, "Nuke, Mirage", d.Maps, "順序を保って重複を除く")

	requireCode(t, f.svc.SelectMaps(ctx, "u1", nil), model.ErrCodeInvalidInput)
	requireCode(t, f.svc.SelectMaps(ctx, "u1", []string{"Train"}), model.ErrCodeInvalidInput)

	var many []string
	for i := 0; i < 11; i++ {
		many = append(many, fmt.Sprintf("M%d", i))
	}
	requireCode(t, f.svc.SelectMaps(ctx, "u1", many), model.ErrCodeInvalidInput)
}

func readyDraft(t *testing.T, f *fixture, userID string) {
	t.Helper()
	require.NoError(t, f.svc.SubmitBasicInfo(userID, alphaInfo()))
	require.NoError(t, f.svc.SelectMaps(context.Background(), userID, []string{"Mirage"}))
	require.NoError(t, f.svc.SelectServer(userID, false))
}

func TestPublish_ChannelNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.svc.Channels = stubChannel("")
	readyDraft(t, f, "u1")

	_, err := f.svc.Publish(context.Background(), interaction.User{ID: "u1"})
	requireCode(t, err, model.ErrCodeChannelNotConfigured)
	_, ok := f.drafts.Get("u1")
	assert.True(t, ok)
}

func TestPublish_PostFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	f.rec.PostErr = errors.New("discord down")
	readyDraft(t, f, "u1")

	_, err := f.svc.Publish(context.Background(), interaction.User{ID: "u1"})
	require.Error(t, err)
	_, isApp := model.AsAppError(err)
	assert.False(t, isApp)

	_, ok := f.drafts.Get("u1")
	assert.True(t, ok, "再試行できるよう下書きを残す")
	assert.Empty(t, f.scrims.created)
	assert.Empty(t, f.broadcaster.scrims)
}

func TestPublish_PersistFailureDeletesPosting(t *testing.T) {
	f := newFixture(t)
	f.scrims.err = errors.New("db down")
	readyDraft(t, f, "u1")

	_, err := f.svc.Publish(context.Background(), interaction.User{ID: "u1"})
	require.Error(t, err)

	assert.Len(t, f.rec.CallsOf("delete_message"), 1)
	assert.Len(t, f.rec.CallsOf("delete_thread"), 1)
	assert.Empty(t, f.rec.CallsOf("send"))
	assert.Empty(t, f.broadcaster.scrims)
	_, ok := f.drafts.Get("u1")
	assert.True(t, ok)
}

func TestPublish_ThreadFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.rec.ThreadErr = errors.New("missing permission")
	readyDraft(t, f, "u1")

	res, err := f.svc.Publish(context.Background(), interaction.User{ID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, res.Scrim.ThreadID)
	assert.Empty(t, f.rec.CallsOf("send"))
	assert.Equal(t, 0, f.drafts.Len())
}

func TestDrafts_AreIsolatedPerUser(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SubmitBasicInfo("u1", alphaInfo()))
	other := alphaInfo()
	other.TeamName = "Bravo"
	require.NoError(t, f.svc.SubmitBasicInfo("u2", other))

	_, err := f.svc.Start(context.Background(), "u2")
	require.NoError(t, err)

	d, ok := f.svc.Draft("u1")
	require.True(t, ok)
	assert.Equal(t, "Alpha", d.TeamName)
}
