// Package wizard はスクリム募集を作成する複数ステップのウィザードを提供する。
//
// ステップは Entry → BasicInfo → MapSelect → ServerSelect → Publish の順に進む。
// 途中の状態はユーザーごとの下書きとしてセッションストアに保持し、
// 下書きが存在しない状態で途中のステップが呼ばれた場合はセッション切れとして扱う。
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/messaging"
	"github.com/hitoshi/scrimbot/internal/metrics"
	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/notify"
	"github.com/hitoshi/scrimbot/internal/render"
	"github.com/hitoshi/scrimbot/internal/session"
)

// Draft は作成途中のスクリム。
type Draft struct {
	TeamName      string
	Division      string
	ScheduledDate string
	ScheduledTime string
	Maps          string
	HasServer     bool
	ServerChosen  bool
}

// ProfileFinder は保存済みプロフィールを返す。
type ProfileFinder interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
}

// MapLister はマップカタログの名前一覧を返す。
type MapLister interface {
	Names(ctx context.Context) ([]string, error)
}

// ChannelResolver は募集の投稿先チャンネルを返す。未設定の場合は空文字。
type ChannelResolver interface {
	ScrimChannel(ctx context.Context) (string, error)
}

// ScrimCreator はスクリムを永続化する。
type ScrimCreator interface {
	Create(ctx context.Context, scrim *model.Scrim) error
}

// Broadcaster は新しい募集を通知する。
type Broadcaster interface {
	Broadcast(ctx context.Context, s *model.Scrim) notify.Report
}

// PostLimiter はユーザーごとの募集投稿頻度を制限する。
// 枠は投稿が確定したときだけ消費する。
type PostLimiter interface {
	CanPost(userID string) bool
	RecordPost(userID string)
}

// Deps はServiceの依存。
type Deps struct {
	Drafts      *session.Store[Draft]
	Profiles    ProfileFinder
	Maps        MapLister
	Channels    ChannelResolver
	Scrims      ScrimCreator
	Messenger   messaging.Messenger
	Broadcaster Broadcaster
	Limiter     PostLimiter // nilの場合は制限しない
	Metrics     metrics.MetricsCollector
	Logger      *slog.Logger
}

// Service はウィザードの各ステップを実行する。
type Service struct {
	Deps
	now   func() time.Time
	newID func() string
}

// NewService はServiceを生成する。
func NewService(deps Deps) *Service {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	return &Service{
		Deps:  deps,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Start はウィザードを開始する。既存の下書きは破棄する。
// 保存済みプロフィールがあれば返す。ない場合はnil。
func (s *Service) Start(ctx context.Context, userID string) (*model.Profile, error) {
	s.Drafts.Remove(userID)

	p, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// ChooseProfile はフォームの初期値を返す。useがtrueの場合は保存済みプロフィールで埋める。
func (s *Service) ChooseProfile(ctx context.Context, userID string, use bool) (team, division string, err error) {
	if !use {
		return "", "", nil
	}
	p, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return "", "", model.NewProfileNotFoundError()
	}
	return p.TeamName, p.Division, nil
}

// BasicInfo はフォームの入力値。
type BasicInfo struct {
	TeamName      string
	Division      string
	ScheduledDate string
	ScheduledTime string
}

func (b BasicInfo) normalize() BasicInfo {
	return BasicInfo{
		TeamName:      model.NormalizeInput(b.TeamName),
		Division:      model.NormalizeInput(b.Division),
		ScheduledDate: model.NormalizeInput(b.ScheduledDate),
		ScheduledTime: model.NormalizeInput(b.ScheduledTime),
	}
}

func (b BasicInfo) validate() error {
	if err := model.ValidateLength("Team name", b.TeamName, 1, model.MaxTeamNameLen); err != nil {
		return err
	}
	if err := model.ValidateLength("Division", b.Division, 1, model.MaxDivisionLen); err != nil {
		return err
	}
	if b.ScheduledDate == "" {
		return model.NewValidationError("Date is required.")
	}
	if b.ScheduledTime == "" {
		return model.NewValidationError("Time is required.")
	}
	return nil
}

// SubmitBasicInfo は入力を検証して新しい下書きを作成する。
// 既存の下書きとはマージせずに置き換える。検証に失敗した場合は下書きに触れない。
func (s *Service) SubmitBasicInfo(userID string, info BasicInfo) error {
	info = info.normalize()
	if err := info.validate(); err != nil {
		return err
	}
	s.Drafts.Put(userID, Draft{
		TeamName:      info.TeamName,
		Division:      info.Division,
		ScheduledDate: info.ScheduledDate,
		ScheduledTime: info.ScheduledTime,
	})
	return nil
}

// MapChoices はマップ選択の選択肢を返す。
// 1つの選択メニューに載せられる件数ごとに分割する。
// カタログが空の場合はエラーを返し、下書きはそのまま残す。
func (s *Service) MapChoices(ctx context.Context, userID string) ([]render.MapChunk, error) {
	if _, ok := s.Drafts.Get(userID); !ok {
		return nil, model.NewSessionExpiredError()
	}
	names, err := s.Maps.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	if len(names) == 0 {
		return nil, model.NewNoMapsError()
	}
	return chunkMaps(names), nil
}

func chunkMaps(names []string) []render.MapChunk {
	var chunks []render.MapChunk
	for i := 0; i < len(names); i += model.MapChunkSize {
		end := min(i+model.MapChunkSize, len(names))
		opts := names[i:end]
		chunks = append(chunks, render.MapChunk{
			Index:     len(chunks),
			Options:   opts,
			MaxValues: min(len(opts), model.MaxMapsPerScrim),
		})
	}
	return chunks
}

// SelectMaps は選択されたマップを下書きに保存する。
// 重複は順序を保って取り除き、カタログにない名前は拒否する。
func (s *Service) SelectMaps(ctx context.Context, userID string, values []string) error {
	if _, ok := s.Drafts.Get(userID); !ok {
		return model.NewSessionExpiredError()
	}

	selected := dedupe(values)
	if len(selected) == 0 {
		return model.NewValidationError("Please select at least one map.")
	}
	if len(selected) > model.MaxMapsPerScrim {
		return model.NewValidationError(fmt.Sprintf("You can select at most %d maps.", model.MaxMapsPerScrim))
	}

	names, err := s.Maps.Names(ctx)
	if err != nil {
		return fmt.Errorf("failed to list maps: %w", err)
	}
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	for _, v := range selected {
		if !known[v] {
			return model.NewValidationError(fmt.Sprintf("Unknown map %q.", v))
		}
	}

	joined := model.JoinMaps(selected)
	if !s.Drafts.Update(userID, func(d *Draft) { d.Maps = joined }) {
		return model.NewSessionExpiredError()
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SelectServer はサーバー有無を下書きに保存する。マップ選択済みであること。
func (s *Service) SelectServer(userID string, hasServer bool) error {
	var hasMaps bool
	ok := s.Drafts.Update(userID, func(d *Draft) {
		if d.Maps == "" {
			return
		}
		hasMaps = true
		d.HasServer = hasServer
		d.ServerChosen = true
	})
	if !ok || !hasMaps {
		return model.NewSessionExpiredError()
	}
	return nil
}

// Result は公開の結果。
type Result struct {
	Scrim     *model.Scrim
	Broadcast notify.Report
}

// Publish は下書きから募集を投稿・永続化し、下書きを破棄する。
// 投稿枠は永続化まで成功したときだけ消費する。
// 投稿または永続化に失敗した場合は下書きを残し、再試行できるようにする。
// スレッド作成、スレッドへの挨拶、一斉通知はベストエフォート。
func (s *Service) Publish(ctx context.Context, user interaction.User) (*Result, error) {
	d, ok := s.Drafts.Get(user.ID)
	if !ok || d.Maps == "" || !d.ServerChosen {
		return nil, model.NewSessionExpiredError()
	}

	channelID, err := s.Channels.ScrimChannel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scrim channel: %w", err)
	}
	if channelID == "" {
		return nil, model.NewChannelNotConfiguredError()
	}

	if s.Limiter != nil && !s.Limiter.CanPost(user.ID) {
		return nil, model.NewRateLimitedError()
	}

	now := s.now().UTC()
	scrim := &model.Scrim{
		ID:            s.newID(),
		ChannelID:     channelID,
		TeamName:      d.TeamName,
		Division:      d.Division,
		ScheduledDate: d.ScheduledDate,
		ScheduledTime: d.ScheduledTime,
		Maps:          d.Maps,
		HasServer:     d.HasServer,
		OwnerUserID:   user.ID,
		Status:        model.ScrimStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	messageID, err := s.Messenger.Post(ctx, channelID, render.ScrimPosting(scrim, user.DisplayName))
	if err != nil {
		return nil, fmt.Errorf("failed to post scrim: %w", err)
	}
	scrim.MessageID = messageID

	threadID, err := s.Messenger.StartThread(ctx, channelID, messageID, render.ThreadTitle(d.TeamName, d.ScheduledDate))
	if err != nil {
		s.Logger.Warn("failed to start scrim thread",
			slog.String("message_id", messageID),
			slog.String("error", err.Error()),
		)
	}
	scrim.ThreadID = threadID

	if err := s.Scrims.Create(ctx, scrim); err != nil {
		s.compensate(ctx, scrim)
		return nil, fmt.Errorf("failed to save scrim: %w", err)
	}

	if s.Limiter != nil {
		s.Limiter.RecordPost(user.ID)
	}

	if threadID != "" {
		if err := s.Messenger.Send(ctx, threadID, render.ThreadWelcome(d.TeamName)); err != nil {
			s.Logger.Warn("failed to send thread welcome",
				slog.String("thread_id", threadID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.Drafts.Remove(user.ID)
	s.Metrics.RecordScrimPublished()
	s.Logger.Info("scrim published",
		slog.String("scrim_id", scrim.ID),
		slog.String("message_id", messageID),
		slog.String("user_id", user.ID),
	)

	report := s.Broadcaster.Broadcast(ctx, scrim)
	return &Result{Scrim: scrim, Broadcast: report}, nil
}

// compensate は永続化できなかった募集の投稿とスレッドを取り消す。
func (s *Service) compensate(ctx context.Context, scrim *model.Scrim) {
	if scrim.ThreadID != "" {
		if err := s.Messenger.DeleteThread(ctx, scrim.ThreadID); err != nil && !messaging.IsNotFound(err) {
			s.Logger.Error("failed to delete orphan thread",
				slog.String("thread_id", scrim.ThreadID),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := s.Messenger.DeleteMessage(ctx, scrim.ChannelID, scrim.MessageID); err != nil && !messaging.IsNotFound(err) {
		s.Logger.Error("failed to delete orphan posting",
			slog.String("message_id", scrim.MessageID),
			slog.String("error", err.Error()),
		)
	}
}

// Draft は現在の下書きを返す。
func (s *Service) Draft(userID string) (Draft, bool) {
	return s.Drafts.Get(userID)
}
