package handler

import (
	"context"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/listing"
	"github.com/hitoshi/scrimbot/internal/messaging"
	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/notify"
	"github.com/hitoshi/scrimbot/internal/render"
	"github.com/hitoshi/scrimbot/internal/wizard"
	"github.com/hitoshi/scrimbot/internal/worker/reaper"
)

// WizardService はスクリム作成ウィザードのインターフェース。
type WizardService interface {
	Start(ctx context.Context, userID string) (*model.Profile, error)
	ChooseProfile(ctx context.Context, userID string, use bool) (team, division string, err error)
	SubmitBasicInfo(userID string, info wizard.BasicInfo) error
	MapChoices(ctx context.Context, userID string) ([]render.MapChunk, error)
	SelectMaps(ctx context.Context, userID string, values []string) error
	SelectServer(userID string, hasServer bool) error
	Publish(ctx context.Context, user interaction.User) (*wizard.Result, error)
}

// ScrimActions は投稿済みスクリムへの操作と通知設定のインターフェース。
type ScrimActions interface {
	ShowInterest(ctx context.Context, messageID string, user interaction.User) (*notify.InterestResult, error)
	MarkFilled(ctx context.Context, messageID string, user interaction.User) (*model.Scrim, error)
	Cancel(ctx context.Context, messageID string, user interaction.User) (*model.Scrim, error)
	SetAlerts(ctx context.Context, userID string, enabled bool) error
	AlertsEnabled(ctx context.Context, userID string) (enabled, explicit bool, err error)
}

// CleanupService は期限切れスクリムの手動回収のインターフェース。
type CleanupService interface {
	Preview(ctx context.Context) (*reaper.Preview, error)
	RunOnce(ctx context.Context, mode reaper.Mode) (*reaper.Report, error)
}

// ListingService はスクリム一覧のページ送りのインターフェース。
type ListingService interface {
	Open(ctx context.Context, userID string) (*listing.Page, error)
	Prev(userID string) (*listing.Page, error)
	Next(userID string) (*listing.Page, error)
	Refresh(ctx context.Context, userID string) (*listing.Page, error)
}

// ProfileService は保存済みプロフィールのインターフェース。
type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Save(ctx context.Context, userID, teamName, division string) (*model.Profile, error)
}

// CatalogService はマップカタログのインターフェース。
type CatalogService interface {
	List(ctx context.Context) ([]model.MapEntry, error)
	Add(ctx context.Context, name string) (string, error)
	Remove(ctx context.Context, name string) (string, error)
}

// SettingsService は実行時設定のインターフェース。
type SettingsService interface {
	ScrimChannel(ctx context.Context) (string, error)
	SetScrimChannel(ctx context.Context, channelID string) error
}

// ActiveScrimCounter はアクティブなスクリムを返す。
type ActiveScrimCounter interface {
	ListActive(ctx context.Context) ([]*model.Scrim, error)
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Wizard    WizardService
	Actions   ScrimActions
	Cleanup   CleanupService
	Listing   ListingService
	Profiles  ProfileService
	Catalog   CatalogService
	Settings  SettingsService
	Scrims    ActiveScrimCounter
	Messenger messaging.Messenger
}
