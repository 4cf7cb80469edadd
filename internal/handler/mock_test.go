package handler

import (
	"context"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/listing"
	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/notify"
	"github.com/hitoshi/scrimbot/internal/render"
	"github.com/hitoshi/scrimbot/internal/wizard"
	"github.com/hitoshi/scrimbot/internal/worker/reaper"
)

type mockWizard struct {
	startFn           func(ctx context.Context, userID string) (*model.Profile, error)
	chooseProfileFn   func(ctx context.Context, userID string, use bool) (string, string, error)
	submitBasicInfoFn func(userID string, info wizard.BasicInfo) error
	mapChoicesFn      func(ctx context.Context, userID string) ([]render.MapChunk, error)
	selectMapsFn      func(ctx context.Context, userID string, values []string) error
	selectServerFn    func(userID string, hasServer bool) error
	publishFn         func(ctx context.Context, user interaction.User) (*wizard.Result, error)
}

func (m *mockWizard) Start(ctx context.Context, userID string) (*model.Profile, error) {
	return m.startFn(ctx, userID)
}

func (m *mockWizard) ChooseProfile(ctx context.Context, userID string, use bool) (string, string, error) {
	return m.chooseProfileFn(ctx, userID, use)
}

func (m *mockWizard) SubmitBasicInfo(userID string, info wizard.BasicInfo) error {
	return m.submitBasicInfoFn(userID, info)
}

func (m *mockWizard) MapChoices(ctx context.Context, userID string) ([]render.MapChunk, error) {
	return m.mapChoicesFn(ctx, userID)
}

func (m *mockWizard) SelectMaps(ctx context.Context, userID string, values []string) error {
	return m.selectMapsFn(ctx, userID, values)
}

func (m *mockWizard) SelectServer(userID string, hasServer bool) error {
	return m.selectServerFn(userID, hasServer)
}

func (m *mockWizard) Publish(ctx context.Context, user interaction.User) (*wizard.Result, error) {
	return m.publishFn(ctx, user)
}

type mockActions struct {
	showInterestFn  func(ctx context.Context, messageID string, user interaction.User) (*notify.InterestResult, error)
	markFilledFn    func(ctx context.Context, messageID string, user interaction.User) (*model.Scrim, error)
	cancelFn        func(ctx context.Context, messageID string, user interaction.User) (*model.Scrim, error)
	setAlertsFn     func(ctx context.Context, userID string, enabled bool) error
	alertsEnabledFn func(ctx context.Context, userID string) (bool, bool, error)
}

func (m *mockActions) ShowInterest(ctx context.Context, messageID string, user interaction.User) (*notify.InterestResult, error) {
	return m.showInterestFn(ctx, messageID, user)
}

func (m *mockActions) MarkFilled(ctx context.Context, messageID string, user interaction.User) (*model.Scrim, error) {
	return m.markFilledFn(ctx, messageID, user)
}

func (m *mockActions) Cancel(ctx context.Context, messageID string, user interaction.User) (*model.Scrim, error) {
	return m.cancelFn(ctx, messageID, user)
}

func (m *mockActions) SetAlerts(ctx context.Context, userID string, enabled bool) error {
	return m.setAlertsFn(ctx, userID, enabled)
}

func (m *mockActions) AlertsEnabled(ctx context.Context, userID string) (bool, bool, error) {
	return m.alertsEnabledFn(ctx, userID)
}

type mockCleanup struct {
	previewFn func(ctx context.Context) (*reaper.Preview, error)
	runOnceFn func(ctx context.Context, mode reaper.Mode) (*reaper.Report, error)
}

func (m *mockCleanup) Preview(ctx context.Context) (*reaper.Preview, error) {
	return m.previewFn(ctx)
}

func (m *mockCleanup) RunOnce(ctx context.Context, mode reaper.Mode) (*reaper.Report, error) {
	return m.runOnceFn(ctx, mode)
}

type mockListing struct {
	openFn    func(ctx context.Context, userID string) (*listing.Page, error)
	prevFn    func(userID string) (*listing.Page, error)
	nextFn    func(userID string) (*listing.Page, error)
	refreshFn func(ctx context.Context, userID string) (*listing.Page, error)
}

func (m *mockListing) Open(ctx context.Context, userID string) (*listing.Page, error) {
	return m.openFn(ctx, userID)
}

func (m *mockListing) Prev(userID string) (*listing.Page, error) { return m.prevFn(userID) }
func (m *mockListing) Next(userID string) (*listing.Page, error) { return m.nextFn(userID) }

func (m *mockListing) Refresh(ctx context.Context, userID string) (*listing.Page, error) {
	return m.refreshFn(ctx, userID)
}

type mockProfiles struct {
	getFn  func(ctx context.Context, userID string) (*model.Profile, error)
	saveFn func(ctx context.Context, userID, teamName, division string) (*model.Profile, error)
}

func (m *mockProfiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return m.getFn(ctx, userID)
}

func (m *mockProfiles) Save(ctx context.Context, userID, teamName, division string) (*model.Profile, error) {
	return m.saveFn(ctx, userID, teamName, division)
}

type mockCatalog struct {
	listFn   func(ctx context.Context) ([]model.MapEntry, error)
	addFn    func(ctx context.Context, name string) (string, error)
	removeFn func(ctx context.Context, name string) (string, error)
}

func (m *mockCatalog) List(ctx context.Context) ([]model.MapEntry, error) { return m.listFn(ctx) }

func (m *mockCatalog) Add(ctx context.Context, name string) (string, error) {
	return m.addFn(ctx, name)
}

func (m *mockCatalog) Remove(ctx context.Context, name string) (string, error) {
	return m.removeFn(ctx, name)
}

type mockSettings struct {
	channel string
	setFn   func(ctx context.Context, channelID string) error
}

func (m *mockSettings) ScrimChannel(ctx context.Context) (string, error) { return m.channel, nil }

func (m *mockSettings) SetScrimChannel(ctx context.Context, channelID string) error {
	return m.setFn(ctx, channelID)
}

type stubActive []*model.Scrim

func (s stubActive) ListActive(ctx context.Context) ([]*model.Scrim, error) { return s, nil }
