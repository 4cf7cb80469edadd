// Package handler はプラットフォームから届いたイベントを各サービスへ振り分ける。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/listing"
	"github.com/hitoshi/scrimbot/internal/middleware"
	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/render"
	"github.com/hitoshi/scrimbot/internal/wizard"
	"github.com/hitoshi/scrimbot/internal/worker/reaper"
)

// Router はイベントを種別ごとのハンドラへ振り分ける。
type Router struct {
	deps   RouterDeps
	logger *slog.Logger
	now    func() time.Time
}

var _ middleware.Handler = (*Router)(nil)

// NewRouter はRouterを生成する。
func NewRouter(deps RouterDeps, logger *slog.Logger) *Router {
	return &Router{deps: deps, logger: logger, now: time.Now}
}

// NewInteractionHandler はミドルウェアを適用したイベントハンドラを返す。
//
// ミドルウェアの実行順序:
//
//	Recover → Log → RateLimit → Router
func NewInteractionHandler(router *Router, logger *slog.Logger, mws ...middleware.Middleware) middleware.Handler {
	return middleware.Chain(router, append([]middleware.Middleware{middleware.Recover(logger)}, mws...)...)
}

// errResponded は応答済みのエラーを表す。Handleは重ねて応答しない。
type errResponded struct{ error }

func (e errResponded) Unwrap() error { return e.error }

// Handle はイベントを処理する。
// 処理中のエラーはユーザーに応答したうえで呼び出し元に返す。
func (rt *Router) Handle(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	tr := &trackingResponder{Responder: r}

	var err error
	switch in.Kind {
	case interaction.KindCommand:
		err = rt.handleCommand(ctx, in, tr)
	case interaction.KindComponent, interaction.KindModal:
		err = rt.handleAction(ctx, in, tr)
	default:
		err = fmt.Errorf("unknown interaction kind %d", in.Kind)
	}
	if err == nil {
		return nil
	}

	var responded errResponded
	if !errors.As(err, &responded) {
		rt.respondError(ctx, tr, err)
	}
	return err
}

// respondError はエラーをユーザー向けの応答に変換して送る。
func (rt *Router) respondError(ctx context.Context, r *trackingResponder, err error) {
	resp := render.InternalError()
	if appErr, ok := model.AsAppError(err); ok {
		resp = render.Error(appErr)
	}
	if sendErr := r.respond(ctx, resp); sendErr != nil {
		rt.logger.Error("failed to send error response",
			slog.String("error", sendErr.Error()),
		)
	}
}

func (rt *Router) handleCommand(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	switch in.Command.Name {
	case interaction.CommandScrim:
		return rt.startWizard(ctx, in, r)
	case interaction.CommandScrimList:
		page, err := rt.deps.Listing.Open(ctx, in.User.ID)
		if err != nil {
			return err
		}
		return r.Reply(ctx, renderPage(page))
	case interaction.CommandProfile:
		return rt.profileCommand(ctx, in, r)
	case interaction.CommandAlert:
		return rt.alertCommand(ctx, in, r)
	case interaction.CommandEditMaps:
		if !in.User.Admin {
			return model.NewAdminOnlyError()
		}
		return rt.editMapsCommand(ctx, in, r)
	case interaction.CommandSetup:
		if !in.User.Admin {
			return model.NewAdminOnlyError()
		}
		return rt.setupCommand(ctx, in, r)
	case interaction.CommandScrimClear:
		if !in.User.Admin {
			return model.NewAdminOnlyError()
		}
		preview, err := rt.deps.Cleanup.Preview(ctx)
		if err != nil {
			return err
		}
		return r.Reply(ctx, render.CleanupPreview(preview.Active, preview.Expired))
	default:
		return fmt.Errorf("unknown command %q", in.Command.Name)
	}
}

func (rt *Router) handleAction(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	switch in.Action.Kind {
	case interaction.ActionQuickScrim:
		return rt.startWizard(ctx, in, r)
	case interaction.ActionUseProfile, interaction.ActionNewScrim:
		team, division, err := rt.deps.Wizard.ChooseProfile(ctx, in.User.ID, in.Action.Kind == interaction.ActionUseProfile)
		if err != nil {
			return err
		}
		return r.ShowModal(ctx, render.BasicInfoForm(team, division))
	case interaction.ActionBasicInfoSubmit:
		return rt.submitBasicInfo(ctx, in, r)
	case interaction.ActionMapSelect:
		if err := rt.deps.Wizard.SelectMaps(ctx, in.User.ID, in.Values); err != nil {
			return err
		}
		return r.Update(ctx, render.ServerSelect())
	case interaction.ActionServerYes, interaction.ActionServerNo:
		return rt.publish(ctx, in, r, in.Action.Kind == interaction.ActionServerYes)
	case interaction.ActionShowInterest:
		res, err := rt.deps.Actions.ShowInterest(ctx, in.MessageID, in.User)
		if err != nil {
			return err
		}
		return r.Reply(ctx, render.InterestAck(res.Notified))
	case interaction.ActionMarkFilled:
		s, err := rt.deps.Actions.MarkFilled(ctx, in.MessageID, in.User)
		if err != nil {
			return err
		}
		return r.Update(ctx, render.ScrimClosed(s, model.ScrimStatusFilled, in.User.DisplayName, rt.now()))
	case interaction.ActionCancelScrim:
		s, err := rt.deps.Actions.Cancel(ctx, in.MessageID, in.User)
		if err != nil {
			return err
		}
		return r.Update(ctx, render.ScrimClosed(s, model.ScrimStatusCancelled, in.User.DisplayName, rt.now()))
	case interaction.ActionListPrev, interaction.ActionListNext, interaction.ActionListRefresh:
		return rt.turnPage(ctx, in, r)
	case interaction.ActionCleanupConfirm:
		return rt.confirmCleanup(ctx, in, r)
	case interaction.ActionCleanupCancel:
		if !in.User.Admin {
			return model.NewAdminOnlyError()
		}
		return r.Update(ctx, render.CleanupCancelled())
	case interaction.ActionProfileEdit:
		p, err := rt.deps.Profiles.Get(ctx, in.User.ID)
		if err != nil {
			return err
		}
		return r.ShowModal(ctx, render.ProfileForm(p))
	case interaction.ActionProfileSubmit:
		p, err := rt.deps.Profiles.Save(ctx, in.User.ID,
			in.Field(interaction.FieldProfileTeamName), in.Field(interaction.FieldProfileDivision))
		if err != nil {
			return err
		}
		return r.Reply(ctx, render.ProfileSaved(p, rt.now()))
	case interaction.ActionUnknown:
		return fmt.Errorf("unknown action")
	default:
		return fmt.Errorf("unhandled action %s", in.Action.Kind)
	}
}

func (rt *Router) startWizard(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	p, err := rt.deps.Wizard.Start(ctx, in.User.ID)
	if err != nil {
		return err
	}
	if p != nil {
		return r.Reply(ctx, render.ProfileChoice(p))
	}
	return r.ShowModal(ctx, render.BasicInfoForm("", ""))
}

func (rt *Router) submitBasicInfo(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	err := rt.deps.Wizard.SubmitBasicInfo(in.User.ID, wizard.BasicInfo{
		TeamName:      in.Field(interaction.FieldTeamName),
		Division:      in.Field(interaction.FieldDivision),
		ScheduledDate: in.Field(interaction.FieldScrimDate),
		ScheduledTime: in.Field(interaction.FieldScrimTime),
	})
	if err != nil {
		return err
	}
	chunks, err := rt.deps.Wizard.MapChoices(ctx, in.User.ID)
	if err != nil {
		return err
	}
	return r.Reply(ctx, render.MapSelect(chunks))
}

// publish はサーバー有無を保存して募集を公開する。
// 公開処理は時間がかかるため、先に処理中表示へ更新してから結果で書き換える。
func (rt *Router) publish(ctx context.Context, in *interaction.Interaction, r interaction.Responder, hasServer bool) error {
	if err := rt.deps.Wizard.SelectServer(in.User.ID, hasServer); err != nil {
		return err
	}
	if err := r.Update(ctx, render.Publishing()); err != nil {
		return err
	}

	res, err := rt.deps.Wizard.Publish(ctx, in.User)
	if err != nil {
		if _, ok := model.AsAppError(err); ok {
			return err
		}
		if editErr := r.EditReply(ctx, render.PublishFailed()); editErr != nil {
			rt.logger.Error("failed to send publish failure",
				slog.String("error", editErr.Error()),
			)
		}
		return errResponded{err}
	}
	return r.EditReply(ctx, render.Published(res.Scrim.ChannelID, res.Scrim.ThreadID))
}

func (rt *Router) turnPage(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	var (
		page *listing.Page
		err  error
	)
	switch in.Action.Kind {
	case interaction.ActionListPrev:
		page, err = rt.deps.Listing.Prev(in.User.ID)
	case interaction.ActionListNext:
		page, err = rt.deps.Listing.Next(in.User.ID)
	default:
		page, err = rt.deps.Listing.Refresh(ctx, in.User.ID)
	}
	if err != nil {
		return err
	}
	return r.Update(ctx, renderPage(page))
}

func (rt *Router) confirmCleanup(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	if !in.User.Admin {
		return model.NewAdminOnlyError()
	}
	if err := r.DeferUpdate(ctx); err != nil {
		return err
	}

	report, err := rt.deps.Cleanup.RunOnce(ctx, reaper.ModeManual)
	if errors.Is(err, reaper.ErrAlreadyRunning) {
		return model.NewCleanupInProgressError()
	}
	if err != nil {
		if editErr := r.EditReply(ctx, render.CleanupFailed()); editErr != nil {
			rt.logger.Error("failed to send cleanup failure",
				slog.String("error", editErr.Error()),
			)
		}
		return errResponded{err}
	}
	return r.EditReply(ctx, render.CleanupReport(render.CleanupResult{
		Cleaned:        report.Cleaned,
		Skipped:        report.Skipped,
		Errors:         report.Errors,
		ArtifactErrors: report.ArtifactErrors,
	}, in.User.DisplayName, rt.now()))
}
