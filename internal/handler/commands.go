package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/listing"
	"github.com/hitoshi/scrimbot/internal/render"
)

func renderPage(p *listing.Page) interaction.Response {
	return render.ListPage(p.Items, p.Offset, p.Total, p.Page, p.TotalPages, p.At)
}

func (rt *Router) profileCommand(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	p, err := rt.deps.Profiles.Get(ctx, in.User.ID)
	if err != nil {
		return err
	}

	switch in.Command.Subcommand {
	case interaction.SubProfileView:
		if p == nil {
			return r.Reply(ctx, render.ProfileMissing())
		}
		return r.Reply(ctx, render.ProfileView(p, rt.now()))
	case interaction.SubProfileEdit:
		return r.ShowModal(ctx, render.ProfileForm(p))
	default:
		return fmt.Errorf("unknown profile subcommand %q", in.Command.Subcommand)
	}
}

func (rt *Router) alertCommand(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	switch in.Command.Subcommand {
	case interaction.SubAlertOn, interaction.SubAlertOff:
		enabled := in.Command.Subcommand == interaction.SubAlertOn
		if err := rt.deps.Actions.SetAlerts(ctx, in.User.ID, enabled); err != nil {
			return err
		}
		return r.Reply(ctx, render.AlertChanged(enabled, rt.now()))
	case interaction.SubAlertStatus:
		enabled, explicit, err := rt.deps.Actions.AlertsEnabled(ctx, in.User.ID)
		if err != nil {
			return err
		}
		return r.Reply(ctx, render.AlertStatus(enabled, explicit, rt.now()))
	default:
		return fmt.Errorf("unknown alert subcommand %q", in.Command.Subcommand)
	}
}

func (rt *Router) editMapsCommand(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	switch in.Command.Subcommand {
	case interaction.SubMapsAdd:
		name, err := rt.deps.Catalog.Add(ctx, in.Option(interaction.OptionMapName))
		if err != nil {
			return err
		}
		return r.Reply(ctx, render.MapAdded(name, in.User.DisplayName, rt.now()))
	case interaction.SubMapsRemove:
		name, err := rt.deps.Catalog.Remove(ctx, in.Option(interaction.OptionMapName))
		if err != nil {
			return err
		}
		return r.Reply(ctx, render.MapRemoved(name, in.User.DisplayName, rt.now()))
	case interaction.SubMapsList:
		maps, err := rt.deps.Catalog.List(ctx)
		if err != nil {
			return err
		}
		return r.Reply(ctx, render.MapList(maps, rt.now()))
	default:
		return fmt.Errorf("unknown editmaps subcommand %q", in.Command.Subcommand)
	}
}

func (rt *Router) setupCommand(ctx context.Context, in *interaction.Interaction, r interaction.Responder) error {
	switch in.Command.Subcommand {
	case interaction.SubSetupChannel:
		channelID := in.Option(interaction.OptionChannel)
		if err := rt.deps.Settings.SetScrimChannel(ctx, channelID); err != nil {
			return err
		}
		if err := rt.deps.Messenger.Send(ctx, channelID, render.ChannelGreeting()); err != nil {
			rt.logger.Warn("failed to send channel greeting",
				slog.String("channel_id", channelID),
				slog.String("error", err.Error()),
			)
		}
		return r.Reply(ctx, render.ChannelConfigured(channelID, in.User.DisplayName, rt.now()))
	case interaction.SubSetupInfo:
		channelID, err := rt.deps.Settings.ScrimChannel(ctx)
		if err != nil {
			return err
		}
		active, err := rt.deps.Scrims.ListActive(ctx)
		if err != nil {
			return err
		}
		maps, err := rt.deps.Catalog.List(ctx)
		if err != nil {
			return err
		}
		return r.Reply(ctx, render.SetupInfo(channelID, len(active), len(maps), rt.now()))
	default:
		return fmt.Errorf("unknown setup subcommand %q", in.Command.Subcommand)
	}
}
