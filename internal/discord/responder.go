package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/hitoshi/scrimbot/internal/interaction"
)

// responder は1件のイベントに対するinteraction.Responderの実装。
type responder struct {
	session *discordgo.Session
	i       *discordgo.Interaction
}

var _ interaction.Responder = (*responder)(nil)

func (r *responder) respond(ctx context.Context, typ discordgo.InteractionResponseType, data *discordgo.InteractionResponseData) error {
	return mapError(r.session.InteractionRespond(r.i, &discordgo.InteractionResponse{Type: typ, Data: data}, discordgo.WithContext(ctx)))
}

func (r *responder) Reply(ctx context.Context, resp interaction.Response) error {
	return r.respond(ctx, discordgo.InteractionResponseChannelMessageWithSource, toResponseData(resp))
}

func (r *responder) Update(ctx context.Context, resp interaction.Response) error {
	return r.respond(ctx, discordgo.InteractionResponseUpdateMessage, toResponseData(resp))
}

func (r *responder) ShowModal(ctx context.Context, m interaction.Modal) error {
	return r.respond(ctx, discordgo.InteractionResponseModal, toModalData(m))
}

func (r *responder) DeferUpdate(ctx context.Context) error {
	return r.respond(ctx, discordgo.InteractionResponseDeferredMessageUpdate, nil)
}

func (r *responder) EditReply(ctx context.Context, resp interaction.Response) error {
	_, err := r.session.InteractionResponseEdit(r.i, toWebhookEdit(resp), discordgo.WithContext(ctx))
	return mapError(err)
}

func (r *responder) FollowUp(ctx context.Context, resp interaction.Response) error {
	_, err := r.session.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
		Content:    resp.Content,
		Embeds:     toEmbeds(resp.Embeds),
		Components: toComponents(resp.Components),
		Flags:      flags(resp.Ephemeral),
	}, discordgo.WithContext(ctx))
	return mapError(err)
}
