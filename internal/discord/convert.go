// Package discord はinteraction/messagingの抽象をdiscordgoで実装する。
package discord

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/messaging"
)

var buttonStyles = map[interaction.ButtonStyle]discordgo.ButtonStyle{
	interaction.ButtonPrimary:   discordgo.PrimaryButton,
	interaction.ButtonSecondary: discordgo.SecondaryButton,
	interaction.ButtonSuccess:   discordgo.SuccessButton,
	interaction.ButtonDanger:    discordgo.DangerButton,
}

func toEmbeds(embeds []interaction.Embed) []*discordgo.MessageEmbed {
	if embeds == nil {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		me := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Footer != "" {
			me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		if e.Timestamp != nil {
			me.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
		}
		out = append(out, me)
	}
	return out
}

func emoji(name string) *discordgo.ComponentEmoji {
	if name == "" {
		return nil
	}
	return &discordgo.ComponentEmoji{Name: name}
}

func toComponents(rows []interaction.Row) []discordgo.MessageComponent {
	if rows == nil {
		return nil
	}
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		var items []discordgo.MessageComponent
		if row.Select != nil {
			sel := row.Select
			minValues := sel.MinValues
			menu := discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    sel.Action.CustomID(),
				Placeholder: sel.Placeholder,
				MinValues:   &minValues,
				MaxValues:   sel.MaxValues,
			}
			for _, o := range sel.Options {
				menu.Options = append(menu.Options, discordgo.SelectMenuOption{Label: o.Label, Value: o.Value, Emoji: emoji(o.Emoji)})
			}
			items = append(items, menu)
		}
		for _, b := range row.Buttons {
			items = append(items, discordgo.Button{
				CustomID: b.Action.CustomID(),
				Label:    b.Label,
				Emoji:    emoji(b.Emoji),
				Style:    buttonStyles[b.Style],
				Disabled: b.Disabled,
			})
		}
		out = append(out, discordgo.ActionsRow{Components: items})
	}
	return out
}

func toMessageSend(msg messaging.Message) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Components),
	}
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func toResponseData(resp interaction.Response) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    resp.Content,
		Embeds:     toEmbeds(resp.Embeds),
		Components: toComponents(resp.Components),
		Flags:      flags(resp.Ephemeral),
	}
}

// toWebhookEdit はnilのEmbeds/Componentsを「変更しない」、空スライスを「消去する」として扱う。
func toWebhookEdit(resp interaction.Response) *discordgo.WebhookEdit {
	content := resp.Content
	edit := &discordgo.WebhookEdit{Content: &content}
	if resp.Embeds != nil {
		embeds := toEmbeds(resp.Embeds)
		edit.Embeds = &embeds
	}
	if resp.Components != nil {
		components := toComponents(resp.Components)
		edit.Components = &components
	}
	return edit
}

func toModalData(m interaction.Modal) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    in.ID,
				Label:       in.Label,
				Style:       discordgo.TextInputShort,
				Placeholder: in.Placeholder,
				Value:       in.Value,
				Required:    in.Required,
				MaxLength:   in.MaxLength,
			},
		}})
	}
	return &discordgo.InteractionResponseData{
		CustomID:   m.Action.CustomID(),
		Title:      m.Title,
		Components: rows,
	}
}

// translate はdiscordgoのイベントをプラットフォーム非依存のInteractionに変換する。
// 未対応の種別の場合はnilを返す。
func translate(i *discordgo.Interaction, admins map[string]bool) *interaction.Interaction {
	in := &interaction.Interaction{
		User:      userOf(i, admins),
		ChannelID: i.ChannelID,
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		in.Kind = interaction.KindCommand
		in.Command = interaction.Command{Name: interaction.CommandName(data.Name), Options: map[string]string{}}
		for _, opt := range data.Options {
			if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
				in.Command.Subcommand = opt.Name
				for _, sub := range opt.Options {
					in.Command.Options[sub.Name] = optionString(sub)
				}
				continue
			}
			in.Command.Options[opt.Name] = optionString(opt)
		}
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		in.Kind = interaction.KindComponent
		in.Action = interaction.ParseCustomID(data.CustomID)
		in.Values = data.Values
		if i.Message != nil {
			in.MessageID = i.Message.ID
		}
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		in.Kind = interaction.KindModal
		in.Action = interaction.ParseCustomID(data.CustomID)
		in.Fields = modalFields(data.Components)
	default:
		return nil
	}
	return in
}

func userOf(i *discordgo.Interaction, admins map[string]bool) interaction.User {
	var (
		u     *discordgo.User
		nick  string
		perms int64
	)
	if i.Member != nil {
		u, nick, perms = i.Member.User, i.Member.Nick, i.Member.Permissions
	} else {
		u = i.User
	}
	if u == nil {
		return interaction.User{}
	}

	name := nick
	if name == "" {
		name = u.GlobalName
	}
	if name == "" {
		name = u.Username
	}
	return interaction.User{
		ID:          u.ID,
		DisplayName: name,
		Admin:       perms&discordgo.PermissionAdministrator != 0 || admins[u.ID],
	}
}

func optionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	switch v := opt.Value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func modalFields(rows []discordgo.MessageComponent) map[string]string {
	fields := make(map[string]string)
	add := func(c discordgo.MessageComponent) {
		switch ti := c.(type) {
		case *discordgo.TextInput:
			fields[ti.CustomID] = ti.Value
		case discordgo.TextInput:
			fields[ti.CustomID] = ti.Value
		}
	}
	for _, row := range rows {
		switch r := row.(type) {
		case *discordgo.ActionsRow:
			for _, c := range r.Components {
				add(c)
			}
		case discordgo.ActionsRow:
			for _, c := range r.Components {
				add(c)
			}
		}
	}
	return fields
}

// ParseAdminIDs はカンマ区切りのユーザーID一覧を集合に変換する。
func ParseAdminIDs(list []string) map[string]bool {
	admins := make(map[string]bool, len(list))
	for _, id := range list {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = true
		}
	}
	return admins
}

// mapError はREST APIのエラーをmessagingのセンチネルエラーに対応付ける。
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel:
			return fmt.Errorf("%w: %w", messaging.ErrNotFound, err)
		case discordgo.ErrCodeCannotSendMessagesToThisUser:
			return fmt.Errorf("%w: %w", messaging.ErrUnreachable, err)
		}
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", messaging.ErrNotFound, err)
	}
	return err
}
