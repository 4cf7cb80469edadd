// Package render はスクリム関連の埋め込み・ボタン・フォームを組み立てる。
// 表示文言はすべてこのパッケージに集約する。
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/messaging"
	"github.com/hitoshi/scrimbot/internal/model"
)

// 埋め込みの色
const (
	ColorInfo    = 0x0099ff
	ColorScrim   = 0xff6b35
	ColorSuccess = 0x00ff00
	ColorDanger  = 0xff0000
	ColorWarning = 0xffa500
	ColorMuted   = 0x6c757d
)

// DateLayout は一覧などで日付を表示する書式。
const DateLayout = "02/01/2006"

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func when(s *model.Scrim) string {
	return s.ScheduledDate + ", " + s.ScheduledTime
}

func ts(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func btn(kind interaction.ActionKind, label, emoji string, style interaction.ButtonStyle) interaction.Button {
	return interaction.Button{
		Action: interaction.Action{Kind: kind},
		Label:  label,
		Emoji:  emoji,
		Style:  style,
	}
}

func scrimFields(s *model.Scrim) []interaction.EmbedField {
	return []interaction.EmbedField{
		{Name: "🏷️ Team", Value: s.TeamName, Inline: true},
		{Name: "🎯 Division", Value: s.Division, Inline: true},
		{Name: "📅 When", Value: when(s)},
		{Name: "🗺️ Maps", Value: s.Maps, Inline: true},
		{Name: "🌐 Server", Value: yesNo(s.HasServer), Inline: true},
	}
}

// ScrimPosting は募集チャンネルに投稿するメッセージを返す。
func ScrimPosting(s *model.Scrim, ownerName string) messaging.Message {
	return messaging.Message{
		Embeds: []interaction.Embed{{
			Title:     "📢 Scrim Request",
			Color:     ColorScrim,
			Fields:    scrimFields(s),
			Footer:    "Requested by " + ownerName,
			Timestamp: ts(s.CreatedAt),
		}},
		Components: []interaction.Row{{Buttons: []interaction.Button{
			btn(interaction.ActionShowInterest, "Show Interest", "🤝", interaction.ButtonPrimary),
			btn(interaction.ActionMarkFilled, "Mark as Filled", "✅", interaction.ButtonSuccess),
			btn(interaction.ActionCancelScrim, "Cancel", "❌", interaction.ButtonDanger),
		}}},
	}
}

// ScrimClosed は成立または取消後の投稿内容を返す。ボタンは取り除く。
func ScrimClosed(s *model.Scrim, status model.ScrimStatus, byName string, at time.Time) interaction.Response {
	embed := interaction.Embed{
		Fields:    scrimFields(s),
		Timestamp: ts(at),
	}
	switch status {
	case model.ScrimStatusFilled:
		embed.Title = "✅ Scrim Filled"
		embed.Color = ColorSuccess
		embed.Footer = "Marked as filled by " + byName
	default:
		embed.Title = "❌ Scrim Cancelled"
		embed.Color = ColorDanger
		embed.Footer = "Cancelled by " + byName
	}
	return interaction.Response{Embeds: []interaction.Embed{embed}, Components: []interaction.Row{}}
}

// ThreadTitle は議論スレッドの名前を返す。
func ThreadTitle(teamName, date string) string {
	return teamName + " - " + date
}

// ThreadWelcome はスレッド作成直後に送るメッセージ。
func ThreadWelcome(teamName string) messaging.Message {
	return messaging.Message{Content: fmt.Sprintf(
		"🎮 **Scrim Discussion Thread**\n\nTeam **%s** is looking for a scrim!\n\nShare your Steam profiles and coordinate the match details here. Good luck! 🍀",
		teamName,
	)}
}

// FilledNotice はスレッドに送る成立通知。
func FilledNotice() messaging.Message {
	return messaging.Message{Content: "✅ **This scrim has been marked as filled!** Thanks to everyone who showed interest."}
}

// CancelledNotice はスレッドに送る取消通知。
func CancelledNotice() messaging.Message {
	return messaging.Message{Content: "❌ **This scrim has been cancelled.** The thread will be archived shortly."}
}

// ScrimAlert は通知を有効にしているユーザーへのDM。
func ScrimAlert(s *model.Scrim) messaging.Message {
	return messaging.Message{Embeds: []interaction.Embed{{
		Title:       "🔔 New Scrim Alert",
		Description: "A new scrim request has been posted!",
		Color:       ColorScrim,
		Fields:      scrimFields(s),
		Footer:      "You can disable these alerts with /alert off",
	}}}
}

// InterestToOwner は募集者に送る興味表明の通知。
func InterestToOwner(s *model.Scrim, signaler interaction.User, at time.Time) messaging.Message {
	return messaging.Message{Embeds: []interaction.Embed{{
		Title:       "🤝 Someone is interested in your scrim!",
		Description: fmt.Sprintf("**%s** has shown interest in your scrim request.", signaler.DisplayName),
		Color:       ColorSuccess,
		Fields: []interaction.EmbedField{
			{Name: "🏷️ Your Team", Value: s.TeamName, Inline: true},
			{Name: "📅 Scrim Date", Value: when(s), Inline: true},
			{Name: "👤 Interested User", Value: fmt.Sprintf("%s (<@%s>)", signaler.DisplayName, signaler.ID)},
			{Name: "💬 Next Steps", Value: "Reach out to coordinate the match details!"},
		},
		Timestamp: ts(at),
	}}}
}

// InterestConfirmation は興味を示したユーザーに送る確認。
func InterestConfirmation(s *model.Scrim) messaging.Message {
	return messaging.Message{Embeds: []interaction.Embed{{
		Title:       "✅ Interest Registered",
		Description: fmt.Sprintf("You've shown interest in **%s**'s scrim!", s.TeamName),
		Color:       ColorInfo,
		Fields: []interaction.EmbedField{
			{Name: "📅 Scrim Details", Value: when(s), Inline: true},
			{Name: "🗺️ Maps", Value: s.Maps, Inline: true},
			{Name: "💬 What's Next?", Value: "The team creator has been notified and should contact you soon!"},
		},
	}}}
}

// InterestAck は興味表明ボタンへの応答。
func InterestAck(notified bool) interaction.Response {
	if notified {
		return interaction.Response{Content: "✅ Interest registered! Both teams have been notified via DM.", Ephemeral: true}
	}
	return interaction.Response{Content: "✅ Interest registered, but couldn't send DM notifications. Make sure your DMs are open!", Ephemeral: true}
}

// Error はAppErrorをユーザー向けの応答に変換する。
func Error(e *model.AppError) interaction.Response {
	var b strings.Builder
	b.WriteString("❌ ")
	b.WriteString(e.Message)
	if e.Action != "" {
		b.WriteString(" ")
		b.WriteString(e.Action)
	}
	return interaction.Response{Content: b.String(), Ephemeral: true}
}

// InternalError は想定外のエラー時の応答。
func InternalError() interaction.Response {
	return interaction.Response{Content: "❌ An error occurred while processing your request. Please try again.", Ephemeral: true}
}
