package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/messaging"
	"github.com/hitoshi/scrimbot/internal/model"
)

// ListPage はアクティブなスクリム一覧の1ページ。
// totalPagesが1以下の場合はページ送りボタンを付けない。
func ListPage(items []*model.Scrim, offset, total, page, totalPages int, at time.Time) interaction.Response {
	if total == 0 {
		return interaction.Response{
			Embeds: []interaction.Embed{{
				Title:       "📋 Active Scrims",
				Description: "No active scrim requests found.\n\nUse `/scrim` to create a new scrim request!",
				Color:       ColorWarning,
				Timestamp:   ts(at),
			}},
			Components: []interaction.Row{},
			Ephemeral:  true,
		}
	}

	fields := make([]interaction.EmbedField, 0, len(items))
	for i, s := range items {
		fields = append(fields, interaction.EmbedField{
			Name: fmt.Sprintf("%d. %s", offset+i+1, s.TeamName),
			Value: fmt.Sprintf("**Division:** %s\n**When:** %s\n**Maps:** %s\n**Server:** %s\n**Posted:** %s",
				s.Division, when(s), s.Maps, yesNo(s.HasServer), s.CreatedAt.UTC().Format(DateLayout)),
		})
	}

	resp := interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "📋 Active Scrim Requests",
			Description: fmt.Sprintf("Showing %d of %d active scrims", len(items), total),
			Color:       ColorInfo,
			Fields:      fields,
			Footer:      fmt.Sprintf("Page %d of %d", page+1, totalPages),
			Timestamp:   ts(at),
		}},
		Components: []interaction.Row{},
		Ephemeral:  true,
	}
	if totalPages > 1 {
		prev := btn(interaction.ActionListPrev, "Previous", "⬅️", interaction.ButtonSecondary)
		prev.Disabled = page == 0
		next := btn(interaction.ActionListNext, "Next", "➡️", interaction.ButtonSecondary)
		next.Disabled = page == totalPages-1
		resp.Components = []interaction.Row{{Buttons: []interaction.Button{
			prev, next,
			btn(interaction.ActionListRefresh, "Refresh", "🔄", interaction.ButtonPrimary),
		}}}
	}
	return resp
}

// cleanupPreviewLimit はプレビューに列挙する最大件数。
const cleanupPreviewLimit = 10

// CleanupPreview は手動クリーンアップの確認画面。
func CleanupPreview(active int, expired []*model.Scrim) interaction.Response {
	status := interaction.EmbedField{
		Name:  "📊 Current Status",
		Value: fmt.Sprintf("**Active Scrims:** %d\n**Expired Scrims:** %d", active, len(expired)),
	}
	if len(expired) == 0 {
		return interaction.Response{
			Embeds: []interaction.Embed{{
				Title:       "🧹 Scrim Cleanup",
				Description: "✅ No expired scrims found. All active scrims are still valid.",
				Color:       ColorSuccess,
				Fields:      []interaction.EmbedField{status},
			}},
			Ephemeral: true,
		}
	}

	lines := make([]string, 0, cleanupPreviewLimit)
	for i, s := range expired {
		if i == cleanupPreviewLimit {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. **%s** - %s (Posted: %s)",
			i+1, s.TeamName, s.ScheduledDate, s.CreatedAt.UTC().Format(DateLayout)))
	}
	desc := fmt.Sprintf("Found %d expired scrim(s) that can be cleaned up:\n\n%s", len(expired), strings.Join(lines, "\n"))
	if len(expired) > cleanupPreviewLimit {
		desc += fmt.Sprintf("\n\n*...and %d more*", len(expired)-cleanupPreviewLimit)
	}

	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "🧹 Scrim Cleanup",
			Description: desc,
			Color:       ColorScrim,
			Fields:      []interaction.EmbedField{status},
		}},
		Components: []interaction.Row{{Buttons: []interaction.Button{
			btn(interaction.ActionCleanupConfirm, "Cleanup "+strconv.Itoa(len(expired))+" Scrims", "🗑️", interaction.ButtonDanger),
			btn(interaction.ActionCleanupCancel, "Cancel", "❌", interaction.ButtonSecondary),
		}}},
		Ephemeral: true,
	}
}

// CleanupCancelled は手動クリーンアップを取りやめた場合の表示。
func CleanupCancelled() interaction.Response {
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "❌ Cleanup Cancelled",
			Description: "No scrims were removed.",
			Color:       ColorMuted,
		}},
		Components: []interaction.Row{},
	}
}

// CleanupResult は手動クリーンアップの件数。
type CleanupResult struct {
	Cleaned        int
	Skipped        int
	Errors         int
	ArtifactErrors int
}

// CleanupReport は手動クリーンアップの結果。
func CleanupReport(res CleanupResult, byName string, at time.Time) interaction.Response {
	desc := fmt.Sprintf("Successfully cleaned up %d expired scrim(s).", res.Cleaned)
	if res.Skipped > 0 {
		desc += fmt.Sprintf("\n%d scrim(s) were closed by their owners during cleanup and left untouched.", res.Skipped)
	}
	if res.Errors > 0 {
		desc += fmt.Sprintf("\n\n⚠️ %d scrim(s) had errors during cleanup.", res.Errors)
	}
	if res.ArtifactErrors > 0 {
		desc += fmt.Sprintf("\n\n⚠️ %d posting(s) or thread(s) could not be deleted and may need to be removed manually.", res.ArtifactErrors)
	}
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "✅ Cleanup Complete",
			Description: desc,
			Color:       ColorSuccess,
			Fields: []interaction.EmbedField{
				{Name: "📊 Results", Value: fmt.Sprintf("**Cleaned:** %d\n**Skipped:** %d\n**Errors:** %d", res.Cleaned, res.Skipped, res.Errors), Inline: true},
				{Name: "🗑️ Delete Failures", Value: strconv.Itoa(res.ArtifactErrors), Inline: true},
			},
			Footer:    "Cleanup performed by " + byName,
			Timestamp: ts(at),
		}},
		Components: []interaction.Row{},
	}
}

// CleanupFailed はクリーンアップ全体が失敗した場合の表示。
func CleanupFailed() interaction.Response {
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "❌ Cleanup Failed",
			Description: "An error occurred during the cleanup process. Please try again or contact support.",
			Color:       ColorDanger,
		}},
		Components: []interaction.Row{},
	}
}

// ProfileMissing はプロフィール未登録時の表示。
func ProfileMissing() interaction.Response {
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "👤 No Profile Found",
			Description: "You don't have a saved profile yet. Create one to speed up scrim creation!",
			Color:       ColorWarning,
			Fields: []interaction.EmbedField{
				{Name: "🚀 Benefits of a Profile", Value: "Save your team name and division for quick scrim posting"},
				{Name: "📝 Create Profile", Value: "Use `/profile edit` to set up your profile"},
			},
		}},
		Components: []interaction.Row{{Buttons: []interaction.Button{
			btn(interaction.ActionProfileEdit, "Create Profile", "📝", interaction.ButtonPrimary),
		}}},
		Ephemeral: true,
	}
}

// ProfileView は保存済みプロフィールの表示。
func ProfileView(p *model.Profile, at time.Time) interaction.Response {
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "👤 Your Team Profile",
			Description: "Here's your saved team information:",
			Color:       ColorInfo,
			Fields: []interaction.EmbedField{
				{Name: "🏷️ Team Name", Value: p.TeamName, Inline: true},
				{Name: "🎯 Division", Value: p.Division, Inline: true},
				{Name: "🔄 Last Updated", Value: p.UpdatedAt.UTC().Format(DateLayout), Inline: true},
			},
			Footer:    "Use /profile edit to update your information",
			Timestamp: ts(at),
		}},
		Components: []interaction.Row{{Buttons: []interaction.Button{
			btn(interaction.ActionProfileEdit, "Edit Profile", "✏️", interaction.ButtonSecondary),
			btn(interaction.ActionQuickScrim, "Quick Scrim", "⚡", interaction.ButtonPrimary),
		}}},
		Ephemeral: true,
	}
}

// ProfileForm はプロフィール編集フォーム。pがnilでなければ初期値を設定する。
func ProfileForm(p *model.Profile) interaction.Modal {
	var team, division string
	if p != nil {
		team, division = p.TeamName, p.Division
	}
	return interaction.Modal{
		Action: interaction.Action{Kind: interaction.ActionProfileSubmit},
		Title:  "Edit Team Profile",
		Inputs: []interaction.TextInput{
			{ID: interaction.FieldProfileTeamName, Label: "Team Name", Placeholder: "Enter your team name", Value: team, Required: true, MaxLength: model.MaxTeamNameLen},
			{ID: interaction.FieldProfileDivision, Label: "Division", Placeholder: "e.g., Premier, Main, Advanced, etc.", Value: division, Required: true, MaxLength: model.MaxDivisionLen},
		},
	}
}

// ProfileSaved はプロフィール保存完了の表示。
func ProfileSaved(p *model.Profile, at time.Time) interaction.Response {
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "✅ Profile Updated Successfully",
			Description: "Your team profile has been saved!",
			Color:       ColorSuccess,
			Fields: []interaction.EmbedField{
				{Name: "🏷️ Team Name", Value: p.TeamName, Inline: true},
				{Name: "🎯 Division", Value: p.Division, Inline: true},
				{Name: "🚀 Quick Scrim Creation", Value: "You can now use your saved profile for faster scrim posting with `/scrim`"},
			},
			Footer:    "Profile saved successfully",
			Timestamp: ts(at),
		}},
		Components: []interaction.Row{{Buttons: []interaction.Button{
			btn(interaction.ActionQuickScrim, "Create Scrim Now", "🎮", interaction.ButtonPrimary),
		}}},
		Ephemeral: true,
	}
}

// AlertChanged は通知設定の変更結果。
func AlertChanged(enabled bool, at time.Time) interaction.Response {
	if enabled {
		return interaction.Response{
			Embeds: []interaction.Embed{{
				Title:       "🔔 Alerts Enabled",
				Description: "You will now receive DM notifications when new scrim requests are posted!",
				Color:       ColorSuccess,
				Fields: []interaction.EmbedField{
					{Name: "📬 What you'll receive", Value: "Direct messages with scrim details whenever a team posts a new scrim request"},
					{Name: "⚙️ Manage alerts", Value: "Use `/alert off` to disable notifications anytime"},
				},
				Footer:    "Make sure your DMs are open to receive notifications",
				Timestamp: ts(at),
			}},
			Ephemeral: true,
		}
	}
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "🔕 Alerts Disabled",
			Description: "You will no longer receive DM notifications for new scrim requests.",
			Color:       ColorScrim,
			Fields: []interaction.EmbedField{
				{Name: "📭 No more notifications", Value: "You won't receive DMs when new scrims are posted"},
				{Name: "⚙️ Re-enable anytime", Value: "Use `/alert on` to turn notifications back on"},
			},
			Timestamp: ts(at),
		}},
		Ephemeral: true,
	}
}

// AlertStatus は現在の通知設定。
func AlertStatus(enabled, explicit bool, at time.Time) interaction.Response {
	state, setting, change, color := "DISABLED", "You do not receive DM notifications", "Use `/alert on` to enable", ColorMuted
	if enabled {
		state, setting, change, color = "ENABLED", "You receive DM notifications for new scrims", "Use `/alert off` to disable", ColorSuccess
	}
	footer := "Default setting"
	if explicit {
		footer = "Saved preference"
	}
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "📊 Alert Status",
			Description: fmt.Sprintf("Your scrim alerts are currently **%s**", state),
			Color:       color,
			Fields: []interaction.EmbedField{
				{Name: "🔔 Current Setting", Value: setting},
				{Name: "⚙️ Change Settings", Value: change},
			},
			Footer:    footer,
			Timestamp: ts(at),
		}},
		Ephemeral: true,
	}
}

// MapList はマップカタログの一覧。
func MapList(maps []model.MapEntry, at time.Time) interaction.Response {
	if len(maps) == 0 {
		return interaction.Response{
			Content:   "📋 No maps are currently available. Use `/editmaps add` to add some maps.",
			Ephemeral: true,
		}
	}
	lines := make([]string, 0, len(maps))
	for i, m := range maps {
		lines = append(lines, fmt.Sprintf("%d. **%s**", i+1, m.Name))
	}
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "🗺️ Available Maps",
			Description: strings.Join(lines, "\n"),
			Color:       ColorInfo,
			Fields: []interaction.EmbedField{
				{Name: "Total Maps", Value: strconv.Itoa(len(maps)), Inline: true},
				{Name: "Commands", Value: "`/editmaps add <name>` - Add map\n`/editmaps remove <name>` - Remove map"},
			},
			Footer:    "Admin commands only",
			Timestamp: ts(at),
		}},
		Ephemeral: true,
	}
}

// MapAdded はマップ追加の結果。
func MapAdded(name, byName string, at time.Time) interaction.Response {
	return interaction.Response{Embeds: []interaction.Embed{{
		Title:       "✅ Map Added Successfully",
		Description: fmt.Sprintf("**%s** has been added to the available maps list.", name),
		Color:       ColorSuccess,
		Footer:      "Added by " + byName,
		Timestamp:   ts(at),
	}}}
}

// MapRemoved はマップ削除の結果。
func MapRemoved(name, byName string, at time.Time) interaction.Response {
	return interaction.Response{Embeds: []interaction.Embed{{
		Title:       "🗑️ Map Removed Successfully",
		Description: fmt.Sprintf("**%s** has been removed from the available maps list.", name),
		Color:       ColorDanger,
		Footer:      "Removed by " + byName,
		Timestamp:   ts(at),
	}}}
}

// ChannelConfigured は投稿先チャンネル設定の結果。
func ChannelConfigured(channelID, byName string, at time.Time) interaction.Response {
	return interaction.Response{Embeds: []interaction.Embed{{
		Title:       "✅ Scrim Channel Set Successfully",
		Description: fmt.Sprintf("Scrim requests will now be posted in <#%s>", channelID),
		Color:       ColorSuccess,
		Fields: []interaction.EmbedField{
			{Name: "📍 Channel", Value: fmt.Sprintf("<#%s> (%s)", channelID, channelID)},
			{Name: "🎮 Ready to Use", Value: "Users can now create scrims with `/scrim`"},
		},
		Footer:    "Configured by " + byName,
		Timestamp: ts(at),
	}}}
}

// ChannelGreeting は投稿先に設定されたチャンネルへの案内メッセージ。
func ChannelGreeting() messaging.Message {
	return messaging.Message{Embeds: []interaction.Embed{{
		Title:       "🎮 CS2 Scrim Bot Configured",
		Description: "This channel has been set as the scrim channel!\n\nTeams can now use `/scrim` to post scrim requests here.",
		Color:       ColorInfo,
		Fields: []interaction.EmbedField{
			{Name: "🚀 Getting Started", Value: "Use `/scrim` to create your first scrim request"},
			{Name: "📋 View Scrims", Value: "Use `/scrimlist` to see all active scrims"},
			{Name: "🔔 Notifications", Value: "Use `/alert on` to get notified of new scrims"},
		},
	}}}
}

// SetupInfo は現在の設定と統計。
func SetupInfo(channelID string, activeScrims, maps int, at time.Time) interaction.Response {
	channel := "❌ Not configured"
	if channelID != "" {
		channel = fmt.Sprintf("<#%s> (%s)", channelID, channelID)
	}
	fields := []interaction.EmbedField{
		{Name: "📍 Scrim Channel", Value: channel},
		{Name: "👥 Admin Access", Value: "Anyone with Administrator permissions", Inline: true},
		{Name: "📊 Statistics", Value: fmt.Sprintf("**Active Scrims:** %d\n**Available Maps:** %d", activeScrims, maps), Inline: true},
		{Name: "🎮 Available Commands", Value: "`/scrim` - Create scrim request\n`/scrimlist` - View active scrims\n`/profile` - Manage team profile\n`/alert` - Notification settings"},
		{Name: "⚙️ Admin Commands", Value: "`/setup channel` - Set scrim channel\n`/editmaps` - Manage maps\n`/scrimclear` - Manual cleanup"},
	}
	if channelID == "" {
		fields = append(fields, interaction.EmbedField{
			Name:  "⚠️ Setup Required",
			Value: "Use `/setup channel #your-channel` to configure the scrim channel",
		})
	}
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "🔧 Bot Configuration",
			Description: "Current bot settings and status",
			Color:       ColorInfo,
			Fields:      fields,
			Timestamp:   ts(at),
		}},
		Ephemeral: true,
	}
}
