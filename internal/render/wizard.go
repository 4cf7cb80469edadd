package render

import (
	"fmt"

	"github.com/hitoshi/scrimbot/internal/interaction"
	"github.com/hitoshi/scrimbot/internal/model"
)

// ProfileChoice は保存済みプロフィールを使うか選ぶプロンプト。
func ProfileChoice(p *model.Profile) interaction.Response {
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title: "🎯 Create Scrim Request",
			Description: fmt.Sprintf(
				"Found your saved profile!\n\n**Team:** %s\n**Division:** %s\n\nWould you like to use your saved profile or create a new one?",
				p.TeamName, p.Division,
			),
			Color: ColorInfo,
		}},
		Components: []interaction.Row{{Buttons: []interaction.Button{
			btn(interaction.ActionUseProfile, "Use Saved Profile", "⚡", interaction.ButtonPrimary),
			btn(interaction.ActionNewScrim, "Create New", "📝", interaction.ButtonSecondary),
		}}},
		Ephemeral: true,
	}
}

// BasicInfoForm はチーム名・ディビジョン・日時の入力フォーム。
// teamとdivisionが空でなければ初期値として設定する。
func BasicInfoForm(team, division string) interaction.Modal {
	return interaction.Modal{
		Action: interaction.Action{Kind: interaction.ActionBasicInfoSubmit},
		Title:  "Scrim Request - Basic Info",
		Inputs: []interaction.TextInput{
			{ID: interaction.FieldTeamName, Label: "Team Name", Value: team, Required: true, MaxLength: model.MaxTeamNameLen},
			{ID: interaction.FieldDivision, Label: "Division", Value: division, Required: true, MaxLength: model.MaxDivisionLen},
			{ID: interaction.FieldScrimDate, Label: "Date (DD/MM/YYYY)", Placeholder: "29/08/2025", Required: true},
			{ID: interaction.FieldScrimTime, Label: "Time (HH:MM AM/PM Timezone)", Placeholder: "7:00 PM ACDT", Required: true},
		},
	}
}

// MapChunk はマップ選択メニュー1つ分の選択肢。
type MapChunk struct {
	Index     int
	Options   []string
	MaxValues int
}

// MapSelect はマップ選択のプロンプト。チャンクごとにメニューを1行使う。
func MapSelect(chunks []MapChunk) interaction.Response {
	rows := make([]interaction.Row, 0, len(chunks))
	for _, c := range chunks {
		opts := make([]interaction.SelectOption, 0, len(c.Options))
		for _, name := range c.Options {
			opts = append(opts, interaction.SelectOption{Label: name, Value: name, Emoji: "🗺️"})
		}
		rows = append(rows, interaction.Row{Select: &interaction.Select{
			Action:      interaction.Action{Kind: interaction.ActionMapSelect, Index: c.Index},
			Placeholder: "Choose maps...",
			MinValues:   1,
			MaxValues:   c.MaxValues,
			Options:     opts,
		}})
	}
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "🗺️ Select Maps",
			Description: "Choose the maps you want to play (you can select multiple):",
			Color:       ColorInfo,
		}},
		Components: rows,
		Ephemeral:  true,
	}
}

// ServerSelect はサーバー有無を尋ねるプロンプト。
func ServerSelect() interaction.Response {
	return interaction.Response{
		Embeds: []interaction.Embed{{
			Title:       "🌐 Server Availability",
			Description: "Do you have a server available for this scrim?",
			Color:       ColorInfo,
		}},
		Components: []interaction.Row{{Buttons: []interaction.Button{
			btn(interaction.ActionServerYes, "Yes, I have a server", "✅", interaction.ButtonSuccess),
			btn(interaction.ActionServerNo, "No, need a server", "❌", interaction.ButtonDanger),
		}}},
		Ephemeral: true,
	}
}

// Publishing は投稿処理中に表示する応答。
func Publishing() interaction.Response {
	return interaction.Response{Content: "⏳ Posting your scrim request...", Components: []interaction.Row{}, Ephemeral: true}
}

// Published は投稿完了の応答。
func Published(channelID, threadID string) interaction.Response {
	content := fmt.Sprintf("✅ **Scrim request posted successfully!**\n\n📍 **Posted in:** <#%s>\n", channelID)
	if threadID != "" {
		content += fmt.Sprintf("🧵 **Discussion thread:** <#%s>\n", threadID)
	}
	content += "\nOther teams can now show interest and coordinate with you!"
	return interaction.Response{Content: content, Embeds: []interaction.Embed{}, Components: []interaction.Row{}, Ephemeral: true}
}

// PublishFailed は投稿に失敗した場合の応答。下書きは残っているため再試行できる。
func PublishFailed() interaction.Response {
	return interaction.Response{
		Content: "❌ Failed to create scrim post. Please try again.",
		Components: []interaction.Row{{Buttons: []interaction.Button{
			btn(interaction.ActionServerYes, "Retry (server available)", "🔁", interaction.ButtonSuccess),
			btn(interaction.ActionServerNo, "Retry (need a server)", "🔁", interaction.ButtonDanger),
		}}},
		Ephemeral: true,
	}
}
