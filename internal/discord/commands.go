package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/hitoshi/scrimbot/internal/interaction"
)

var adminPermission int64 = discordgo.PermissionAdministrator

func subcommand(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     opts,
	}
}

// ApplicationCommands は登録するスラッシュコマンドの定義を返す。
func ApplicationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        string(interaction.CommandScrim),
			Description: "Create a new scrim request",
		},
		{
			Name:        string(interaction.CommandScrimList),
			Description: "View all active scrim requests",
		},
		{
			Name:                     string(interaction.CommandScrimClear),
			Description:              "Clean up scrim requests older than one week (Admin only)",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:        string(interaction.CommandAlert),
			Description: "Manage scrim alert notifications",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand(interaction.SubAlertOn, "Enable DM notifications for new scrims"),
				subcommand(interaction.SubAlertOff, "Disable DM notifications for new scrims"),
				subcommand(interaction.SubAlertStatus, "Check your current alert status"),
			},
		},
		{
			Name:        string(interaction.CommandProfile),
			Description: "Manage your saved team profile",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand(interaction.SubProfileView, "View your saved team profile"),
				subcommand(interaction.SubProfileEdit, "Create or edit your team profile"),
			},
		},
		{
			Name:                     string(interaction.CommandEditMaps),
			Description:              "Manage the map pool (Admin only)",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand(interaction.SubMapsAdd, "Add a new map to the pool", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        interaction.OptionMapName,
					Description: "Name of the map to add",
					Required:    true,
				}),
				subcommand(interaction.SubMapsRemove, "Remove a map from the pool", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        interaction.OptionMapName,
					Description: "Name of the map to remove",
					Required:    true,
				}),
				subcommand(interaction.SubMapsList, "List all available maps"),
			},
		},
		{
			Name:                     string(interaction.CommandSetup),
			Description:              "Configure the bot for this server (Admin only)",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand(interaction.SubSetupChannel, "Set the channel where scrim requests are posted", &discordgo.ApplicationCommandOption{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         interaction.OptionChannel,
					Description:  "The channel to post scrim requests in",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				}),
				subcommand(interaction.SubSetupInfo, "Show the current bot configuration"),
			},
		},
	}
}

// RegisterCommands はコマンド定義を一括で上書き登録する。
// guildIDが空の場合はグローバルコマンドとして登録する。
func RegisterCommands(ctx context.Context, session *discordgo.Session, appID, guildID string) (int, error) {
	registered, err := session.ApplicationCommandBulkOverwrite(appID, guildID, ApplicationCommands(), discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("register commands: %w", err)
	}
	return len(registered), nil
}
