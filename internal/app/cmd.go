package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand はscrimbotのルートコマンドを生成する。
// サブコマンドを省略した場合はserveとして動作する。
func NewRootCommand(w io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scrimbot",
		Short:         "Scrim matchmaking bot",
		Long:          "Coordinates scrim requests in a Discord server: posting wizard, interest notifications and automatic cleanup.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(w)
		},
	}

	cmd.AddCommand(NewServeCommand(w))
	cmd.AddCommand(NewMigrateCommand(w))
	cmd.AddCommand(NewRegisterCommandsCommand(w))
	cmd.AddCommand(NewMapsCommand(w))
	cmd.AddCommand(NewHealthcheckCommand())

	return cmd
}

func serve(w io.Writer) error {
	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	slog.Info("starting application",
		slog.String("command", "serve"),
		slog.String("port", cfg.ServerPort),
	)
	return runServe(cfg)
}

// NewServeCommand はボット本体を起動するコマンドを生成する。
func NewServeCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Connect to the gateway and handle interactions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(w)
		},
	}
}

// NewMigrateCommand はマイグレーションを実行するコマンドを生成する。
func NewMigrateCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:           "migrate",
		Short:         "Apply pending database migrations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(w)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return runMigrate(cfg)
		},
	}
}

// NewRegisterCommandsCommand はスラッシュコマンドを登録するコマンドを生成する。
func NewRegisterCommandsCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:           "register-commands",
		Short:         "Register slash commands (guild-scoped when GUILD_ID is set)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(w)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return runRegisterCommands(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

// NewMapsCommand はマップカタログを管理するコマンドを生成する。
func NewMapsCommand(w io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maps",
		Short: "Manage the map catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import maps from a YAML file",
		Long: `Import maps from a YAML file of the form:

  maps:
    - Mirage
    - Train

Existing and invalid names are skipped.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open map file: %w", err)
			}
			defer f.Close()

			cfg, err := Init(w)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return runMapsImport(cmd.Context(), cfg, f, cmd.OutOrStdout())
		},
	})

	return cmd
}

// NewHealthcheckCommand はヘルスチェックコマンドを生成する。
// 軽量サブコマンドのため、設定の読み込みをスキップする。
func NewHealthcheckCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:           "healthcheck",
		Short:         "Probe the local /health endpoint (for container health checks)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealthcheck(port)
		},
	}

	defaultPort := os.Getenv("SERVER_PORT")
	if defaultPort == "" {
		defaultPort = "8080"
	}
	cmd.Flags().StringVar(&port, "port", defaultPort, "ops server port")

	return cmd
}
