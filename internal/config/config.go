package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Discord
	DiscordToken string
	DiscordAppID string
	GuildID      string   // 空の場合はグローバルコマンドとして登録する
	AdminIDs     []string // サーバー権限に関係なく管理者として扱うユーザー

	// Database
	DatabaseURL string

	// Scrim
	ScrimChannelID string // /setup channel で上書きされるまでの投稿先
	ScrimPostLimit int    // ユーザーごとの1時間あたりの投稿数

	// Cleanup
	CleanupSchedule     string
	CleanupStartupDelay time.Duration
	CleanupPacing       time.Duration
	StaleAfter          time.Duration

	// Notify
	NotifyMaxRecipients int
	NotifyRate          float64

	// Session
	SessionTTL           time.Duration // 0の場合は掃除しない
	SessionSweepInterval time.Duration

	// Server
	ServerPort string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
	if cfg.DiscordToken == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}

	cfg.DiscordAppID = os.Getenv("DISCORD_APP_ID")
	if cfg.DiscordAppID == "" {
		missing = append(missing, "DISCORD_APP_ID")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.GuildID = getEnvString("GUILD_ID", "")
	cfg.AdminIDs = getEnvList("ADMIN_IDS")
	cfg.ScrimChannelID = getEnvString("SCRIM_CHANNEL_ID", "")
	cfg.ScrimPostLimit = getEnvInt("SCRIM_POST_LIMIT", 5)
	cfg.CleanupSchedule = getEnvString("CLEANUP_INTERVAL", "0 */6 * * *")
	cfg.CleanupStartupDelay = getEnvDuration("CLEANUP_STARTUP_DELAY", 30*time.Second)
	cfg.CleanupPacing = getEnvDuration("CLEANUP_PACING", time.Second)
	cfg.StaleAfter = getEnvDuration("STALE_AFTER", 7*24*time.Hour)
	cfg.NotifyMaxRecipients = getEnvInt("NOTIFY_MAX_RECIPIENTS", 50)
	cfg.NotifyRate = getEnvFloat("NOTIFY_RATE", 5)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", time.Hour)
	cfg.SessionSweepInterval = getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの値を空要素を除いて返す。
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
