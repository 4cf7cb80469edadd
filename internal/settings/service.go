// Package settings は実行時に変更できるボット設定を扱う。
package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/repository"
)

// Service は投稿先チャンネルなどの実行時設定を管理する。
// データベースに値がない場合は起動時の環境変数の値を使う。
type Service struct {
	repo            repository.SettingRepository
	fallbackChannel string
	logger          *slog.Logger
}

// NewService はServiceを生成する。
func NewService(repo repository.SettingRepository, fallbackChannel string, logger *slog.Logger) *Service {
	return &Service{repo: repo, fallbackChannel: fallbackChannel, logger: logger}
}

// ScrimChannel は投稿先チャンネルIDを返す。未設定の場合は空文字を返す。
func (s *Service) ScrimChannel(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, model.SettingScrimChannelID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve scrim channel: %w", err)
	}
	if v != "" {
		return v, nil
	}
	return s.fallbackChannel, nil
}

// SetScrimChannel は投稿先チャンネルIDを保存する。
func (s *Service) SetScrimChannel(ctx context.Context, channelID string) error {
	if channelID == "" {
		return model.NewValidationError("Please select a text channel.")
	}
	if err := s.repo.Set(ctx, model.SettingScrimChannelID, channelID); err != nil {
		return err
	}
	s.logger.Info("scrim channel configured", slog.String("channel_id", channelID))
	return nil
}
