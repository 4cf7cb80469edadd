// Package profile はスクリム作成を簡単にする保存済みチームプロフィールを扱う。
package profile

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/repository"
)

// Service はプロフィールの参照と保存を提供する。
type Service struct {
	repo   repository.ProfileRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.ProfileRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Get はプロフィールを返す。未登録の場合はnilを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return s.repo.Find(ctx, userID)
}

// Save は入力を正規化・検証してプロフィールを保存する。
func (s *Service) Save(ctx context.Context, userID, teamName, division string) (*model.Profile, error) {
	teamName = model.NormalizeInput(teamName)
	division = model.NormalizeInput(division)

	if err := model.ValidateLength("Team name", teamName, model.MinProfileFieldLen, model.MaxTeamNameLen); err != nil {
		return nil, err
	}
	if err := model.ValidateLength("Division", division, model.MinProfileFieldLen, model.MaxDivisionLen); err != nil {
		return nil, err
	}

	p := &model.Profile{
		UserID:    userID,
		TeamName:  teamName,
		Division:  division,
		UpdatedAt: s.now(),
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("profile saved", slog.String("user_id", userID))
	return p, nil
}
