// Package catalog は管理者が管理するマップカタログを扱う。
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/repository"
)

// Service はマップカタログの参照と変更を提供する。
type Service struct {
	repo   repository.MapRepository
	logger *slog.Logger
}

// NewService はServiceを生成する。
func NewService(repo repository.MapRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List は登録済みマップを名前順に返す。
func (s *Service) List(ctx context.Context) ([]model.MapEntry, error) {
	return s.repo.List(ctx)
}

// Names は登録済みマップ名を名前順に返す。
func (s *Service) Names(ctx context.Context) ([]string, error) {
	maps, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(maps))
	for i, m := range maps {
		names[i] = m.Name
	}
	return names, nil
}

// find は大文字小文字を区別せずにマップを探し、登録済みの表記を返す。
func (s *Service) find(ctx context.Context, name string) (string, bool, error) {
	names, err := s.Names(ctx)
	if err != nil {
		return "", false, err
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, true, nil
		}
	}
	return "", false, nil
}

// Add はマップを登録し、正規化後の名前を返す。
// 大文字小文字だけが異なる名前は重複として扱う。
func (s *Service) Add(ctx context.Context, name string) (string, error) {
	name = model.NormalizeInput(name)
	if err := model.ValidateLength("Map name", name, model.MinMapNameLen, model.MaxMapNameLen); err != nil {
		return "", err
	}

	if existing, found, err := s.find(ctx, name); err != nil {
		return "", err
	} else if found {
		return "", model.NewMapExistsError(existing)
	}

	added, err := s.repo.Add(ctx, name)
	if err != nil {
		return "", err
	}
	if !added {
		return "", model.NewMapExistsError(name)
	}

	s.logger.Info("map added", slog.String("map", name))
	return name, nil
}

// Remove はマップを削除し、削除した登録済みの名前を返す。
func (s *Service) Remove(ctx context.Context, name string) (string, error) {
	name = model.NormalizeInput(name)

	existing, found, err := s.find(ctx, name)
	if err != nil {
		return "", err
	}
	if !found {
		return "", model.NewMapNotFoundError(name)
	}

	removed, err := s.repo.Remove(ctx, existing)
	if err != nil {
		return "", err
	}
	if !removed {
		return "", model.NewMapNotFoundError(existing)
	}

	s.logger.Info("map removed", slog.String("map", existing))
	return existing, nil
}

// ImportFile はマップ一覧のYAMLファイルの形式。
//
//	maps:
//	  - Mirage
//	  - Train
type ImportFile struct {
	Maps []string `yaml:"maps"`
}

// ImportResult は一括登録の結果。
type ImportResult struct {
	Added   []string
	Skipped []string // 既存または不正な名前
}

// Import はYAMLからマップを一括登録する。
// 既存の名前や長さ制限に違反する名前はスキップし、処理を継続する。
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var file ImportFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode map file: %w", err)
	}

	result := &ImportResult{}
	for _, name := range file.Maps {
		added, err := s.Add(ctx, name)
		if err != nil {
			if _, ok := model.AsAppError(err); ok {
				result.Skipped = append(result.Skipped, model.NormalizeInput(name))
				continue
			}
			return result, err
		}
		result.Added = append(result.Added, added)
	}

	s.logger.Info("map import completed",
		slog.Int("added", len(result.Added)),
		slog.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}
