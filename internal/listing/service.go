// Package listing はアクティブなスクリムのページ送り一覧を提供する。
package listing

import (
	"context"
	"time"

	"github.com/hitoshi/scrimbot/internal/model"
	"github.com/hitoshi/scrimbot/internal/session"
)

// PageSize は1ページに表示する件数。
const PageSize = 5

// ScrimLister はアクティブなスクリムを新しい順に返す。
type ScrimLister interface {
	ListActive(ctx context.Context) ([]*model.Scrim, error)
}

// State はユーザーごとのページ送り状態。一覧はOpen/Refresh時点のスナップショット。
type State struct {
	Scrims []*model.Scrim
	Page   int
}

// Page は表示する1ページ分の結果。Pageは0始まり。
type Page struct {
	Items      []*model.Scrim
	Offset     int
	Total      int
	Page       int
	TotalPages int
	At         time.Time
}

// Service は一覧のページ送りを扱う。
type Service struct {
	scrims ScrimLister
	pages  *session.Store[State]
	now    func() time.Time
}

// NewService はServiceを生成する。pagesはセッション掃除の対象として外部と共有する。
func NewService(scrims ScrimLister, pages *session.Store[State]) *Service {
	return &Service{scrims: scrims, pages: pages, now: time.Now}
}

// Open は一覧を取得して先頭ページを返す。既存のページ状態は置き換える。
func (s *Service) Open(ctx context.Context, userID string) (*Page, error) {
	scrims, err := s.scrims.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	st := State{Scrims: scrims}
	s.pages.Put(userID, st)
	return s.page(st), nil
}

// Prev は前のページを返す。先頭ページでは先頭ページのまま。
func (s *Service) Prev(userID string) (*Page, error) {
	return s.move(userID, -1)
}

// Next は次のページを返す。最終ページでは最終ページのまま。
func (s *Service) Next(userID string) (*Page, error) {
	return s.move(userID, 1)
}

// Refresh は一覧を取得し直し、現在のページ位置を可能な範囲で維持する。
func (s *Service) Refresh(ctx context.Context, userID string) (*Page, error) {
	st, ok := s.pages.Get(userID)
	if !ok {
		return nil, model.NewListExpiredError()
	}
	scrims, err := s.scrims.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	st.Scrims = scrims
	st.Page = clamp(st.Page, totalPages(len(scrims)))
	s.pages.Put(userID, st)
	return s.page(st), nil
}

func (s *Service) move(userID string, delta int) (*Page, error) {
	var st State
	ok := s.pages.Update(userID, func(v *State) {
		v.Page = clamp(v.Page+delta, totalPages(len(v.Scrims)))
		st = *v
	})
	if !ok {
		return nil, model.NewListExpiredError()
	}
	return s.page(st), nil
}

func (s *Service) page(st State) *Page {
	total := len(st.Scrims)
	pages := totalPages(total)
	start := st.Page * PageSize
	end := min(start+PageSize, total)
	return &Page{
		Items:      st.Scrims[start:end],
		Offset:     start,
		Total:      total,
		Page:       st.Page,
		TotalPages: pages,
		At:         s.now(),
	}
}

func totalPages(n int) int {
	if n == 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

func clamp(page, pages int) int {
	if page < 0 {
		return 0
	}
	if page > pages-1 {
		return pages - 1
	}
	return page
}
