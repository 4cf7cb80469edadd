// Package session はユーザーごとの揮発性セッションを保持するインメモリストアを提供する。
// プロセス再起動で内容は失われる。
package session

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	touchedAt time.Time
}

// Store はユーザーIDをキーとするスレッドセーフなセッションストア。
// 1ユーザーにつき最大1件を保持し、後から書き込んだ値が優先される。
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]
	now     func() time.Time
}

// NewStore は空のStoreを生成する。
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		now:     time.Now,
	}
}

// Put はユーザーのセッションを置き換える。既存の値とはマージしない。
func (s *Store[T]) Put(userID string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = &entry[T]{value: v, touchedAt: s.now()}
}

// Get はユーザーのセッションを返す。
func (s *Store[T]) Get(userID string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Update は既存セッションにfnを適用する。fnはロック内で呼ばれる。
// セッションが存在しない場合はfnを呼ばずにfalseを返す。
func (s *Store[T]) Update(userID string, fn func(v *T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		return false
	}
	fn(&e.value)
	e.touchedAt = s.now()
	return true
}

// Remove はユーザーのセッションを削除する。存在しなくてもよい。
func (s *Store[T]) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len は保持しているセッション数を返す。
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep はolderThanより長く触られていないセッションを削除し、削除件数を返す。
// olderThanが0以下の場合は何もしない。
func (s *Store[T]) Sweep(olderThan time.Duration) int {
	if olderThan <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for id, e := range s.entries {
		if e.touchedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
