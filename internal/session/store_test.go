package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draft struct {
	Team string
	Maps string
}

func TestStore_PutGetRemove(t *testing.T) {
	s := NewStore[draft]()

	_, ok := s.Get("u1")
	assert.False(t, ok)

	s.Put("u1", draft{Team: "Alpha"})
	got, ok := s.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "Alpha", got.Team)
	assert.Equal(t, 1, s.Len())

	s.Remove("u1")
	_, ok = s.Get("u1")
	assert.False(t, ok)

	// 存在しないキーの削除はエラーにならない
	s.Remove("u1")
	assert.Equal(t, 0, s.Len())
}

func TestStore_PutOverwritesWithoutMerge(t *testing.T) {
	s := NewStore[draft]()
	s.Put("u1", draft{Team: "Alpha", Maps: "Mirage"})
	s.Put("u1", draft{Team: "Bravo"})

	got, ok := s.Get("u1")
	require.True(t, ok)
	assert.Equal(t, draft{Team: "Bravo"}, got, "後の書き込みが前の値を完全に置き換えること")
}

func TestStore_Update(t *testing.T) {
	s := NewStore[draft]()

	assert.False(t, s.Update("u1", func(d *draft) { d.Maps = "x" }), "存在しないセッションは更新しないこと")
	assert.Equal(t, 0, s.Len())

	s.Put("u1", draft{Team: "Alpha"})
	assert.True(t, s.Update("u1", func(d *draft) { d.Maps = "Mirage, Dust2" }))

	got, _ := s.Get("u1")
	assert.Equal(t, "Mirage, Dust2", got.Maps)
	assert.Equal(t, "Alpha", got.Team)
}

func TestStore_Sweep(t *testing.T) {
	s := NewStore[draft]()
	current := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.Put("old", draft{})
	current = current.Add(50 * time.Minute)
	s.Put("new", draft{})
	current = current.Add(20 * time.Minute)

	assert.Equal(t, 0, s.Sweep(0), "TTL 0は掃除を無効にすること")
	assert.Equal(t, 1, s.Sweep(time.Hour))

	_, ok := s.Get("old")
	assert.False(t, ok)
	_, ok = s.Get("new")
	assert.True(t, ok)
}

func TestStore_UpdateRefreshesTouchedAt(t *testing.T) {
	s := NewStore[draft]()
	current := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.Put("u1", draft{})
	current = current.Add(50 * time.Minute)
	s.Update("u1", func(d *draft) { d.Maps = "Nuke" })
	current = current.Add(20 * time.Minute)

	assert.Equal(t, 0, s.Sweep(time.Hour))
}

func TestStore_ConcurrentUsers(t *testing.T) {
	s := NewStore[draft]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("u%d", i)
			s.Put(id, draft{Team: id})
			s.Update(id, func(d *draft) { d.Maps = "Mirage" })
			got, ok := s.Get(id)
			assert.True(t, ok)
			assert.Equal(t, id, got.Team)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}

func TestSweeper_SweepOnceLogsAndReports(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	s := NewStore[draft]()
	current := time.Now()
	s.now = func() time.Time { return current }
	s.Put("u1", draft{})
	current = current.Add(2 * time.Hour)

	reported := -1
	sw := NewSweeper(map[string]Sweepable{"wizard": s}, time.Hour, time.Minute, logger,
		func(name string, remaining int) { reported = remaining })

	assert.Equal(t, 1, sw.SweepOnce())
	assert.Equal(t, 0, reported)
	assert.Contains(t, buf.String(), "期限切れセッションを削除しました")
}

func TestSweeper_StartDisabledReturnsImmediately(t *testing.T) {
	sw := NewSweeper(nil, 0, time.Minute, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)), nil)

	done := make(chan struct{})
	go func() {
		sw.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TTL 0のSweeperは即座に終了すべき")
	}
}
