package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/bot"
	"github.com/iamasit07/connect4-engine/internal/service/turn"
)

type fakeRepo struct {
	mu      sync.Mutex
	records []MatchRecord
	err     error
}

func (r *fakeRepo) SaveMatch(ctx context.Context, record MatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return r.err
}

func (r *fakeRepo) saved() []MatchRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MatchRecord(nil), r.records...)
}

type fakePublisher struct {
	mu  sync.Mutex
	ids []string
}

func (p *fakePublisher) PublishMatchFinished(ctx context.Context, record MatchRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, record.ID)
	return nil
}

type fakeCache struct {
	mu        sync.Mutex
	snapshots map[string]Snapshot
	deleted   []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{snapshots: make(map[string]Snapshot)}
}

func (c *fakeCache) SaveSnapshot(ctx context.Context, snapshot Snapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snapshot.SessionID] = snapshot
	return nil
}

func (c *fakeCache) DeleteSnapshot(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, sessionID)
	c.deleted = append(c.deleted, sessionID)
	return nil
}

func (c *fakeCache) get(sessionID string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snapshots[sessionID]
	return snap, ok
}

func testOptions() Options {
	return Options{Strategist: bot.NewStrategist(rand.New(rand.NewSource(1)))}
}

func play(t *testing.T, s *Session, columns ...int) {
	t.Helper()
	for _, col := range columns {
		placed, accepted, err := s.RequestColumnDrop(col)
		require.NoError(t, err)
		require.True(t, accepted, "column %d not accepted", col)
		require.NoError(t, s.NotifyDiskSettled(placed.Generation, placed.Row, placed.Column))
	}
}

func TestStartGameValidatesSettings(t *testing.T) {
	s := NewSession("t1", testOptions())

	err := s.StartGame(domain.GameMode("solo"), domain.Blue, domain.Easy)
	assert.ErrorIs(t, err, domain.ErrInvalidMode)

	err = s.StartGame(domain.PlayerVsComputer, domain.Blue, domain.Difficulty("brutal"))
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)

	err = s.StartGame(domain.PlayerVsPlayer, domain.None, "")
	assert.ErrorIs(t, err, domain.ErrInvalidColor)

	require.NoError(t, s.StartGame(domain.PlayerVsPlayer, domain.Red, domain.Hard))
	snap := s.Snapshot()
	assert.Equal(t, domain.PlayerVsPlayer, snap.Mode)
	assert.Empty(t, snap.Difficulty)
	assert.Equal(t, domain.Red, snap.Current.Color)
	assert.Equal(t, turn.StateAwaitingMove, snap.State)
}

func TestFinishedMatchIsSavedAndPublished(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	opts := testOptions()
	opts.Repo, opts.Publisher = repo, pub

	s := NewSession("t2", opts)
	require.NoError(t, s.StartGame(domain.PlayerVsPlayer, domain.Blue, ""))
	play(t, s, 0, 6, 1, 6, 2, 6, 3)
	s.Wait()

	records := repo.saved()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "t2", rec.SessionID)
	assert.Equal(t, domain.Blue, rec.Winner)
	assert.Equal(t, "connect_four", rec.Reason)
	assert.Equal(t, 7, rec.Moves)
	assert.Equal(t, domain.Blue, rec.Board[0][3])
	assert.False(t, rec.FinishedAt.Before(rec.StartedAt))

	pub.mu.Lock()
	assert.Equal(t, []string{rec.ID}, pub.ids)
	pub.mu.Unlock()
}

func TestFinishedMatchKeepsItsOwnPosition(t *testing.T) {
	repo := &fakeRepo{}
	opts := testOptions()
	opts.Repo = repo

	s := NewSession("t2b", opts)
	var over []turn.Event
	s.Subscribe(turn.ListenerFunc(func(ev turn.Event) {
		if ev.Type == turn.EventGameOver {
			over = append(over, ev)
		}
	}))
	require.NoError(t, s.StartGame(domain.PlayerVsPlayer, domain.Blue, ""))
	play(t, s, 0, 6, 1, 6, 2, 6, 3)
	s.Wait()
	require.Len(t, over, 1)

	// A new match starts before the old outcome is recorded again.
	require.NoError(t, s.StartGame(domain.PlayerVsComputer, domain.Red, domain.Hard))
	s.finish(over[0])
	s.Wait()

	records := repo.saved()
	require.Len(t, records, 2)
	late := records[1]
	assert.Equal(t, over[0].Generation, late.Generation)
	assert.Equal(t, domain.PlayerVsPlayer, late.Mode)
	assert.Empty(t, late.Difficulty)
	assert.Equal(t, domain.Blue, late.Opening)
	assert.Equal(t, 7, late.Moves)
	assert.Equal(t, domain.Blue, late.Board[0][3])
	assert.Equal(t, records[0].StartedAt, late.StartedAt)
}

func TestSaveErrorDoesNotDisturbSession(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	opts := testOptions()
	opts.Repo = repo

	s := NewSession("t3", opts)
	require.NoError(t, s.StartGame(domain.PlayerVsPlayer, domain.Blue, ""))
	play(t, s, 0, 6, 1, 6, 2, 6, 3)
	s.Wait()

	assert.Len(t, repo.saved(), 1)
	assert.Equal(t, turn.StateTerminal, s.Snapshot().State)
}

func TestSnapshotCachedAfterEachMove(t *testing.T) {
	cache := newFakeCache()
	opts := testOptions()
	opts.Cache = cache

	s := NewSession("t4", opts)
	require.NoError(t, s.StartGame(domain.PlayerVsPlayer, domain.Blue, ""))
	play(t, s, 3, 4)

	snap, ok := cache.get("t4")
	require.True(t, ok)
	assert.Equal(t, 2, snap.Moves)
	assert.Equal(t, domain.Blue, snap.Current.Color)
	assert.Equal(t, domain.Red, snap.Board[0][4])
}

func TestRestartGameKeepsSettings(t *testing.T) {
	s := NewSession("t5", testOptions())
	assert.ErrorIs(t, s.RestartGame(), domain.ErrNoGame)

	require.NoError(t, s.StartGame(domain.PlayerVsComputer, domain.Blue, domain.Medium))
	play(t, s, 3)
	before := s.Snapshot()

	require.NoError(t, s.RestartGame())
	after := s.Snapshot()
	assert.Equal(t, before.Generation+1, after.Generation)
	assert.Equal(t, 0, after.Moves)
	assert.Equal(t, domain.Medium, after.Difficulty)
	assert.Equal(t, domain.Blue, after.Current.Color)
}

func TestThinkDelayDefersAIMove(t *testing.T) {
	opts := testOptions()
	opts.ThinkDelay = 20 * time.Millisecond

	s := NewSession("t6", opts)
	require.NoError(t, s.StartGame(domain.PlayerVsComputer, domain.Red, domain.Hard))
	assert.Equal(t, turn.StateAwaitingMove, s.Snapshot().State)

	assert.Eventually(t, func() bool {
		return s.Snapshot().State == turn.StateAwaitingSettle
	}, time.Second, 5*time.Millisecond)

	snap := s.Snapshot()
	require.NotNil(t, snap.Pending)
	assert.Equal(t, domain.Red, snap.Pending.Color)
	assert.Equal(t, 3, snap.Pending.Column)
}

func TestStopDiscardsDelayedAIMove(t *testing.T) {
	opts := testOptions()
	opts.ThinkDelay = 20 * time.Millisecond

	s := NewSession("t7", opts)
	require.NoError(t, s.StartGame(domain.PlayerVsComputer, domain.Red, domain.Easy))
	s.Stop()

	time.Sleep(60 * time.Millisecond)
	snap := s.Snapshot()
	assert.Equal(t, turn.StateIdle, snap.State)
	assert.Equal(t, 0, snap.Moves)
}

func TestRequestColumnDropTouchesActivity(t *testing.T) {
	s := NewSession("t8", testOptions())
	require.NoError(t, s.StartGame(domain.PlayerVsPlayer, domain.Blue, ""))

	s.mu.Lock()
	s.lastActivity = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	play(t, s, 2)
	assert.WithinDuration(t, time.Now(), s.LastActivity(), time.Second)
}
