package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/turn"
	"github.com/iamasit07/connect4-engine/pkg/uid"
)

// MatchRecord describes one finished match.
type MatchRecord struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"sessionId"`
	Generation uint64            `json:"generation"`
	Mode       domain.GameMode   `json:"mode"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
	Opening    domain.Color      `json:"opening"`
	Players    [2]domain.Player  `json:"players"`
	Result     domain.Result     `json:"result"`
	Winner     domain.Color      `json:"winner"`
	Reason     string            `json:"reason"`
	Moves      int               `json:"moves"`
	Board      domain.Grid       `json:"board"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

type MatchRepository interface {
	SaveMatch(ctx context.Context, record MatchRecord) error
}

type MatchPublisher interface {
	PublishMatchFinished(ctx context.Context, record MatchRecord) error
}

type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot, ttl time.Duration) error
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// Options are shared by every session of a manager. Repo, Publisher and
// Cache are optional.
type Options struct {
	Strategist  turn.MoveChooser
	ThinkDelay  time.Duration
	Repo        MatchRepository
	Publisher   MatchPublisher
	Cache       SnapshotCache
	SnapshotTTL time.Duration
}

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	SessionID    string            `json:"sessionId"`
	Mode         domain.GameMode   `json:"mode,omitempty"`
	Difficulty   domain.Difficulty `json:"difficulty,omitempty"`
	Opening      domain.Color      `json:"opening"`
	StartedAt    time.Time         `json:"startedAt"`
	LastActivity time.Time         `json:"lastActivity"`
	turn.Status
}

// Session is one table: it owns the board, the coordinator that drives it and
// the match settings used by RestartGame.
type Session struct {
	ID        string
	CreatedAt time.Time

	coord *turn.Coordinator
	opts  Options

	mu           sync.Mutex
	mode         domain.GameMode
	difficulty   domain.Difficulty
	opening      domain.Color
	startedAt    time.Time
	lastActivity time.Time
	saving       sync.WaitGroup
}

func NewSession(id string, opts Options) *Session {
	schedule := turn.Immediate
	if opts.ThinkDelay > 0 {
		delay := opts.ThinkDelay
		schedule = func(task func()) {
			time.AfterFunc(delay, task)
		}
	}

	now := time.Now()
	s := &Session{
		ID:           id,
		CreatedAt:    now,
		opts:         opts,
		lastActivity: now,
	}
	s.coord = turn.NewCoordinator(domain.NewBoard(), opts.Strategist, schedule)
	s.coord.Subscribe(turn.ListenerFunc(s.onEvent))
	return s
}

// StartGame seats the players for the mode and begins a match. Any match in
// progress is discarded.
func (s *Session) StartGame(mode domain.GameMode, opening domain.Color, difficulty domain.Difficulty) error {
	if !opening.IsPlayer() {
		return domain.ErrInvalidColor
	}
	if mode != domain.PlayerVsPlayer {
		if _, err := domain.ParseDifficulty(string(difficulty)); err != nil {
			return err
		}
	} else {
		difficulty = ""
	}
	players, err := domain.PlayersForMode(mode, difficulty)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mode, s.difficulty, s.opening = mode, difficulty, opening
	s.startedAt = time.Now()
	s.lastActivity = s.startedAt
	s.mu.Unlock()

	if err := s.coord.Start(players, opening); err != nil {
		return fmt.Errorf("start %s game: %w", mode, err)
	}
	opener := players[0]
	if players[1].Color == opening {
		opener = players[1]
	}
	if mode == domain.PlayerVsPlayer {
		log.Printf("[SESSION] %s started %s game, %s (%s) opens", s.ID, mode, opener.Name(), opening)
	} else {
		log.Printf("[SESSION] %s started %s game against %s (%s), %s (%s) opens",
			s.ID, mode, domain.GetBotName(difficulty), difficulty, opener.Name(), opening)
	}
	return nil
}

// RestartGame replays the last StartGame on a fresh board.
func (s *Session) RestartGame() error {
	s.mu.Lock()
	opening := s.opening
	s.startedAt = time.Now()
	s.lastActivity = s.startedAt
	s.mu.Unlock()

	if err := s.coord.Restart(opening); err != nil {
		return err
	}
	log.Printf("[SESSION] %s restarted", s.ID)
	return nil
}

func (s *Session) Stop() {
	s.coord.Stop()
}

func (s *Session) SetPaused(paused bool) {
	s.touch()
	s.coord.SetPaused(paused)
}

func (s *Session) RequestColumnDrop(column int) (turn.Placement, bool, error) {
	s.touch()
	return s.coord.RequestColumnDrop(column)
}

func (s *Session) NotifyDiskSettled(generation uint64, row, column int) error {
	s.touch()
	return s.coord.NotifyDiskSettled(generation, row, column)
}

func (s *Session) GetCurrentPlayer() (domain.Player, bool) {
	return s.coord.GetCurrentPlayer()
}

func (s *Session) GetCell(row, column int) (domain.Color, error) {
	return s.coord.GetCell(row, column)
}

func (s *Session) IsColumnFull(column int) (bool, error) {
	return s.coord.IsColumnFull(column)
}

func (s *Session) Subscribe(l turn.Listener) func() {
	return s.coord.Subscribe(l)
}

func (s *Session) Snapshot() Snapshot {
	status := s.coord.Status()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SessionID:    s.ID,
		Mode:         s.mode,
		Difficulty:   s.difficulty,
		Opening:      s.opening,
		StartedAt:    s.startedAt,
		LastActivity: s.lastActivity,
		Status:       status,
	}
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Wait blocks until background saves of finished matches are done.
func (s *Session) Wait() {
	s.saving.Wait()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Session) onEvent(ev turn.Event) {
	switch ev.Type {
	case turn.EventGameOver:
		s.finish(ev)
	case turn.EventTurnChanged:
		s.cacheSnapshot()
	}
}

func (s *Session) cacheSnapshot() {
	if s.opts.Cache == nil {
		return
	}
	snapshot := s.Snapshot()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.opts.Cache.SaveSnapshot(ctx, snapshot, s.opts.SnapshotTTL); err != nil {
		log.Printf("[SESSION] Could not cache snapshot of %s: %v", s.ID, err)
	}
}

// finish hands the finished match to the repository and publisher in the
// background so the game_over event is not held up by I/O. The final position
// comes from the event; the live board may already belong to the next match.
func (s *Session) finish(ev turn.Event) {
	if ev.Outcome == nil {
		return
	}
	out := ev.Outcome
	mode, difficulty := domain.ModeForPlayers(out.Players)

	record := MatchRecord{
		ID:         uid.GenerateMatchID(),
		SessionID:  s.ID,
		Generation: ev.Generation,
		Mode:       mode,
		Difficulty: difficulty,
		Opening:    out.Opening,
		Players:    out.Players,
		Result:     ev.Result,
		Winner:     ev.Result.Winner,
		Reason:     reasonFor(ev.Result),
		Moves:      out.Moves,
		Board:      out.Board,
		StartedAt:  out.StartedAt,
		FinishedAt: time.Now(),
	}
	log.Printf("[SESSION] %s finished: %s (%s) after %d moves", s.ID, ev.Message, record.Reason, record.Moves)

	s.cacheSnapshot()

	if s.opts.Repo == nil && s.opts.Publisher == nil {
		return
	}
	s.saving.Add(1)
	go func() {
		defer s.saving.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.opts.Repo != nil {
			if err := s.opts.Repo.SaveMatch(ctx, record); err != nil {
				log.Printf("[SESSION] Error saving match of %s: %v", s.ID, err)
			} else {
				log.Printf("[SESSION] Match of %s saved successfully", s.ID)
			}
		}
		if s.opts.Publisher != nil {
			if err := s.opts.Publisher.PublishMatchFinished(ctx, record); err != nil {
				log.Printf("[SESSION] Error publishing match of %s: %v", s.ID, err)
			}
		}
	}()
}

func reasonFor(result domain.Result) string {
	switch result.Kind {
	case domain.ResultWin:
		return "connect_four"
	case domain.ResultDraw:
		return "draw"
	}
	return "abandoned"
}
