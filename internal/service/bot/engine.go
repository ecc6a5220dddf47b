package bot

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

// Strategist picks a column for an AI player. It only reads the board, apart
// from hypothetical disks that are removed before it returns.
type Strategist struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStrategist uses rng for every random choice. A nil rng is seeded from the clock.
func NewStrategist(rng *rand.Rand) *Strategist {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Strategist{rng: rng}
}

// ChooseColumn selects the best move based on difficulty
func (s *Strategist) ChooseColumn(board *domain.Board, me domain.Color, difficulty domain.Difficulty) (int, error) {
	if !me.IsPlayer() {
		return -1, domain.ErrInvalidColor
	}
	if len(board.ValidColumns()) == 0 {
		log.Printf("[BOT] %s has no legal move on a full board", me)
		return -1, domain.ErrNoLegalMove
	}

	var column int
	switch difficulty {
	case domain.Easy:
		column = s.easyColumn(board)
	case domain.Medium:
		column = s.mediumColumn(board, me)
	case domain.Hard:
		column = s.hardColumn(board, me)
	default:
		return -1, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, difficulty)
	}

	if column < 0 {
		return -1, domain.ErrNoLegalMove
	}
	return column, nil
}

func (s *Strategist) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// winningColumn returns the first column where a disk of the given color
// completes a line, or -1.
func winningColumn(board *domain.Board, color domain.Color) int {
	for _, col := range board.ValidColumns() {
		won, err := board.Simulate(col, color, func(row int) bool {
			return board.CheckWin(row, col, color)
		})
		if err == nil && won {
			return col
		}
	}
	return -1
}
