package bot

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

var difficulties = []domain.Difficulty{domain.Easy, domain.Medium, domain.Hard}

func newSeeded(seed int64) *Strategist {
	return NewStrategist(rand.New(rand.NewSource(seed)))
}

func drop(t *testing.T, b *domain.Board, color domain.Color, columns ...int) {
	t.Helper()
	for _, col := range columns {
		_, err := b.Drop(col, color)
		require.NoError(t, err)
	}
}

func TestColumnPriorityStartsAtCenter(t *testing.T) {
	assert.Equal(t, []int{3, 2, 4, 1, 5, 0, 6}, columnPriority)
	assert.Equal(t, []int{2, 1, 3, 0, 4}, centerOut(5))
}

func TestEasyIsReproducibleWithSeed(t *testing.T) {
	b := domain.NewBoard()
	drop(t, b, domain.Red, 0, 0, 0, 0, 0, 0)

	first := make([]int, 0, 20)
	s := newSeeded(7)
	for i := 0; i < 20; i++ {
		col, err := s.ChooseColumn(b, domain.Blue, domain.Easy)
		require.NoError(t, err)
		assert.NotEqual(t, 0, col, "full column chosen")
		first = append(first, col)
	}

	s = newSeeded(7)
	for i := 0; i < 20; i++ {
		col, err := s.ChooseColumn(b, domain.Blue, domain.Easy)
		require.NoError(t, err)
		assert.Equal(t, first[i], col)
	}
}

func TestBlocksVerticalThreat(t *testing.T) {
	for _, d := range []domain.Difficulty{domain.Medium, domain.Hard} {
		for seed := int64(0); seed < 25; seed++ {
			b := domain.NewBoard()
			drop(t, b, domain.Red, 0, 0, 0)
			drop(t, b, domain.Blue, 5)

			col, err := newSeeded(seed).ChooseColumn(b, domain.Blue, d)
			require.NoError(t, err)
			assert.Equal(t, 0, col, "difficulty %s seed %d", d, seed)
		}
	}
}

func TestBlocksHorizontalThreat(t *testing.T) {
	b := domain.NewBoard()
	drop(t, b, domain.Red, 2, 3, 4)
	drop(t, b, domain.Blue, 2, 3)

	// Red wins at column 1 or 5; the first one found is blocked.
	col, err := newSeeded(1).ChooseColumn(b, domain.Blue, domain.Medium)
	require.NoError(t, err)
	assert.Contains(t, []int{1, 5}, col)
}

func TestHardPrefersOwnWinOverBlock(t *testing.T) {
	b := domain.NewBoard()
	drop(t, b, domain.Red, 0, 0, 0)
	drop(t, b, domain.Blue, 6, 6, 6)

	col, err := newSeeded(3).ChooseColumn(b, domain.Blue, domain.Hard)
	require.NoError(t, err)
	assert.Equal(t, 6, col)

	// Medium only blocks.
	col, err = newSeeded(3).ChooseColumn(b, domain.Blue, domain.Medium)
	require.NoError(t, err)
	assert.Equal(t, 0, col)
}

func TestHardFallsBackToCenter(t *testing.T) {
	b := domain.NewBoard()
	col, err := newSeeded(0).ChooseColumn(b, domain.Red, domain.Hard)
	require.NoError(t, err)
	assert.Equal(t, 3, col)

	drop(t, b, domain.Blue, 3, 3)
	drop(t, b, domain.Red, 3, 3)
	drop(t, b, domain.Blue, 3)
	drop(t, b, domain.Red, 3)

	col, err = newSeeded(0).ChooseColumn(b, domain.Blue, domain.Hard)
	require.NoError(t, err)
	assert.Equal(t, 2, col)
}

func TestNoLegalMoveOnFullBoard(t *testing.T) {
	b := domain.NewBoard()
	order := []domain.Color{domain.Blue, domain.Blue, domain.Red, domain.Red, domain.Blue, domain.Blue, domain.Red}
	for row := 0; row < domain.Rows; row++ {
		for col := 0; col < domain.Columns; col++ {
			color := order[col]
			if row%2 == 1 {
				color = color.Opponent()
			}
			_, err := b.Drop(col, color)
			require.NoError(t, err)
		}
	}

	for _, d := range difficulties {
		col, err := newSeeded(0).ChooseColumn(b, domain.Red, d)
		assert.ErrorIs(t, err, domain.ErrNoLegalMove)
		assert.Equal(t, -1, col)
	}
}

func TestRejectsBadInput(t *testing.T) {
	s := newSeeded(0)

	_, err := s.ChooseColumn(domain.NewBoard(), domain.None, domain.Easy)
	assert.ErrorIs(t, err, domain.ErrInvalidColor)

	_, err = s.ChooseColumn(domain.NewBoard(), domain.Blue, domain.Difficulty("brutal"))
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)
}

func TestChooseColumnLeavesBoardUnchanged(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for game := 0; game < 30; game++ {
		b := domain.NewBoard()
		color := domain.Blue
		for moves := rng.Intn(30); moves > 0; moves-- {
			valid := b.ValidColumns()
			_, err := b.Drop(valid[rng.Intn(len(valid))], color)
			require.NoError(t, err)
			color = color.Opponent()
		}

		for _, d := range difficulties {
			before := b.Snapshot()
			movesBefore := b.MoveCount()

			col, err := newSeeded(int64(game)).ChooseColumn(b, color, d)
			require.NoError(t, err)

			if diff := cmp.Diff(before, b.Snapshot()); diff != "" {
				t.Fatalf("board changed by %s strategist (-before +after):\n%s", d, diff)
			}
			assert.Equal(t, movesBefore, b.MoveCount())

			full, err := b.IsColumnFull(col)
			require.NoError(t, err)
			assert.False(t, full)
		}
	}
}
