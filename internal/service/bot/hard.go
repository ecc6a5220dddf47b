package bot

import (
	"github.com/iamasit07/connect4-engine/internal/domain"
)

// columnPriority orders columns from the center outward: 3, 2, 4, 1, 5, 0, 6
// on a seven column board. Center columns take part in more lines.
var columnPriority = centerOut(domain.Columns)

func centerOut(columns int) []int {
	center := columns / 2
	order := []int{center}
	for offset := 1; len(order) < columns; offset++ {
		if left := center - offset; left >= 0 {
			order = append(order, left)
		}
		if right := center + offset; right < columns {
			order = append(order, right)
		}
	}
	return order
}

// hardColumn wins if it can, then blocks, then prefers the center.
func (s *Strategist) hardColumn(board *domain.Board, me domain.Color) int {
	if col := winningColumn(board, me); col >= 0 {
		return col
	}
	if col := blockingColumn(board, me); col >= 0 {
		return col
	}
	if col := heuristicColumn(board); col >= 0 {
		return col
	}
	return s.easyColumn(board)
}

func heuristicColumn(board *domain.Board) int {
	for _, col := range columnPriority {
		if full, err := board.IsColumnFull(col); err == nil && !full {
			return col
		}
	}
	return -1
}
