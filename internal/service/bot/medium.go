package bot

import (
	"github.com/iamasit07/connect4-engine/internal/domain"
)

// mediumColumn blocks the opponent's immediate win, otherwise plays like easy.
func (s *Strategist) mediumColumn(board *domain.Board, me domain.Color) int {
	if col := blockingColumn(board, me); col >= 0 {
		return col
	}
	return s.easyColumn(board)
}

// blockingColumn is the first column where the opponent would win next move.
func blockingColumn(board *domain.Board, me domain.Color) int {
	return winningColumn(board, me.Opponent())
}
