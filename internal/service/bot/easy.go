package bot

import (
	"github.com/iamasit07/connect4-engine/internal/domain"
)

// easyColumn picks uniformly among the columns that are not full.
func (s *Strategist) easyColumn(board *domain.Board) int {
	validColumns := board.ValidColumns()
	if len(validColumns) == 0 {
		return -1
	}
	return validColumns[s.intn(len(validColumns))]
}
