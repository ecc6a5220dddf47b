package domain

import (
	"fmt"
	"strings"
)

// Grid is a value copy of the cells, indexed [row][column] with row 0 at the bottom.
type Grid [Rows][Columns]Color

// Board owns the cell grid. Every occupied cell goes through Place, which keeps
// the per-column heights in lock-step with the cells.
type Board struct {
	cells   Grid
	heights [Columns]int
	filled  int
}

func NewBoard() *Board {
	return &Board{}
}

// BoardFromGrid rebuilds a board from a snapshot. Columns with a gap below an
// occupied cell are rejected.
func BoardFromGrid(g Grid) (*Board, error) {
	b := NewBoard()
	for col := 0; col < Columns; col++ {
		for row := 0; row < Rows; row++ {
			color := g[row][col]
			if color == None {
				continue
			}
			if err := b.Place(row, col, color); err != nil {
				return nil, fmt.Errorf("rebuild board at (%d, %d): %w", row, col, err)
			}
		}
	}
	return b, nil
}

func (b *Board) Rows() int    { return Rows }
func (b *Board) Columns() int { return Columns }

func (b *Board) GetCell(row, column int) (Color, error) {
	if err := checkColumn(column); err != nil {
		return None, err
	}
	if row < 0 || row >= Rows {
		return None, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return b.cells[row][column], nil
}

func (b *Board) IsColumnFull(column int) (bool, error) {
	if err := checkColumn(column); err != nil {
		return false, err
	}
	return b.heights[column] >= Rows, nil
}

// GetNextAvailableRow returns the lowest empty row of the column, or
// ErrNotAvailable when the column is full. It never reports a full column as row 0.
func (b *Board) GetNextAvailableRow(column int) (int, error) {
	if err := checkColumn(column); err != nil {
		return -1, err
	}
	if b.heights[column] >= Rows {
		return -1, fmt.Errorf("%w: column %d", ErrNotAvailable, column)
	}
	return b.heights[column], nil
}

// Place puts a disk at (row, column). The row must be the column's next available row.
func (b *Board) Place(row, column int, color Color) error {
	if !color.IsPlayer() {
		return ErrInvalidColor
	}
	if err := checkColumn(column); err != nil {
		return err
	}
	if row < 0 || row >= Rows {
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	if b.heights[column] >= Rows {
		return fmt.Errorf("%w: column %d", ErrColumnFull, column)
	}
	if row != b.heights[column] {
		return fmt.Errorf("%w: (%d, %d), next is row %d", ErrGravity, row, column, b.heights[column])
	}

	b.cells[row][column] = color
	b.heights[column]++
	b.filled++
	return nil
}

// Drop places a disk at the next available row of the column and returns that row.
func (b *Board) Drop(column int, color Color) (int, error) {
	if err := checkColumn(column); err != nil {
		return -1, err
	}
	if b.heights[column] >= Rows {
		return -1, fmt.Errorf("%w: column %d", ErrColumnFull, column)
	}
	row := b.heights[column]
	if err := b.Place(row, column, color); err != nil {
		return -1, err
	}
	return row, nil
}

// Simulate drops a hypothetical disk, hands its row to probe and removes the
// disk again before returning, so the board is unchanged afterwards.
func (b *Board) Simulate(column int, color Color, probe func(row int) bool) (bool, error) {
	row, err := b.Drop(column, color)
	if err != nil {
		return false, err
	}
	defer b.undo(row, column)

	return probe(row), nil
}

// undo clears the topmost disk of a column. Only Simulate calls it.
func (b *Board) undo(row, column int) {
	if b.heights[column] == 0 || b.heights[column]-1 != row {
		panic(fmt.Sprintf("domain: undo of (%d, %d) is not the top of the column", row, column))
	}
	b.cells[row][column] = None
	b.heights[column]--
	b.filled--
}

// Clear empties every cell for a new match. Dimensions never change.
func (b *Board) Clear() {
	b.cells = Grid{}
	b.heights = [Columns]int{}
	b.filled = 0
}

// ValidColumns lists the columns that can still take a disk, in ascending order.
func (b *Board) ValidColumns() []int {
	valid := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if b.heights[col] < Rows {
			valid = append(valid, col)
		}
	}
	return valid
}

func (b *Board) MoveCount() int {
	return b.filled
}

func (b *Board) Snapshot() Grid {
	return b.cells
}

// String renders the board top row first, the way it is seen on screen.
func (b *Board) String() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Columns; col++ {
			switch b.cells[row][col] {
			case Blue:
				sb.WriteByte('B')
			case Red:
				sb.WriteByte('R')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func checkColumn(column int) error {
	if column < 0 || column >= Columns {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, column)
	}
	return nil
}
