package domain

// axes holds one direction per line through a cell: horizontal, vertical,
// diagonal going up-right and diagonal going down-right.
var axes = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{-1, 1},
}

// CheckWin reports whether the disk at (row, column) is part of a run of at
// least ToWin cells of the given color. Only lines through that cell are
// scanned, not the whole board.
func (b *Board) CheckWin(row, column int, color Color) bool {
	if !color.IsPlayer() || !inBounds(row, column) {
		return false
	}
	if b.cells[row][column] != color {
		return false
	}

	for _, axis := range axes {
		dRow, dCol := axis[0], axis[1]

		count := 1
		count += b.CountDiskInDirection(row, column, dRow, dCol, color)
		count += b.CountDiskInDirection(row, column, -dRow, -dCol, color)

		if count >= ToWin {
			return true
		}
	}
	return false
}

// CheckDraw reports whether every cell is occupied. Callers evaluate it only
// after CheckWin came back false for the last disk.
func (b *Board) CheckDraw() bool {
	return b.filled == Rows*Columns
}

// CountDiskInDirection counts same-colored disks next to (row, column), not including it.
func (b *Board) CountDiskInDirection(row, column, deltaRow, deltaCol int, color Color) int {
	count := 0
	r, c := row+deltaRow, column+deltaCol
	for inBounds(r, c) && b.cells[r][c] == color {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}

func inBounds(row, column int) bool {
	return row >= 0 && row < Rows && column >= 0 && column < Columns
}
