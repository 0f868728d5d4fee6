package connectfour

// directions lists the run steps as {row, column}: horizontal, vertical,
// diagonal down-right and diagonal down-left.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// hasFourInARow treats every cell as the start of a run and reports whether
// any run of four in any direction belongs entirely to cell.
func (b board) hasFourInARow(cell Cell) bool {
	if cell == Empty {
		return false
	}

	for row := range b {
		for column := range b[row] {
			for _, d := range directions {
				if b.runFrom(row, column, d[0], d[1], cell) {
					return true
				}
			}
		}
	}

	return false
}

func (b board) runFrom(row, column, dRow, dColumn int, cell Cell) bool {
	for i := 0; i < runLength; i++ {
		r, c := row+dRow*i, column+dColumn*i
		if !b.inBounds(r, c) || b[r][c] != cell {
			return false
		}
	}
	return true
}

// winsThrough checks only the lines crossing (row, column). It agrees with
// hasFourInARow as long as the board held no run before the piece was placed.
func (b board) winsThrough(row, column int) bool {
	cell := b[row][column]
	if cell == Empty {
		return false
	}

	for _, d := range directions {
		count := 1 + b.count(row, column, d[0], d[1], cell) + b.count(row, column, -d[0], -d[1], cell)
		if count >= runLength {
			return true
		}
	}

	return false
}

func (b board) count(row, column, dRow, dColumn int, cell Cell) int {
	n := 0
	for r, c := row+dRow, column+dColumn; b.inBounds(r, c) && b[r][c] == cell; r, c = r+dRow, c+dColumn {
		n++
	}
	return n
}
