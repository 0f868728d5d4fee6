package connectfour

import "github.com/rocketscienceinc/connectfour-backend/internal/entity"

const (
	DefaultHeight = 6
	DefaultWidth  = 7

	// MinSize is the smallest height or width on which four in a row fits.
	MinSize = runLength
	// MaxSize caps height and width so a request cannot allocate an arbitrary board.
	MaxSize = 32

	runLength = 4
)

// Cell is the content of one board position: empty or owned by a seat.
type Cell int

const (
	Empty  Cell = entity.EmptyCell
	First  Cell = entity.FirstSeat
	Second Cell = entity.SecondSeat
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return "unknown"
	}
}

// seatCell maps a player index (0 or 1) to the cell it fills.
func seatCell(turn int) Cell {
	if turn == 0 {
		return First
	}
	return Second
}

// board is indexed board[row][column], row 0 at the top.
type board [][]Cell

func newBoard(height, width int) board {
	b := make(board, height)
	for row := range b {
		b[row] = make([]Cell, width)
	}
	return b
}

func (b board) inBounds(row, column int) bool {
	return row >= 0 && row < len(b) && column >= 0 && column < len(b[row])
}

// isFull relies on gravity: the board is full once every top cell is taken.
func (b board) isFull() bool {
	for _, cell := range b[0] {
		if cell == Empty {
			return false
		}
	}
	return true
}

func (b board) clone() [][]Cell {
	cells := make([][]Cell, len(b))
	for row := range b {
		cells[row] = make([]Cell, len(b[row]))
		copy(cells[row], b[row])
	}
	return cells
}
