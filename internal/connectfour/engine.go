package connectfour

import (
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type State int

const (
	StateInProgress State = iota
	StateWon
	StateTied
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return entity.StatusOngoing
	case StateWon:
		return entity.StatusWon
	case StateTied:
		return entity.StatusTied
	default:
		return "unknown"
	}
}

// Engine owns the board and turn of one game. It is not safe for concurrent use.
type Engine struct {
	board   board
	height  int
	width   int
	players [2]*entity.Player
	turn    int
	state   State
}

// New creates a game on an empty height x width board with first to move.
func New(first, second *entity.Player, height, width int) (*Engine, error) {
	if first == nil || second == nil {
		return nil, fmt.Errorf("%w: two players are required", apperror.ErrConfiguration)
	}

	if height < MinSize || width < MinSize {
		return nil, fmt.Errorf("%w: board %dx%d is smaller than %dx%d",
			apperror.ErrConfiguration, height, width, MinSize, MinSize)
	}

	if height > MaxSize || width > MaxSize {
		return nil, fmt.Errorf("%w: board %dx%d is larger than %dx%d",
			apperror.ErrConfiguration, height, width, MaxSize, MaxSize)
	}

	return &Engine{
		board:   newBoard(height, width),
		height:  height,
		width:   width,
		players: [2]*entity.Player{first, second},
		state:   StateInProgress,
	}, nil
}

func NewDefault(first, second *entity.Player) (*Engine, error) {
	return New(first, second, DefaultHeight, DefaultWidth)
}

// FindDropRow returns the lowest empty row of column. ok is false when the column is full.
func (that *Engine) FindDropRow(column int) (row int, ok bool, err error) {
	if column < 0 || column >= that.width {
		return -1, false, fmt.Errorf("%w: column %d, width %d", apperror.ErrOutOfRange, column, that.width)
	}

	for row = that.height - 1; row >= 0; row-- {
		if that.board[row][column] == Empty {
			return row, true, nil
		}
	}

	return -1, false, nil
}

// DropPiece plays the current player's piece into column.
func (that *Engine) DropPiece(column int) (Result, error) {
	if that.IsFinished() {
		return Result{}, apperror.ErrGameOver
	}

	row, ok, err := that.FindDropRow(column)
	if err != nil {
		return Result{}, err
	}

	if !ok {
		return Result{Kind: KindInvalid, Row: -1, Column: column}, nil
	}

	mover := that.players[that.turn]
	that.board[row][column] = seatCell(that.turn)

	result := Result{Row: row, Column: column, Player: mover}

	switch {
	case that.board.winsThrough(row, column):
		that.state = StateWon
		result.Kind = KindWin
		result.Winner = mover
	case that.board.isFull():
		that.state = StateTied
		result.Kind = KindTie
	default:
		that.turn = 1 - that.turn
		result.Kind = KindContinue
	}

	return result, nil
}

func (that *Engine) Height() int {
	return that.height
}

func (that *Engine) Width() int {
	return that.width
}

func (that *Engine) State() State {
	return that.state
}

func (that *Engine) IsFinished() bool {
	return that.state != StateInProgress
}

// CurrentPlayer is the player to move. After a win it stays on the winner.
func (that *Engine) CurrentPlayer() *entity.Player {
	return that.players[that.turn]
}

func (that *Engine) Players() [2]*entity.Player {
	return that.players
}

// Winner returns nil unless the game is won.
func (that *Engine) Winner() *entity.Player {
	if that.state != StateWon {
		return nil
	}
	return that.players[that.turn]
}

// Board returns a copy of the cells, indexed [row][column] with row 0 at the top.
func (that *Engine) Board() [][]Cell {
	return that.board.clone()
}

func (that *Engine) Cell(row, column int) (Cell, error) {
	if !that.board.inBounds(row, column) {
		return Empty, fmt.Errorf("%w: cell %d-%d", apperror.ErrOutOfRange, row, column)
	}
	return that.board[row][column], nil
}

// Occupant returns the player holding (row, column); ok is false for an empty or missing cell.
func (that *Engine) Occupant(row, column int) (player *entity.Player, ok bool) {
	cell, err := that.Cell(row, column)
	if err != nil || cell == Empty {
		return nil, false
	}
	return that.players[cell-First], true
}
