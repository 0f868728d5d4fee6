package connectfour

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// Snapshot exports the engine state as a storable game.
func (that *Engine) Snapshot(id string) *entity.Game {
	cells := make([][]int, that.height)
	for row := range that.board {
		cells[row] = make([]int, that.width)
		for column, cell := range that.board[row] {
			cells[row][column] = int(cell)
		}
	}

	game := &entity.Game{
		ID:      id,
		Height:  that.height,
		Width:   that.width,
		Board:   cells,
		Players: []*entity.Player{that.players[0], that.players[1]},
		Turn:    that.turn,
		Status:  that.state.String(),
	}

	if that.state == StateWon {
		game.Winner = int(seatCell(that.turn))
	}

	return game
}

// Restore rebuilds an engine from a stored game, refusing anything a
// sequence of legal drops could not have produced.
func Restore(game *entity.Game) (*Engine, error) {
	if len(game.Players) != 2 {
		return nil, fmt.Errorf("%w: %d players", apperror.ErrCorruptSnapshot, len(game.Players))
	}

	engine, err := New(game.Players[0], game.Players[1], game.Height, game.Width)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorruptSnapshot, err)
	}

	if err = engine.loadBoard(game.Board); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorruptSnapshot, err)
	}

	if game.Turn != 0 && game.Turn != 1 {
		return nil, fmt.Errorf("%w: turn %d", apperror.ErrCorruptSnapshot, game.Turn)
	}
	engine.turn = game.Turn

	if err = engine.loadState(game); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorruptSnapshot, err)
	}

	return engine, nil
}

func (that *Engine) loadBoard(cells [][]int) error {
	if len(cells) != that.height {
		return fmt.Errorf("board has %d rows, want %d", len(cells), that.height)
	}

	for row := range cells {
		if len(cells[row]) != that.width {
			return fmt.Errorf("row %d has %d cells, want %d", row, len(cells[row]), that.width)
		}

		for column, value := range cells[row] {
			cell := Cell(value)
			if cell != Empty && cell != First && cell != Second {
				return fmt.Errorf("cell %d-%d holds %d", row, column, value)
			}
			that.board[row][column] = cell
		}
	}

	for column := 0; column < that.width; column++ {
		for row := 1; row < that.height; row++ {
			if that.board[row-1][column] != Empty && that.board[row][column] == Empty {
				return fmt.Errorf("piece floats above an empty cell at %d-%d", row, column)
			}
		}
	}

	return nil
}

func (that *Engine) loadState(game *entity.Game) error {
	firstCount, secondCount := that.pieceCounts()
	if firstCount != secondCount && firstCount != secondCount+1 {
		return fmt.Errorf("piece counts %d and %d cannot alternate", firstCount, secondCount)
	}

	// first moves whenever the counts are level
	nextMover := firstCount - secondCount

	firstWon := that.board.hasFourInARow(First)
	secondWon := that.board.hasFourInARow(Second)

	switch game.Status {
	case entity.StatusOngoing:
		if firstWon || secondWon || that.board.isFull() {
			return errors.New("ongoing game is already decided")
		}
		if that.turn != nextMover {
			return fmt.Errorf("turn %d does not follow the pieces on the board", that.turn)
		}
		that.state = StateInProgress
	case entity.StatusWon:
		winner := Cell(game.Winner)
		won := winner == First && firstWon && !secondWon || winner == Second && secondWon && !firstWon
		if !won || that.turn != int(winner-First) || that.turn == nextMover {
			return fmt.Errorf("winner %d does not match the board", game.Winner)
		}
		that.state = StateWon
	case entity.StatusTied:
		if firstWon || secondWon || !that.board.isFull() {
			return errors.New("tied game must have a full board without a run")
		}
		that.state = StateTied
	default:
		return fmt.Errorf("%w: %s", entity.ErrUnknownGameStatus, game.Status)
	}

	return nil
}

func (that *Engine) pieceCounts() (first, second int) {
	for row := range that.board {
		for _, cell := range that.board[row] {
			switch cell {
			case First:
				first++
			case Second:
				second++
			}
		}
	}
	return first, second
}
