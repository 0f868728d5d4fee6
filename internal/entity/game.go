package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

const (
	StatusOngoing = "ongoing"
	StatusWon     = "won"
	StatusTied    = "tied"
)

// Board cell values. A seat is the 1-based position of a player in Game.Players.
const (
	EmptyCell  = 0
	FirstSeat  = 1
	SecondSeat = 2
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is the stored form of a connect four game.
type Game struct {
	ID      string    `json:"id"`
	Height  int       `json:"height"`
	Width   int       `json:"width"`
	Board   [][]int   `json:"board"`
	Players []*Player `json:"players"`
	Turn    int       `json:"turn"`
	Status  string    `json:"status"`
	Winner  int       `json:"winner,omitempty"`
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusTied
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

// CurrentPlayer returns the player whose turn it is, or the winner once the game is won.
func (that *Game) CurrentPlayer() *Player {
	if that.Turn < 0 || that.Turn >= len(that.Players) {
		return nil
	}

	return that.Players[that.Turn]
}

func (that *Game) WinnerPlayer() *Player {
	if that.Winner < FirstSeat || that.Winner > len(that.Players) {
		return nil
	}

	return that.Players[that.Winner-1]
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameOver
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}
