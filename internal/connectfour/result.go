package connectfour

import (
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// Kind tells the caller what a drop did.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindContinue
	KindWin
	KindTie
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindContinue:
		return "continue"
	case KindWin:
		return "win"
	case KindTie:
		return "tie"
	default:
		return ""
	}
}

// Result describes the outcome of DropPiece. Row is -1 for an invalid drop.
type Result struct {
	Kind   Kind
	Row    int
	Column int
	Player *entity.Player
	Winner *entity.Player
}

// IsTerminal reports whether the result ended the game.
func (r Result) IsTerminal() bool {
	return r.Kind == KindWin || r.Kind == KindTie
}

// Message is the end of game announcement, empty while the game goes on.
func (r Result) Message() string {
	switch r.Kind {
	case KindWin:
		return fmt.Sprintf("The %s player won!", r.Winner.Color)
	case KindTie:
		return "Tie!"
	default:
		return ""
	}
}

func (r Result) Event(gameID string) *entity.MoveEvent {
	return &entity.MoveEvent{
		GameID:  gameID,
		Kind:    r.Kind.String(),
		Row:     r.Row,
		Column:  r.Column,
		Player:  r.Player,
		Winner:  r.Winner,
		Message: r.Message(),
	}
}
