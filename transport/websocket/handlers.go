package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
)

var (
	ErrColumnRequired = errors.New("column is required")
	ErrInvalidPayload = errors.New("invalid payload")
)

// handleDrop plays a column click. Accepted moves reach every watcher
// through the hub, so only a full column is answered directly.
func (that *Server) handleDrop(ctx context.Context, gameID string, message *Message) (*Message, error) {
	var payload DropPayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if payload.Column == nil {
		return nil, ErrColumnRequired
	}

	_, result, err := that.gameUseCase.DropPiece(ctx, gameID, *payload.Column)
	if err != nil {
		return nil, err
	}

	if result.Kind != connectfour.KindInvalid {
		return nil, nil
	}

	event, err := json.Marshal(result.Event(gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &Message{Action: actionMove, Payload: event}, nil
}
