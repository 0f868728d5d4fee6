package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const sendBuffer = 16

type subscriber struct {
	send chan []byte
}

// Hub fans move events out to the connections watching each game.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	games map[string]map[*subscriber]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "websocket_hub"),
		games:  make(map[string]map[*subscriber]struct{}),
	}
}

// Publish sends event to every subscriber of its game. Slow subscribers miss it.
func (that *Hub) Publish(event *entity.MoveEvent) {
	log := that.logger.With("method", "Publish", "game_id", event.GameID)

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal event", "error", err)
		return
	}

	message, err := json.Marshal(Message{Action: actionMove, Payload: payload})
	if err != nil {
		log.Error("failed to marshal message", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for sub := range that.games[event.GameID] {
		select {
		case sub.send <- message:
		default:
			log.Warn("subscriber is too slow, event dropped")
		}
	}
}

func (that *Hub) Subscribers(gameID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games[gameID])
}

func (that *Hub) subscribe(gameID string) *subscriber {
	sub := &subscriber{send: make(chan []byte, sendBuffer)}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.games[gameID] == nil {
		that.games[gameID] = make(map[*subscriber]struct{})
	}
	that.games[gameID][sub] = struct{}{}

	return sub
}

// unsubscribe closes the send channel once Publish can no longer reach it.
func (that *Hub) unsubscribe(gameID string, sub *subscriber) {
	that.mu.Lock()
	defer that.mu.Unlock()

	subs, ok := that.games[gameID]
	if !ok {
		return
	}

	if _, ok = subs[sub]; !ok {
		return
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(that.games, gameID)
	}

	close(sub.send)
}
