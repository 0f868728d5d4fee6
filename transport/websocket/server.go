package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	messageTimeout = 5 * time.Second

	internalErrorText = "Internal Server Error"
)

type gameUseCase interface {
	DropPiece(ctx context.Context, id string, column int) (*entity.Game, connectfour.Result, error)
}

type handler func(ctx context.Context, gameID string, message *Message) (*Message, error)

// Server lets a presentation client watch a game and send its column clicks.
type Server struct {
	logger      *slog.Logger
	hub         *Hub
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handler
}

func New(logger *slog.Logger, hub *Hub, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		hub:         hub,
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]handler),
	}

	server.handlers[actionDrop] = server.handleDrop

	return server
}

// ServeGame upgrades the request and keeps the connection subscribed to
// gameID until the client goes away.
func (that *Server) ServeGame(w http.ResponseWriter, r *http.Request, gameID string) {
	log := that.logger.With("method", "ServeGame", "game_id", gameID)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sub := that.hub.subscribe(gameID)
	log.Info("websocket connection established")

	go that.writePump(conn, sub)
	that.readPump(r.Context(), conn, gameID, sub)

	log.Info("websocket connection closed")
}

// readPump owns the subscription: it ends it when reading fails.
func (that *Server) readPump(ctx context.Context, conn *websocket.Conn, gameID string, sub *subscriber) {
	log := that.logger.With("method", "readPump", "game_id", gameID)

	defer that.hub.unsubscribe(gameID, sub)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		reply := that.process(ctx, gameID, data)
		if reply == nil {
			continue
		}

		encoded, err := json.Marshal(reply)
		if err != nil {
			log.Error("failed to marshal reply", "error", err)
			continue
		}

		select {
		case sub.send <- encoded:
		default:
			log.Warn("send buffer is full, reply dropped")
		}
	}
}

func (that *Server) process(ctx context.Context, gameID string, data []byte) *Message {
	log := that.logger.With("method", "process", "game_id", gameID)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		return errorMessage("malformed message")
	}

	handle, ok := that.handlers[message.Action]
	if !ok {
		return errorMessage("unknown action: " + message.Action)
	}

	ctx, cancel := context.WithTimeout(ctx, messageTimeout)
	defer cancel()

	reply, err := handle(ctx, gameID, &message)
	if err != nil {
		if !isClientError(err) {
			log.Error("action failed", "action", message.Action, "error", err)
			return errorMessage(internalErrorText)
		}

		log.Info("action rejected", "action", message.Action, "error", err)
		return errorMessage(err.Error())
	}

	return reply
}

// isClientError reports whether err is safe to show to the player who caused it.
func isClientError(err error) bool {
	for _, target := range []error{
		apperror.ErrOutOfRange,
		apperror.ErrGameOver,
		apperror.ErrGameNotFound,
		apperror.ErrConfiguration,
		ErrColumnRequired,
		ErrInvalidPayload,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func (that *Server) writePump(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorMessage(text string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Error: text})
	return &Message{Action: actionError, Payload: payload}
}
