package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/usecase"
)

const maxBodySize = 1 << 12

type gameUseCase interface {
	CreateGame(ctx context.Context, params usecase.CreateGameParams) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	DropPiece(ctx context.Context, id string, column int) (*entity.Game, connectfour.Result, error)
	DeleteGame(ctx context.Context, id string) error
}

type gameWatcher interface {
	ServeGame(w http.ResponseWriter, r *http.Request, gameID string)
}

type createGameRequest struct {
	Players struct {
		First  string `json:"first"`
		Second string `json:"second"`
	} `json:"players"`
	Height int `json:"height"`
	Width  int `json:"width"`
}

type dropRequest struct {
	Column *int `json:"column"`
}

type dropResponse struct {
	Result *entity.MoveEvent `json:"result"`
	Game   *entity.Game      `json:"game"`
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	watcher     gameWatcher
}

// NewRouter exposes the game service over HTTP.
func NewRouter(logger *slog.Logger, gameUseCase gameUseCase, watcher gameWatcher) http.Handler {
	that := &handlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
		watcher:     watcher,
	}

	router := mux.NewRouter()
	router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)
	router.HandleFunc("/games", that.createGame).Methods(http.MethodPost)
	router.HandleFunc("/games/{id}", that.getGame).Methods(http.MethodGet)
	router.HandleFunc("/games/{id}", that.deleteGame).Methods(http.MethodDelete)
	router.HandleFunc("/games/{id}/moves", that.dropPiece).Methods(http.MethodPost)
	router.HandleFunc("/games/{id}/ws", that.watchGame).Methods(http.MethodGet)

	return router
}

func (that *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	game, err := that.gameUseCase.CreateGame(r.Context(), usecase.CreateGameParams{
		FirstColor:  req.Players.First,
		SecondColor: req.Players.Second,
		Height:      req.Height,
		Width:       req.Width,
	})
	if err != nil {
		that.respondWithFailure(w, "createGame", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, game)
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		that.respondWithFailure(w, "getGame", err)
		return
	}

	respondWithJSON(w, http.StatusOK, game)
}

func (that *handlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.DeleteGame(r.Context(), mux.Vars(r)["id"]); err != nil {
		that.respondWithFailure(w, "deleteGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// dropPiece answers a full column with 200 and an "invalid" result, not an error.
func (that *handlers) dropPiece(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req dropRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Column == nil {
		respondWithError(w, http.StatusBadRequest, "Column is required")
		return
	}

	game, result, err := that.gameUseCase.DropPiece(r.Context(), id, *req.Column)
	if err != nil {
		that.respondWithFailure(w, "dropPiece", err)
		return
	}

	respondWithJSON(w, http.StatusOK, dropResponse{
		Result: result.Event(id),
		Game:   game,
	})
}

func (that *handlers) watchGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := that.gameUseCase.GetGame(r.Context(), id); err != nil {
		that.respondWithFailure(w, "watchGame", err)
		return
	}

	that.watcher.ServeGame(w, r, id)
}

func (that *handlers) respondWithFailure(w http.ResponseWriter, method string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		respondWithError(w, code, http.StatusText(code))
		return
	}

	respondWithError(w, code, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	decoder.DisallowUnknownFields()

	return decoder.Decode(v)
}
