package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type notifier interface {
	Publish(event *entity.MoveEvent)
}

// GameDefaults fill in whatever a new game request leaves out.
type GameDefaults struct {
	Height      int
	Width       int
	FirstColor  string
	SecondColor string
}

type CreateGameParams struct {
	FirstColor  string
	SecondColor string
	Height      int
	Width       int
}

type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	notifier notifier
	defaults GameDefaults
	locks    *gameLocks
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, notifier notifier, defaults GameDefaults) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
		notifier: notifier,
		defaults: defaults,
		locks:    newGameLocks(),
	}
}

func (that *GameManager) CreateGame(ctx context.Context, params CreateGameParams) (*entity.Game, error) {
	params = that.withDefaults(params)

	engine, err := connectfour.New(
		entity.NewPlayer(params.FirstColor),
		entity.NewPlayer(params.SecondColor),
		params.Height,
		params.Width,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	game := engine.Snapshot(uuid.NewString())
	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	that.logger.Info("game created", "game_id", game.ID, "height", game.Height, "width", game.Width)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// DeleteGame drops a game the players abandoned before it expired.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	unlock := that.locks.lock(id)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "game_id", id)

	return nil
}

// DropPiece plays the current player's piece into column of game id. A full
// column yields an invalid result and leaves the stored game untouched.
func (that *GameManager) DropPiece(ctx context.Context, id string, column int) (*entity.Game, connectfour.Result, error) {
	log := that.logger.With("method", "DropPiece", "game_id", id, "column", column)

	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, connectfour.Result{}, fmt.Errorf("failed to get game: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return nil, connectfour.Result{}, fmt.Errorf("failed to drop piece: %w", err)
	}

	engine, err := connectfour.Restore(game)
	if err != nil {
		return nil, connectfour.Result{}, fmt.Errorf("failed to restore game: %w", err)
	}

	result, err := engine.DropPiece(column)
	if err != nil {
		return nil, connectfour.Result{}, fmt.Errorf("failed to drop piece: %w", err)
	}

	if result.Kind == connectfour.KindInvalid {
		log.Debug("column is full")
		return game, result, nil
	}

	updated := engine.Snapshot(game.ID)
	if err = that.gameRepo.CreateOrUpdate(ctx, updated); err != nil {
		return nil, connectfour.Result{}, fmt.Errorf("failed to update game: %w", err)
	}

	that.notifier.Publish(result.Event(game.ID))

	if result.IsTerminal() {
		log.Info("game finished", "result", result.Kind.String(), "message", result.Message())
	}

	return updated, result, nil
}

func (that *GameManager) withDefaults(params CreateGameParams) CreateGameParams {
	if params.FirstColor == "" {
		params.FirstColor = that.defaults.FirstColor
	}

	if params.SecondColor == "" {
		params.SecondColor = that.defaults.SecondColor
	}

	if params.Height == 0 {
		params.Height = that.defaults.Height
	}

	if params.Width == 0 {
		params.Width = that.defaults.Width
	}

	return params
}
