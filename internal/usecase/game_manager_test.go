package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis down")

var testDefaults = GameDefaults{Height: 6, Width: 7, FirstColor: "red", SecondColor: "yellow"}

func newTestManager(repo gameRepo, notifier notifier) *GameManager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGameManager(logger, repo, notifier, testDefaults)
}

// storedGame builds the snapshot left by dropping columns into a fresh 6x7 game.
func storedGame(t *testing.T, id string, columns ...int) *entity.Game {
	t.Helper()

	engine, err := connectfour.NewDefault(entity.NewPlayer("red"), entity.NewPlayer("yellow"))
	require.NoError(t, err)

	for _, column := range columns {
		_, err = engine.DropPiece(column)
		require.NoError(t, err)
	}

	return engine.Snapshot(id)
}

func TestGameManager_CreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a default game", func(t *testing.T) {
		// Given: a repository that accepts the new game
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		manager := newTestManager(repo, &mockNotifier{})

		// When: creating a game without parameters
		game, err := manager.CreateGame(ctx, CreateGameParams{})

		// Then: it uses the configured size and colours and red moves first
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, 6, game.Height)
		assert.Equal(t, 7, game.Width)
		assert.Equal(t, "red", game.Players[0].Color)
		assert.Equal(t, "yellow", game.Players[1].Color)
		assert.Equal(t, entity.StatusOngoing, game.Status)
		assert.Equal(t, "red", game.CurrentPlayer().Color)
		repo.AssertExpectations(t)
	})

	t.Run("Uses the requested colours and size", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		manager := newTestManager(repo, &mockNotifier{})

		game, err := manager.CreateGame(ctx, CreateGameParams{FirstColor: "blue", SecondColor: "green", Height: 5, Width: 8})

		require.NoError(t, err)
		assert.Equal(t, "blue", game.Players[0].Color)
		assert.Equal(t, "green", game.Players[1].Color)
		assert.Len(t, game.Board, 5)
		assert.Len(t, game.Board[0], 8)
	})

	t.Run("Gives every game its own id", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Twice()
		manager := newTestManager(repo, &mockNotifier{})

		first, err := manager.CreateGame(ctx, CreateGameParams{})
		require.NoError(t, err)
		second, err := manager.CreateGame(ctx, CreateGameParams{})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("Rejects a board that is too small", func(t *testing.T) {
		// Given: a manager
		repo := &mockGameRepo{}
		manager := newTestManager(repo, &mockNotifier{})

		// When: asking for a 3 row board
		game, err := manager.CreateGame(ctx, CreateGameParams{Height: 3})

		// Then: ErrConfiguration is returned and nothing is stored
		require.ErrorIs(t, err, apperror.ErrConfiguration)
		assert.Nil(t, game)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Rejects an oversized board", func(t *testing.T) {
		// Given: a manager
		repo := &mockGameRepo{}
		manager := newTestManager(repo, &mockNotifier{})

		// When: asking for a 3000x3000 board
		game, err := manager.CreateGame(ctx, CreateGameParams{Height: 3000, Width: 3000})

		// Then: ErrConfiguration is returned and nothing is stored
		require.ErrorIs(t, err, apperror.ErrConfiguration)
		assert.Nil(t, game)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Returns error if the repository fails", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()
		manager := newTestManager(repo, &mockNotifier{})

		game, err := manager.CreateGame(ctx, CreateGameParams{})

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_GetGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the stored game", func(t *testing.T) {
		stored := storedGame(t, "g1", 3)
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "g1").Return(stored, nil).Once()
		manager := newTestManager(repo, &mockNotifier{})

		game, err := manager.GetGame(ctx, "g1")

		require.NoError(t, err)
		assert.Equal(t, stored, game)
	})

	t.Run("Returns ErrGameNotFound for an unknown id", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "nope").Return(nil, apperror.ErrGameNotFound).Once()
		manager := newTestManager(repo, &mockNotifier{})

		_, err := manager.GetGame(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_DeleteGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes a stored game", func(t *testing.T) {
		// Given: a created game
		repo := newMemoryGameRepo()
		manager := newTestManager(repo, &countingNotifier{})
		game, err := manager.CreateGame(ctx, CreateGameParams{})
		require.NoError(t, err)

		// When: it is deleted
		require.NoError(t, manager.DeleteGame(ctx, game.ID))

		// Then: it can no longer be found
		_, err = manager.GetGame(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Unknown game returns ErrGameNotFound", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("DeleteByID", mock.Anything, "nope").Return(apperror.ErrGameNotFound).Once()
		manager := newTestManager(repo, &mockNotifier{})

		err := manager.DeleteGame(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_DropPiece(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves and publishes an accepted move", func(t *testing.T) {
		// Given: a new stored game
		repo := &mockGameRepo{}
		notifier := &mockNotifier{}
		repo.On("GetByID", mock.Anything, "g1").Return(storedGame(t, "g1"), nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.MatchedBy(func(game *entity.Game) bool {
			return game.Board[5][3] == entity.FirstSeat && game.Turn == 1
		})).Return(nil).Once()
		notifier.On("Publish", mock.MatchedBy(func(event *entity.MoveEvent) bool {
			return event.GameID == "g1" && event.Kind == "continue" && event.Row == 5 && event.Column == 3 &&
				event.Player.Color == "red"
		})).Once()
		manager := newTestManager(repo, notifier)

		// When: red drops into column 3
		game, result, err := manager.DropPiece(ctx, "g1", 3)

		// Then: the move is stored, published and yellow is next
		require.NoError(t, err)
		assert.Equal(t, connectfour.KindContinue, result.Kind)
		assert.Equal(t, "yellow", game.CurrentPlayer().Color)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("Full column is neither saved nor published", func(t *testing.T) {
		// Given: column 0 is full
		stored := storedGame(t, "g1", 0, 0, 0, 0, 0, 0)
		repo := &mockGameRepo{}
		notifier := &mockNotifier{}
		repo.On("GetByID", mock.Anything, "g1").Return(stored, nil).Once()
		manager := newTestManager(repo, notifier)

		// When: dropping into column 0
		game, result, err := manager.DropPiece(ctx, "g1", 0)

		// Then: the result is invalid and the game unchanged
		require.NoError(t, err)
		assert.Equal(t, connectfour.KindInvalid, result.Kind)
		assert.Equal(t, stored, game)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("Winning move finishes the game", func(t *testing.T) {
		// Given: red has three in column 0
		repo := &mockGameRepo{}
		notifier := &mockNotifier{}
		repo.On("GetByID", mock.Anything, "g1").Return(storedGame(t, "g1", 0, 1, 0, 1, 0, 1), nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		notifier.On("Publish", mock.MatchedBy(func(event *entity.MoveEvent) bool {
			return event.Kind == "win" && event.Message == "The red player won!"
		})).Once()
		manager := newTestManager(repo, notifier)

		// When: red drops the fourth piece
		game, result, err := manager.DropPiece(ctx, "g1", 0)

		// Then: red wins and the stored game is finished
		require.NoError(t, err)
		assert.Equal(t, connectfour.KindWin, result.Kind)
		assert.Equal(t, entity.StatusWon, game.Status)
		assert.Equal(t, "red", game.WinnerPlayer().Color)
		notifier.AssertExpectations(t)
	})

	t.Run("Finished game returns ErrGameOver", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "g1").Return(storedGame(t, "g1", 0, 1, 0, 1, 0, 1, 0), nil).Once()
		manager := newTestManager(repo, &mockNotifier{})

		_, _, err := manager.DropPiece(ctx, "g1", 2)

		require.ErrorIs(t, err, apperror.ErrGameOver)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Stored finished games are rejected before the board is read", func(t *testing.T) {
		for _, status := range []string{entity.StatusWon, entity.StatusTied} {
			// Given: a finished game whose board would not restore
			stored := storedGame(t, "g1")
			stored.Status = status
			stored.Board = nil
			repo := &mockGameRepo{}
			repo.On("GetByID", mock.Anything, "g1").Return(stored, nil).Once()
			manager := newTestManager(repo, &mockNotifier{})

			// When: a piece is dropped
			_, _, err := manager.DropPiece(ctx, "g1", 0)

			// Then: the game is over, not corrupt
			require.ErrorIs(t, err, apperror.ErrGameOver, status)
			require.NotErrorIs(t, err, apperror.ErrCorruptSnapshot, status)
		}
	})

	t.Run("Unknown stored status is rejected", func(t *testing.T) {
		stored := storedGame(t, "g1")
		stored.Status = "paused"
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "g1").Return(stored, nil).Once()
		manager := newTestManager(repo, &mockNotifier{})

		_, _, err := manager.DropPiece(ctx, "g1", 0)

		require.ErrorIs(t, err, entity.ErrUnknownGameStatus)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Column out of range returns ErrOutOfRange", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "g1").Return(storedGame(t, "g1"), nil).Once()
		manager := newTestManager(repo, &mockNotifier{})

		_, _, err := manager.DropPiece(ctx, "g1", 7)

		require.ErrorIs(t, err, apperror.ErrOutOfRange)
	})

	t.Run("Unknown game returns ErrGameNotFound", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "nope").Return(nil, apperror.ErrGameNotFound).Once()
		manager := newTestManager(repo, &mockNotifier{})

		_, _, err := manager.DropPiece(ctx, "nope", 0)

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Corrupt game returns ErrCorruptSnapshot", func(t *testing.T) {
		stored := storedGame(t, "g1")
		stored.Players = nil
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "g1").Return(stored, nil).Once()
		manager := newTestManager(repo, &mockNotifier{})

		_, _, err := manager.DropPiece(ctx, "g1", 0)

		require.ErrorIs(t, err, apperror.ErrCorruptSnapshot)
	})

	t.Run("Save failure is returned and nothing is published", func(t *testing.T) {
		repo := &mockGameRepo{}
		notifier := &mockNotifier{}
		repo.On("GetByID", mock.Anything, "g1").Return(storedGame(t, "g1"), nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()
		manager := newTestManager(repo, notifier)

		_, _, err := manager.DropPiece(ctx, "g1", 0)

		require.ErrorIs(t, err, errRedisDown)
		notifier.AssertNotCalled(t, "Publish", mock.Anything)
	})
}

func TestGameManager_DropPieceConcurrently(t *testing.T) {
	// Given: a stored game and a manager over an in-memory repository
	ctx := context.Background()
	repo := newMemoryGameRepo()
	notifier := &countingNotifier{}
	manager := newTestManager(repo, notifier)

	game, err := manager.CreateGame(ctx, CreateGameParams{})
	require.NoError(t, err)

	// When: a drop for every row of column 0 arrives at the same time
	var wg sync.WaitGroup
	for i := 0; i < game.Height; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, dropErr := manager.DropPiece(ctx, game.ID, 0)
			assert.NoError(t, dropErr)
		}()
	}
	wg.Wait()

	// Then: no move is lost and the column alternates from the bottom up
	stored, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)

	for row := 0; row < game.Height; row++ {
		want := entity.FirstSeat
		if (game.Height-1-row)%2 == 1 {
			want = entity.SecondSeat
		}
		assert.Equal(t, want, stored.Board[row][0], "row %d", row)
	}
	assert.Equal(t, 0, stored.Turn)
	assert.Len(t, notifier.events, game.Height)
	assert.Zero(t, manager.locks.size())
}
