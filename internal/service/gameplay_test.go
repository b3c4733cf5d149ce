package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
)

type mockBotService struct {
	mock.Mock
}

func (that *mockBotService) ChooseMove(ctx context.Context, board entity.Board, mark entity.Mark, tier entity.Tier) (int, error) {
	args := that.Called(ctx, board, mark, tier)
	return args.Int(0), args.Error(1)
}

func newPlayService(t *testing.T, bot BotService) (GameService, GamePlayService) {
	t.Helper()

	registry := repository.NewSessionRegistry()

	return NewGameService(registry), NewGamePlayService(registry, bot)
}

func TestGamePlayService_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Plays a game to a win", func(t *testing.T) {
		// Given: Alice and Bob in a started game
		gameService, playService := newPlayService(t, NewBotService())
		created, err := gameService.CreateGame(ctx, alice, entity.ModePlayerVsPlayer, "")
		require.NoError(t, err)
		_, err = gameService.JoinGame(ctx, created.ID, bob)
		require.NoError(t, err)

		// When: X completes the top row
		var session *entity.Session
		for _, move := range []struct {
			id   string
			cell int
		}{{alice.ID, 0}, {bob.ID, 4}, {alice.ID, 1}, {bob.ID, 3}, {alice.ID, 2}} {
			session, err = playService.MakeTurn(ctx, created.ID, move.id, move.cell)
			require.NoError(t, err)
		}

		// Then: the final snapshot records the win
		assert.Equal(t, entity.PhaseFinished, session.Phase)
		assert.Equal(t, &entity.Outcome{Kind: entity.OutcomeWin, Winner: entity.MarkX, Line: []int{0, 1, 2}}, session.Outcome)
	})

	t.Run("Validates in order", func(t *testing.T) {
		gameService, playService := newPlayService(t, NewBotService())

		// Given: a missing game
		_, err := playService.MakeTurn(ctx, "MISSING", alice.ID, 0)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)

		// Given: a waiting game, even a bad cell reports the phase first
		created, err := gameService.CreateGame(ctx, alice, entity.ModePlayerVsPlayer, "")
		require.NoError(t, err)
		_, err = playService.MakeTurn(ctx, created.ID, alice.ID, 99)
		require.ErrorIs(t, err, apperror.ErrGameNotActive)

		// Given: a started game, a bad cell out of turn reports the turn first
		_, err = gameService.JoinGame(ctx, created.ID, bob)
		require.NoError(t, err)
		_, err = playService.MakeTurn(ctx, created.ID, bob.ID, 99)
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)

		// Given: the right player, a bad cell is invalid
		_, err = playService.MakeTurn(ctx, created.ID, alice.ID, 99)
		require.ErrorIs(t, err, apperror.ErrInvalidCell)

		// Then: none of it reached the board
		stored, err := gameService.GetGameByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, stored.Board)
		assert.Equal(t, entity.MarkX, stored.Turn)
	})
}

func TestGamePlayService_MakeBotTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies the chosen cell for the bot mark", func(t *testing.T) {
		// Given: an AI game where the human opened in the center
		bot := &mockBotService{}
		gameService, playService := newPlayService(t, bot)
		created, err := gameService.CreateGame(ctx, alice, entity.ModePlayerVsAI, entity.TierHard)
		require.NoError(t, err)
		_, err = playService.MakeTurn(ctx, created.ID, alice.ID, 4)
		require.NoError(t, err)

		expectedBoard := entity.Board{}
		expectedBoard[4] = entity.MarkX
		bot.On("ChooseMove", mock.Anything, expectedBoard, entity.MarkO, entity.TierHard).Return(0, nil).Once()

		// When: the bot moves
		session, err := playService.MakeBotTurn(ctx, created.ID)

		// Then: O is written and the turn returns to the human
		require.NoError(t, err)
		assert.Equal(t, entity.MarkO, session.Board[0])
		assert.Equal(t, entity.MarkX, session.Turn)
		bot.AssertExpectations(t)
	})

	t.Run("Refuses to move on the human's turn", func(t *testing.T) {
		bot := &mockBotService{}
		gameService, playService := newPlayService(t, bot)
		created, err := gameService.CreateGame(ctx, alice, entity.ModePlayerVsAI, entity.TierHard)
		require.NoError(t, err)

		_, err = playService.MakeBotTurn(ctx, created.ID)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		bot.AssertNotCalled(t, "ChooseMove")
	})

	t.Run("A bad search result goes through cell validation", func(t *testing.T) {
		// Given: a bot that answers with an occupied cell
		bot := &mockBotService{}
		gameService, playService := newPlayService(t, bot)
		created, err := gameService.CreateGame(ctx, alice, entity.ModePlayerVsAI, entity.TierHard)
		require.NoError(t, err)
		_, err = playService.MakeTurn(ctx, created.ID, alice.ID, 4)
		require.NoError(t, err)

		bot.On("ChooseMove", mock.Anything, mock.Anything, entity.MarkO, entity.TierHard).Return(4, nil).Once()

		// When: the bot moves
		_, err = playService.MakeBotTurn(ctx, created.ID)

		// Then: it is rejected and the session still waits for the bot
		require.ErrorIs(t, err, apperror.ErrInvalidCell)
		stored, err := gameService.GetGameByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsBotTurn())
	})

	t.Run("Fallback plays an easy move", func(t *testing.T) {
		bot := &mockBotService{}
		gameService, playService := newPlayService(t, bot)
		created, err := gameService.CreateGame(ctx, alice, entity.ModePlayerVsAI, entity.TierHard)
		require.NoError(t, err)
		_, err = playService.MakeTurn(ctx, created.ID, alice.ID, 4)
		require.NoError(t, err)

		bot.On("ChooseMove", mock.Anything, mock.Anything, entity.MarkO, entity.TierEasy).Return(8, nil).Once()

		session, err := playService.MakeFallbackBotTurn(ctx, created.ID)

		require.NoError(t, err)
		assert.Equal(t, entity.MarkO, session.Board[8])
		bot.AssertExpectations(t)
	})
}
