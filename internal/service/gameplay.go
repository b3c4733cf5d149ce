package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

type GamePlayService interface {
	MakeTurn(ctx context.Context, gameID, participantID string, cell int) (*entity.Session, error)
	MakeBotTurn(ctx context.Context, gameID string) (*entity.Session, error)
	MakeFallbackBotTurn(ctx context.Context, gameID string) (*entity.Session, error)
}

type gamePlayService struct {
	sessionRepo sessionRepo
	botService  BotService
}

func NewGamePlayService(sessionRepo sessionRepo, botService BotService) GamePlayService {
	return &gamePlayService{
		sessionRepo: sessionRepo,
		botService:  botService,
	}
}

// MakeTurn validates and applies a human move. The session lock is held for the whole check-and-apply.
func (that *gamePlayService) MakeTurn(ctx context.Context, gameID, participantID string, cell int) (*entity.Session, error) {
	session, err := that.sessionRepo.Update(ctx, gameID, func(session *entity.Session) error {
		return session.MakeTurn(participantID, cell)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	return session, nil
}

// MakeBotTurn searches on a snapshot without holding the session lock, then applies
// the chosen cell through the same validation as a human move.
func (that *gamePlayService) MakeBotTurn(ctx context.Context, gameID string) (*entity.Session, error) {
	return that.makeBotTurn(ctx, gameID, func(session *entity.Session) (int, error) {
		return that.botService.ChooseMove(ctx, session.Board, session.Turn, session.AITier)
	})
}

// MakeFallbackBotTurn plays an easy move. Used when the configured search ran out of time.
func (that *gamePlayService) MakeFallbackBotTurn(ctx context.Context, gameID string) (*entity.Session, error) {
	return that.makeBotTurn(ctx, gameID, func(session *entity.Session) (int, error) {
		return that.botService.ChooseMove(context.WithoutCancel(ctx), session.Board, session.Turn, entity.TierEasy)
	})
}

func (that *gamePlayService) makeBotTurn(ctx context.Context, gameID string, choose func(session *entity.Session) (int, error)) (*entity.Session, error) {
	snapshot, err := that.sessionRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !snapshot.IsBotTurn() {
		return nil, fmt.Errorf("bot failed to make turn: %w", apperror.ErrNotYourTurn)
	}

	cell, err := choose(snapshot)
	if err != nil {
		return nil, fmt.Errorf("bot failed to choose move: %w", err)
	}

	session, err := that.sessionRepo.Update(ctx, gameID, func(session *entity.Session) error {
		if !session.IsBotTurn() {
			return apperror.ErrNotYourTurn
		}

		return session.PlaceMark(snapshot.Turn, cell)
	})
	if err != nil {
		return nil, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return session, nil
}
