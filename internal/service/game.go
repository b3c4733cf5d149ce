package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/pkg"
)

const maxGameIDAttempts = 5

type GameService interface {
	CreateGame(ctx context.Context, host entity.Participant, mode entity.Mode, tier entity.Tier) (*entity.Session, error)
	JoinGame(ctx context.Context, gameID string, participant entity.Participant) (*entity.Session, error)
	GetGameByID(ctx context.Context, gameID string) (*entity.Session, error)
	DeleteGame(ctx context.Context, gameID string) *entity.Session
	DeleteIdleGames(ctx context.Context, before time.Time) []*entity.Session
}

type sessionRepo interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, id string, apply func(session *entity.Session) error) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) *entity.Session
	DeleteIdle(ctx context.Context, before time.Time) []*entity.Session
}

type gameService struct {
	sessionRepo sessionRepo
	generateID  func() (string, error)
}

func NewGameService(sessionRepo sessionRepo) GameService {
	return &gameService{
		sessionRepo: sessionRepo,
		generateID:  pkg.GenerateGameID,
	}
}

// CreateGame binds host as X. Id collisions are retried with a fresh code.
func (that *gameService) CreateGame(ctx context.Context, host entity.Participant, mode entity.Mode, tier entity.Tier) (*entity.Session, error) {
	for attempt := 0; attempt < maxGameIDAttempts; attempt++ {
		gameID, err := that.generateID()
		if err != nil {
			return nil, fmt.Errorf("error generating game ID: %w", err)
		}

		session := entity.NewSession(gameID, host, mode, tier)

		err = that.sessionRepo.Create(ctx, session)
		if errors.Is(err, apperror.ErrSessionExists) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}

		return session, nil
	}

	return nil, apperror.ErrSessionIDExhausted
}

func (that *gameService) JoinGame(ctx context.Context, gameID string, participant entity.Participant) (*entity.Session, error) {
	session, err := that.sessionRepo.Update(ctx, gameID, func(session *entity.Session) error {
		return session.Join(participant)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	return session, nil
}

func (that *gameService) GetGameByID(ctx context.Context, gameID string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game: %w", err)
	}

	return session, nil
}

func (that *gameService) DeleteGame(ctx context.Context, gameID string) *entity.Session {
	return that.sessionRepo.DeleteByID(ctx, gameID)
}

func (that *gameService) DeleteIdleGames(ctx context.Context, before time.Time) []*entity.Session {
	return that.sessionRepo.DeleteIdle(ctx, before)
}
