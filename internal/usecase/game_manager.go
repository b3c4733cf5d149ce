package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	ClosedReasonLeft    = "left"
	ClosedReasonExpired = "expired"
)

type gameService interface {
	CreateGame(ctx context.Context, host entity.Participant, mode entity.Mode, tier entity.Tier) (*entity.Session, error)
	JoinGame(ctx context.Context, gameID string, participant entity.Participant) (*entity.Session, error)
	GetGameByID(ctx context.Context, gameID string) (*entity.Session, error)
	DeleteGame(ctx context.Context, gameID string) *entity.Session
	DeleteIdleGames(ctx context.Context, before time.Time) []*entity.Session
}

type gamePlayService interface {
	MakeTurn(ctx context.Context, gameID, participantID string, cell int) (*entity.Session, error)
	MakeBotTurn(ctx context.Context, gameID string) (*entity.Session, error)
	MakeFallbackBotTurn(ctx context.Context, gameID string) (*entity.Session, error)
}

// Broadcaster delivers session events to the participants' connections.
type Broadcaster interface {
	SessionUpdated(ctx context.Context, session *entity.Session)
	SessionClosed(ctx context.Context, session *entity.Session, reason string)
}

type Options struct {
	// BotTimeout bounds the configured search. Zero means no limit.
	BotTimeout time.Duration
	// BotDelay is waited before the bot starts thinking.
	BotDelay time.Duration
	// SessionTTL is the idle time after which the janitor removes a session.
	SessionTTL time.Duration
	// JanitorInterval is how often idle sessions are looked for.
	JanitorInterval time.Duration
}

type GameManager struct {
	logger *slog.Logger

	gameService     gameService
	gamePlayService gamePlayService
	broadcaster     Broadcaster
	options         Options

	ctx      context.Context
	cancel   context.CancelFunc
	botTurns sync.WaitGroup

	// mu guards closed and every botTurns.Add.
	mu     sync.Mutex
	closed bool
}

func NewGameManager(
	logger *slog.Logger,
	gameService gameService,
	gamePlayService gamePlayService,
	broadcaster Broadcaster,
	options Options,
) *GameManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &GameManager{
		logger: logger,

		gameService:     gameService,
		gamePlayService: gamePlayService,
		broadcaster:     broadcaster,
		options:         options,

		ctx:    ctx,
		cancel: cancel,
	}
}

func (that *GameManager) CreateGame(ctx context.Context, host entity.Participant, mode entity.Mode, tier entity.Tier) (*entity.Session, error) {
	log := that.logger.With("method", "CreateGame")

	if mode != entity.ModePlayerVsAI {
		tier = ""
	}

	session, err := that.gameService.CreateGame(ctx, host, mode, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "gameID", session.ID, "mode", session.Mode, "tier", session.AITier)

	return session, nil
}

// JoinGame binds participant as O and notifies both sides.
func (that *GameManager) JoinGame(ctx context.Context, gameID string, participant entity.Participant) (*entity.Session, error) {
	log := that.logger.With("method", "JoinGame")

	session, err := that.gameService.JoinGame(ctx, gameID, participant)
	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	log.Info("participant joined", "gameID", session.ID)

	that.broadcaster.SessionUpdated(ctx, session)

	return session, nil
}

// MakeTurn applies a human move and notifies both sides. When the bot is to move next
// its turn is played in the background and announced as a separate update.
func (that *GameManager) MakeTurn(ctx context.Context, gameID, participantID string, cell int) (*entity.Session, error) {
	log := that.logger.With("method", "MakeTurn")

	session, err := that.gamePlayService.MakeTurn(ctx, gameID, participantID, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	log.Debug("turn made", "gameID", session.ID, "cell", cell)

	that.broadcaster.SessionUpdated(ctx, session)

	if session.IsFinished() {
		log.Info("game finished", "gameID", session.ID, "outcome", session.Outcome.Kind)
	}

	if session.IsBotTurn() {
		that.scheduleBotTurn(session.ID)
	}

	return session, nil
}

// LeaveGame removes the session when participantID is bound to it. Anyone else leaving is a no-op.
func (that *GameManager) LeaveGame(ctx context.Context, gameID, participantID string) error {
	log := that.logger.With("method", "LeaveGame")

	session, err := that.gameService.GetGameByID(ctx, gameID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to leave game: %w", err)
	}

	if !session.HasParticipant(participantID) {
		return nil
	}

	removed := that.gameService.DeleteGame(ctx, gameID)
	if removed == nil {
		return nil
	}

	log.Info("game closed", "gameID", gameID, "reason", ClosedReasonLeft)

	that.broadcaster.SessionClosed(ctx, removed, ClosedReasonLeft)

	return nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Session, error) {
	session, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return session, nil
}

// RunJanitor removes sessions idle for longer than the configured ttl until ctx is done.
func (that *GameManager) RunJanitor(ctx context.Context) {
	log := that.logger.With("method", "RunJanitor")

	if that.options.SessionTTL <= 0 || that.options.JanitorInterval <= 0 {
		log.Info("janitor disabled")
		return
	}

	ticker := time.NewTicker(that.options.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			that.expireIdle(ctx, now)
		}
	}
}

func (that *GameManager) expireIdle(ctx context.Context, now time.Time) {
	log := that.logger.With("method", "expireIdle")

	expired := that.gameService.DeleteIdleGames(ctx, now.Add(-that.options.SessionTTL))
	for _, session := range expired {
		log.Info("game closed", "gameID", session.ID, "reason", ClosedReasonExpired)

		that.broadcaster.SessionClosed(ctx, session, ClosedReasonExpired)
	}
}

// Wait blocks until every scheduled bot turn has been played.
func (that *GameManager) Wait() {
	that.botTurns.Wait()
}

// Close abandons pending bot turns and waits for them to return.
// Bot turns owed after Close are never started.
func (that *GameManager) Close() {
	that.mu.Lock()
	that.closed = true
	that.mu.Unlock()

	that.cancel()
	that.botTurns.Wait()
}

func (that *GameManager) scheduleBotTurn(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		that.logger.Debug("manager is closed, bot turn not scheduled", "gameID", gameID)
		return
	}

	that.botTurns.Add(1)

	go func() {
		defer that.botTurns.Done()

		that.playBotTurn(gameID)
	}()
}

func (that *GameManager) playBotTurn(gameID string) {
	log := that.logger.With("method", "playBotTurn", "gameID", gameID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("bot turn panicked", "panic", r)
		}
	}()

	if that.options.BotDelay > 0 {
		timer := time.NewTimer(that.options.BotDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-that.ctx.Done():
			return
		}
	}

	ctx := that.ctx
	if that.options.BotTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(that.ctx, that.options.BotTimeout)
		defer cancel()
	}

	session, err := that.gamePlayService.MakeBotTurn(ctx, gameID)
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn("bot search timed out, playing fallback move", "timeout", that.options.BotTimeout)

		session, err = that.gamePlayService.MakeFallbackBotTurn(that.ctx, gameID)
	}

	if errors.Is(err, apperror.ErrSessionNotFound) || errors.Is(err, context.Canceled) {
		log.Debug("bot turn dropped", "reason", err)
		return
	}

	if err != nil {
		log.Error("failed to make bot turn", "error", err)
		return
	}

	if session.IsFinished() {
		log.Info("game finished", "outcome", session.Outcome.Kind)
	}

	that.broadcaster.SessionUpdated(that.ctx, session)
}
