package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const maxDisplayNameLength = 32

type gameManager interface {
	CreateGame(ctx context.Context, host entity.Participant, mode entity.Mode, tier entity.Tier) (*entity.Session, error)
	JoinGame(ctx context.Context, gameID string, participant entity.Participant) (*entity.Session, error)
	MakeTurn(ctx context.Context, gameID, participantID string, cell int) (*entity.Session, error)
	LeaveGame(ctx context.Context, gameID, participantID string) error
}

// Handler turns decoded requests into game manager calls and replies.
// Every transport adapter goes through it so both speak the same protocol.
type Handler struct {
	logger      *slog.Logger
	gameManager gameManager
}

func NewHandler(logger *slog.Logger, gameManager gameManager) *Handler {
	return &Handler{
		logger:      logger,
		gameManager: gameManager,
	}
}

func (that *Handler) Create(ctx context.Context, participantID string, req CreateRequest) *Reply {
	log := that.logger.With("method", "Create", "participantID", participantID)

	host, err := newParticipant(participantID, req.DisplayName)
	if err != nil {
		return NewReply(nil, err)
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		return NewReply(nil, err)
	}

	var tier entity.Tier
	if mode == entity.ModePlayerVsAI {
		if tier, err = entity.ParseTier(req.Tier); err != nil {
			return NewReply(nil, err)
		}
	}

	session, err := that.gameManager.CreateGame(ctx, host, mode, tier)
	if err != nil {
		that.logFailure(log, err)
	}

	return NewReply(session, err)
}

func (that *Handler) Join(ctx context.Context, participantID string, req JoinRequest) *Reply {
	log := that.logger.With("method", "Join", "participantID", participantID)

	participant, err := newParticipant(participantID, req.DisplayName)
	if err != nil {
		return NewReply(nil, err)
	}

	if req.SessionID == "" {
		return NewReply(nil, fmt.Errorf("%w: sessionId is required", apperror.ErrInvalidRequest))
	}

	session, err := that.gameManager.JoinGame(ctx, req.SessionID, participant)
	if err != nil {
		that.logFailure(log, err)
	}

	return NewReply(session, err)
}

func (that *Handler) Move(ctx context.Context, participantID string, req MoveRequest) *Reply {
	log := that.logger.With("method", "Move", "participantID", participantID)

	if req.SessionID == "" || req.CellIndex == nil {
		return NewReply(nil, fmt.Errorf("%w: sessionId and cellIndex are required", apperror.ErrInvalidRequest))
	}

	session, err := that.gameManager.MakeTurn(ctx, req.SessionID, participantID, *req.CellIndex)
	if err != nil {
		that.logFailure(log, err)
	}

	return NewReply(session, err)
}

// Leave never replies.
func (that *Handler) Leave(ctx context.Context, participantID string, req LeaveRequest) {
	log := that.logger.With("method", "Leave", "participantID", participantID)

	if err := that.gameManager.LeaveGame(ctx, req.SessionID, participantID); err != nil {
		that.logFailure(log, err)
	}
}

// logFailure keeps rule violations at debug level. Only internal faults are errors.
func (that *Handler) logFailure(log *slog.Logger, err error) {
	if apperror.Code(err) == apperror.CodeInternal {
		log.Error("request failed", "error", err)
		return
	}

	log.Debug("request rejected", "error", err)
}

func newParticipant(id, displayName string) (entity.Participant, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return entity.Participant{}, fmt.Errorf("%w: displayName is required", apperror.ErrInvalidRequest)
	}

	if len([]rune(displayName)) > maxDisplayNameLength {
		return entity.Participant{}, fmt.Errorf("%w: displayName is too long", apperror.ErrInvalidRequest)
	}

	if id == "" || id == entity.BotParticipantID {
		return entity.Participant{}, fmt.Errorf("%w: bad participant identity", apperror.ErrInvalidRequest)
	}

	return entity.Participant{ID: id, DisplayName: displayName}, nil
}
