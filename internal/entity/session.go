package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

type Mode string

const (
	ModePlayerVsPlayer Mode = "pvp"
	ModePlayerVsAI     Mode = "ai"
)

// ParseMode defaults an empty mode to player vs player.
func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case "":
		return ModePlayerVsPlayer, nil
	case ModePlayerVsPlayer, ModePlayerVsAI:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidMode, value)
	}
}

type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// ParseTier defaults an empty tier to medium.
func ParseTier(value string) (Tier, error) {
	switch tier := Tier(value); tier {
	case "":
		return TierMedium, nil
	case TierEasy, TierMedium, TierHard:
		return tier, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidTier, value)
	}
}

type Session struct {
	ID           string               `json:"id"`
	Board        Board                `json:"board"`
	Turn         Mark                 `json:"turn"`
	Participants map[Mark]Participant `json:"participants"`
	Phase        Phase                `json:"phase"`
	Outcome      *Outcome             `json:"outcome,omitempty"`
	Mode         Mode                 `json:"mode"`
	AITier       Tier                 `json:"aiTier,omitempty"`
}

// NewSession binds host as X. In PlayerVsAI mode the bot is bound as O and the game starts at once.
func NewSession(id string, host Participant, mode Mode, tier Tier) *Session {
	session := &Session{
		ID:           id,
		Turn:         MarkX,
		Participants: map[Mark]Participant{MarkX: host},
		Phase:        PhaseWaiting,
		Mode:         ModePlayerVsPlayer,
	}

	if mode == ModePlayerVsAI {
		session.Mode = ModePlayerVsAI
		session.AITier = tier
		session.Participants[MarkO] = NewBotParticipant(tier)
		session.Phase = PhaseInProgress
	}

	return session
}

func (that *Session) IsWaiting() bool {
	return that.Phase == PhaseWaiting
}

func (that *Session) IsInProgress() bool {
	return that.Phase == PhaseInProgress
}

func (that *Session) IsFinished() bool {
	return that.Phase == PhaseFinished
}

// IsBotTurn reports whether the engine owes the session a bot move.
func (that *Session) IsBotTurn() bool {
	return that.IsInProgress() && that.Participants[that.Turn].IsBot()
}

// Join binds participant as O and starts the game.
func (that *Session) Join(participant Participant) error {
	if !that.IsWaiting() {
		return fmt.Errorf("%w: phase %s", apperror.ErrNotJoinable, that.Phase)
	}

	if _, ok := that.Participants[MarkO]; ok {
		return apperror.ErrNotJoinable
	}

	if host, ok := that.Participants[MarkX]; ok && host.ID == participant.ID {
		return fmt.Errorf("%w: already bound as %s", apperror.ErrNotJoinable, MarkX)
	}

	that.Participants[MarkO] = participant
	that.Phase = PhaseInProgress

	return nil
}

// MarkOf resolves the mark bound to a human participant.
func (that *Session) MarkOf(participantID string) (Mark, bool) {
	for _, mark := range []Mark{MarkX, MarkO} {
		participant, ok := that.Participants[mark]
		if ok && !participant.IsBot() && participant.ID == participantID {
			return mark, true
		}
	}

	return Empty, false
}

func (that *Session) HasParticipant(participantID string) bool {
	_, ok := that.MarkOf(participantID)
	return ok
}

func (that *Session) ConfirmInProgress() error {
	if !that.IsInProgress() {
		return fmt.Errorf("%w: phase %s", apperror.ErrGameNotActive, that.Phase)
	}

	return nil
}

// MakeTurn applies a move on behalf of a human participant.
func (that *Session) MakeTurn(participantID string, cell int) error {
	if err := that.ConfirmInProgress(); err != nil {
		return err
	}

	mark, ok := that.MarkOf(participantID)
	if !ok {
		return fmt.Errorf("%w: not a participant", apperror.ErrNotYourTurn)
	}

	return that.PlaceMark(mark, cell)
}

// PlaceMark writes mark into cell, then finishes the game or passes the turn.
// Nothing is changed when validation fails.
func (that *Session) PlaceMark(mark Mark, cell int) error {
	if err := that.ConfirmInProgress(); err != nil {
		return err
	}

	if mark != that.Turn {
		return apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d out of range", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != Empty {
		return fmt.Errorf("%w: cell %d is occupied", apperror.ErrInvalidCell, cell)
	}

	that.Board[cell] = mark

	// the turn stays with the mover once the game is over
	if outcome := Evaluate(that.Board); outcome.IsTerminal() {
		that.Phase = PhaseFinished
		that.Outcome = &outcome
		return nil
	}

	that.Turn = mark.Opponent()

	return nil
}

// Clone returns a deep copy safe to hand out of the registry.
func (that *Session) Clone() *Session {
	clone := *that

	clone.Participants = make(map[Mark]Participant, len(that.Participants))
	for mark, participant := range that.Participants {
		clone.Participants[mark] = participant
	}

	if that.Outcome != nil {
		outcome := *that.Outcome
		outcome.Line = append([]int(nil), that.Outcome.Line...)
		clone.Outcome = &outcome
	}

	return &clone
}
