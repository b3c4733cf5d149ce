package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	ActionCreate = "session:create"
	ActionJoin   = "session:join"
	ActionMove   = "session:move"
	ActionLeave  = "session:leave"

	ActionUpdated  = "session:updated"
	ActionFinished = "session:finished"
	ActionClosed   = "session:closed"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewMessage(action string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return &Message{Action: action, Payload: data}, nil
}

type CreateRequest struct {
	DisplayName string `json:"displayName"`
	Mode        string `json:"mode,omitempty"`
	Tier        string `json:"tier,omitempty"`
}

type JoinRequest struct {
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
}

type MoveRequest struct {
	SessionID string `json:"sessionId"`
	CellIndex *int   `json:"cellIndex"`
}

type LeaveRequest struct {
	SessionID string `json:"sessionId"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Reply answers a request. Only the requester receives it.
type Reply struct {
	Success bool            `json:"success"`
	Session *entity.Session `json:"session,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

func NewReply(session *entity.Session, err error) *Reply {
	if err != nil {
		return &Reply{
			Error: &Error{
				Code:    apperror.Code(err),
				Message: apperror.Message(err),
			},
		}
	}

	return &Reply{Success: true, Session: session}
}

type FinishedPayload struct {
	SessionID string         `json:"sessionId"`
	Outcome   entity.Outcome `json:"outcome"`
}

type ClosedPayload struct {
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason"`
}

// Event is a server-initiated notification before it is encoded.
type Event struct {
	Action  string
	Payload any
}

// UpdateEvents lists what participants receive after a session change.
func UpdateEvents(session *entity.Session) []Event {
	events := []Event{{Action: ActionUpdated, Payload: session}}

	if session.IsFinished() && session.Outcome != nil {
		events = append(events, Event{
			Action: ActionFinished,
			Payload: FinishedPayload{
				SessionID: session.ID,
				Outcome:   *session.Outcome,
			},
		})
	}

	return events
}

func ClosedEvent(session *entity.Session, reason string) Event {
	return Event{
		Action:  ActionClosed,
		Payload: ClosedPayload{SessionID: session.ID, Reason: reason},
	}
}

// Recipients returns the ids of the human participants of session.
func Recipients(session *entity.Session) []string {
	var ids []string
	for _, mark := range []entity.Mark{entity.MarkX, entity.MarkO} {
		participant, ok := session.Participants[mark]
		if ok && !participant.IsBot() {
			ids = append(ids, participant.ID)
		}
	}

	return ids
}
