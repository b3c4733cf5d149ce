package apperror

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotJoinable        = errors.New("session is full or already started")
	ErrGameNotActive      = errors.New("game is not active")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrInvalidCell        = errors.New("invalid cell")
	ErrNoMovesAvailable   = errors.New("no moves available")
	ErrInvalidTier        = errors.New("unknown ai tier")
	ErrInvalidMode        = errors.New("unknown game mode")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrSessionExists      = errors.New("session already exists")
	ErrSessionIDExhausted = errors.New("could not allocate a free session id")
)

// Stable error codes delivered to clients.
const (
	CodeSessionNotFound  = "session_not_found"
	CodeNotJoinable      = "not_joinable"
	CodeGameNotActive    = "game_not_active"
	CodeNotYourTurn      = "not_your_turn"
	CodeInvalidCell      = "invalid_cell"
	CodeNoMovesAvailable = "no_moves_available"
	CodeInvalidTier      = "invalid_tier"
	CodeInvalidRequest   = "invalid_request"
	CodeInternal         = "internal_error"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrSessionNotFound, CodeSessionNotFound},
	{ErrNotJoinable, CodeNotJoinable},
	{ErrGameNotActive, CodeGameNotActive},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrInvalidCell, CodeInvalidCell},
	{ErrNoMovesAvailable, CodeNoMovesAvailable},
	{ErrInvalidTier, CodeInvalidTier},
	{ErrInvalidMode, CodeInvalidRequest},
	{ErrInvalidRequest, CodeInvalidRequest},
}

// Code maps an error chain to its client-facing code.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInternal
}

// Message returns the client-facing text for an error. Internal faults are not described.
func Message(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.err.Error()
		}
	}

	return "internal error"
}
