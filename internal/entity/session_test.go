package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

var (
	alice = Participant{ID: "alice-conn", DisplayName: "Alice"}
	bob   = Participant{ID: "bob-conn", DisplayName: "Bob"}
)

func newStartedSession(t *testing.T) *Session {
	t.Helper()

	session := NewSession("ABC123", alice, ModePlayerVsPlayer, "")
	require.NoError(t, session.Join(bob))

	return session
}

func TestNewSession(t *testing.T) {
	t.Run("Player vs player session waits for O", func(t *testing.T) {
		// When: Alice creates a session
		session := NewSession("ABC123", alice, ModePlayerVsPlayer, TierHard)

		// Then: the session is waiting with an empty board and X to move
		expected := &Session{
			ID:           "ABC123",
			Turn:         MarkX,
			Participants: map[Mark]Participant{MarkX: alice},
			Phase:        PhaseWaiting,
			Mode:         ModePlayerVsPlayer,
		}
		require.Equal(t, expected, session)
		assert.Equal(t, Board{}, session.Board)
	})

	t.Run("Player vs AI session starts immediately", func(t *testing.T) {
		// When: Alice creates an AI session
		session := NewSession("ABC123", alice, ModePlayerVsAI, TierHard)

		// Then: the bot is bound as O and the game is running
		assert.Equal(t, PhaseInProgress, session.Phase)
		assert.Equal(t, TierHard, session.AITier)
		assert.True(t, session.Participants[MarkO].IsBot())
		assert.Equal(t, "AI (hard)", session.Participants[MarkO].DisplayName)
		assert.False(t, session.IsBotTurn())
	})
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("")
	require.NoError(t, err)
	assert.Equal(t, TierMedium, tier)

	tier, err = ParseTier("hard")
	require.NoError(t, err)
	assert.Equal(t, TierHard, tier)

	_, err = ParseTier("impossible")
	require.ErrorIs(t, err, apperror.ErrInvalidTier)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePlayerVsPlayer, mode)

	mode, err = ParseMode("ai")
	require.NoError(t, err)
	assert.Equal(t, ModePlayerVsAI, mode)

	_, err = ParseMode("coop")
	require.ErrorIs(t, err, apperror.ErrInvalidMode)
}

func TestSession_Join(t *testing.T) {
	t.Run("Binds O and starts the game", func(t *testing.T) {
		// Given: a waiting session
		session := NewSession("ABC123", alice, ModePlayerVsPlayer, "")

		// When: Bob joins
		err := session.Join(bob)

		// Then: Bob plays O and the game is in progress
		require.NoError(t, err)
		assert.Equal(t, bob, session.Participants[MarkO])
		assert.Equal(t, PhaseInProgress, session.Phase)
	})

	t.Run("Rejects a second joiner", func(t *testing.T) {
		// Given: a session that already started
		session := newStartedSession(t)

		// When: a third participant tries to join
		err := session.Join(Participant{ID: "carol-conn", DisplayName: "Carol"})

		// Then: the session is not joinable
		require.ErrorIs(t, err, apperror.ErrNotJoinable)
		assert.Equal(t, bob, session.Participants[MarkO])
	})

	t.Run("Rejects joining an AI session", func(t *testing.T) {
		session := NewSession("ABC123", alice, ModePlayerVsAI, TierEasy)

		require.ErrorIs(t, session.Join(bob), apperror.ErrNotJoinable)
	})

	t.Run("Rejects the host joining its own session", func(t *testing.T) {
		session := NewSession("ABC123", alice, ModePlayerVsPlayer, "")

		require.ErrorIs(t, session.Join(alice), apperror.ErrNotJoinable)
		assert.Equal(t, PhaseWaiting, session.Phase)
	})
}

func TestSession_MakeTurn(t *testing.T) {
	t.Run("Plays the winning scenario on the top row", func(t *testing.T) {
		// Given: Alice (X) and Bob (O) in a started session
		session := newStartedSession(t)

		// When: they alternate moves
		require.NoError(t, session.MakeTurn(alice.ID, 0))
		assert.Equal(t, MarkX, session.Board[0])
		assert.Equal(t, MarkO, session.Turn)

		require.NoError(t, session.MakeTurn(bob.ID, 4))
		assert.Equal(t, MarkO, session.Board[4])
		assert.Equal(t, MarkX, session.Turn)

		require.NoError(t, session.MakeTurn(alice.ID, 1))
		assert.Equal(t, MarkO, session.Turn)

		require.NoError(t, session.MakeTurn(bob.ID, 3))
		assert.Equal(t, MarkX, session.Turn)

		require.NoError(t, session.MakeTurn(alice.ID, 2))

		// Then: X wins on the top row and the game is finished
		assert.Equal(t, PhaseFinished, session.Phase)
		require.NotNil(t, session.Outcome)
		assert.Equal(t, Outcome{Kind: OutcomeWin, Winner: MarkX, Line: []int{0, 1, 2}}, *session.Outcome)
		assert.Equal(t, MarkX, session.Turn)
	})

	t.Run("Ends in a draw on a full board", func(t *testing.T) {
		// Given: a started session
		session := newStartedSession(t)

		// When: the players fill the board without a line
		// X O X / X O O / O X X
		moves := []struct {
			id   string
			cell int
		}{
			{alice.ID, 0}, {bob.ID, 1}, {alice.ID, 2},
			{bob.ID, 4}, {alice.ID, 3}, {bob.ID, 5},
			{alice.ID, 7}, {bob.ID, 6}, {alice.ID, 8},
		}
		for i, move := range moves {
			require.NoError(t, session.MakeTurn(move.id, move.cell), "move %d", i)
		}

		// Then: the session is finished as a draw
		assert.Equal(t, PhaseFinished, session.Phase)
		assert.Equal(t, &Outcome{Kind: OutcomeDraw}, session.Outcome)
	})

	t.Run("Rejects a move out of turn without changing the board", func(t *testing.T) {
		// Given: a started session where X is to move
		session := newStartedSession(t)
		before := session.Clone()

		// When: Bob (O) tries to move
		err := session.MakeTurn(bob.ID, 4)

		// Then: the move is rejected and nothing changed
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, before, session)
	})

	t.Run("Rejects a stranger as not your turn", func(t *testing.T) {
		session := newStartedSession(t)

		err := session.MakeTurn("mallory", 0)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Nobody can move for the bot", func(t *testing.T) {
		// Given: an AI session where O is the bot
		session := NewSession("ABC123", alice, ModePlayerVsAI, TierEasy)
		require.NoError(t, session.MakeTurn(alice.ID, 4))

		// When: a client claims the bot identity
		err := session.MakeTurn(BotParticipantID, 0)

		// Then: it resolves to no mark
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.True(t, session.IsBotTurn())
	})

	t.Run("Rejects occupied and out of range cells", func(t *testing.T) {
		// Given: a started session with X on cell 0
		session := newStartedSession(t)
		require.NoError(t, session.MakeTurn(alice.ID, 0))
		before := session.Clone()

		// When: O targets the occupied cell and invalid indexes
		for _, cell := range []int{0, -1, 9, 20} {
			err := session.MakeTurn(bob.ID, cell)

			// Then: each is an invalid cell and the board is unchanged
			require.ErrorIs(t, err, apperror.ErrInvalidCell, "cell %d", cell)
			assert.Equal(t, before, session)
		}
	})

	t.Run("Rejects moves while waiting", func(t *testing.T) {
		// Given: a session without O
		session := NewSession("ABC123", alice, ModePlayerVsPlayer, "")

		// When: Alice moves
		err := session.MakeTurn(alice.ID, 0)

		// Then: the game is not active
		require.ErrorIs(t, err, apperror.ErrGameNotActive)
		assert.Equal(t, Board{}, session.Board)
	})

	t.Run("Rejects moves after the game finished", func(t *testing.T) {
		// Given: a finished session
		session := newStartedSession(t)
		for _, move := range []struct {
			id   string
			cell int
		}{{alice.ID, 0}, {bob.ID, 3}, {alice.ID, 1}, {bob.ID, 4}, {alice.ID, 2}} {
			require.NoError(t, session.MakeTurn(move.id, move.cell))
		}
		before := session.Clone()

		// When: O tries to keep playing
		err := session.MakeTurn(bob.ID, 5)

		// Then: the game is not active and the state is frozen
		require.ErrorIs(t, err, apperror.ErrGameNotActive)
		assert.Equal(t, before, session)
	})
}

func TestSession_Clone(t *testing.T) {
	// Given: a finished session
	session := newStartedSession(t)
	session.Phase = PhaseFinished
	session.Outcome = &Outcome{Kind: OutcomeWin, Winner: MarkX, Line: []int{0, 1, 2}}

	// When: the clone is modified
	clone := session.Clone()
	clone.Board[0] = MarkO
	clone.Participants[MarkO] = Participant{ID: "carol"}
	clone.Outcome.Line[0] = 8

	// Then: the original is untouched
	assert.Equal(t, Empty, session.Board[0])
	assert.Equal(t, bob, session.Participants[MarkO])
	assert.Equal(t, []int{0, 1, 2}, session.Outcome.Line)
}
