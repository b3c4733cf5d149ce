package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	t.Run("Returns win for every fixed line", func(t *testing.T) {
		for _, line := range WinLines {
			// Given: a board where only this line is filled with O
			var board Board
			for _, cell := range line {
				board[cell] = MarkO
			}

			// When: evaluating the board
			outcome := Evaluate(board)

			// Then: O wins on exactly that line
			assert.Equal(t, Outcome{Kind: OutcomeWin, Winner: MarkO, Line: []int{line[0], line[1], line[2]}}, outcome)
		}
	})

	t.Run("Rows are checked before columns and diagonals", func(t *testing.T) {
		// Given: X completes the top row, the left column and the main diagonal at once
		board := Board{
			MarkX, MarkX, MarkX,
			MarkX, MarkX, MarkO,
			MarkX, MarkO, MarkX,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: the top row is reported
		assert.Equal(t, []int{0, 1, 2}, outcome.Line)
	})

	t.Run("Columns are checked before diagonals", func(t *testing.T) {
		// Given: O completes the middle column and the anti-diagonal
		board := Board{
			MarkX, MarkO, MarkO,
			MarkX, MarkO, MarkX,
			MarkO, MarkO, MarkX,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: the column wins the tie-break
		assert.Equal(t, OutcomeWin, outcome.Kind)
		assert.Equal(t, []int{1, 4, 7}, outcome.Line)
	})

	t.Run("Returns draw on a full board without a line", func(t *testing.T) {
		// Given: a full board with no three in a row
		board := Board{
			MarkX, MarkO, MarkX,
			MarkO, MarkX, MarkO,
			MarkO, MarkX, MarkO,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: it is a draw
		assert.Equal(t, Outcome{Kind: OutcomeDraw}, outcome)
		assert.True(t, outcome.IsTerminal())
	})

	t.Run("Returns none while the game can continue", func(t *testing.T) {
		// Given: a partially filled board
		board := Board{
			MarkX, MarkO, Empty,
			Empty, MarkX, Empty,
			Empty, Empty, MarkO,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: nothing is decided
		assert.Equal(t, OutcomeNone, outcome.Kind)
		assert.False(t, outcome.IsTerminal())
	})

	t.Run("A win on the last free cell beats draw", func(t *testing.T) {
		// Given: a full board where X's final move completed a diagonal
		board := Board{
			MarkX, MarkO, MarkX,
			MarkO, MarkX, MarkO,
			MarkO, MarkX, MarkX,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: X wins
		assert.Equal(t, OutcomeWin, outcome.Kind)
		assert.Equal(t, MarkX, outcome.Winner)
		assert.Equal(t, []int{0, 4, 8}, outcome.Line)
	})
}

func TestBoard_EmptyCells(t *testing.T) {
	board := Board{MarkX, Empty, MarkO, Empty, Empty, MarkX, MarkO, Empty, MarkX}

	assert.Equal(t, []int{1, 3, 4, 7}, board.EmptyCells())
	assert.False(t, board.IsFull())
	assert.Empty(t, Board{MarkX, MarkO, MarkX, MarkO, MarkX, MarkO, MarkO, MarkX, MarkO}.EmptyCells())
}

func TestMark_Opponent(t *testing.T) {
	assert.Equal(t, MarkO, MarkX.Opponent())
	assert.Equal(t, MarkX, MarkO.Opponent())
	assert.Equal(t, Empty, Empty.Opponent())
}
