package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const winScore = 10

type BotService interface {
	ChooseMove(ctx context.Context, board entity.Board, mark entity.Mark, tier entity.Tier) (int, error)
}

type botService struct {
	intn    func(n int) int
	float64 func() float64
}

func NewBotService() BotService {
	return &botService{
		intn:    rand.Intn,    //nolint: gosec // it's ok
		float64: rand.Float64, //nolint: gosec // it's ok
	}
}

// ChooseMove picks a cell for mark. board is passed by value and never changes for the caller.
func (that *botService) ChooseMove(ctx context.Context, board entity.Board, mark entity.Mark, tier entity.Tier) (int, error) {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return -1, apperror.ErrNoMovesAvailable
	}

	switch tier {
	case entity.TierEasy:
		return that.randomMove(availableCells), nil
	case entity.TierHard:
		return bestMove(ctx, board, mark)
	case entity.TierMedium:
		if that.float64() < 0.5 {
			return bestMove(ctx, board, mark)
		}

		return that.randomMove(availableCells), nil
	default:
		return -1, fmt.Errorf("%w: %q", apperror.ErrInvalidTier, tier)
	}
}

func (that *botService) randomMove(availableCells []int) int {
	return availableCells[that.intn(len(availableCells))]
}

// bestMove runs a full minimax. On equal scores the lowest cell index wins.
func bestMove(ctx context.Context, board entity.Board, mark entity.Mark) (int, error) {
	bestScore := math.MinInt
	move := -1

	for cell := range board {
		if board[cell] != entity.Empty {
			continue
		}

		if err := ctx.Err(); err != nil {
			return -1, fmt.Errorf("search interrupted: %w", err)
		}

		board[cell] = mark
		score := minimax(&board, 0, false, mark)
		board[cell] = entity.Empty

		if score > bestScore {
			bestScore = score
			move = cell
		}
	}

	return move, nil
}

// minimax scores the position for mark. Faster wins and slower losses score higher.
func minimax(board *entity.Board, depth int, maximizing bool, mark entity.Mark) int {
	switch outcome := entity.Evaluate(*board); outcome.Kind {
	case entity.OutcomeWin:
		if outcome.Winner == mark {
			return winScore - depth
		}
		return depth - winScore
	case entity.OutcomeDraw:
		return 0
	case entity.OutcomeNone:
	}

	current := mark
	bestScore := math.MaxInt
	if maximizing {
		bestScore = math.MinInt
	} else {
		current = mark.Opponent()
	}

	for cell := range board {
		if board[cell] != entity.Empty {
			continue
		}

		board[cell] = current
		score := minimax(board, depth+1, !maximizing, mark)
		board[cell] = entity.Empty

		if maximizing {
			bestScore = max(bestScore, score)
		} else {
			bestScore = min(bestScore, score)
		}
	}

	return bestScore
}
