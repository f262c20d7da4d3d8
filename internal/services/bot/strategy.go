package bot

import (
	"github.com/mcoot/backgammon/internal/dependencies/random"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/rules"
)

// Strategy defines how a bot picks one of the legal moves
type Strategy interface {
	// ChooseMove selects a move from moves, which is never empty
	ChooseMove(game *model.GameState, moves []model.Move) model.Move
}

// RandomStrategy picks uniformly among the legal moves
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseMove returns a random legal move
func (s *RandomStrategy) ChooseMove(game *model.GameState, moves []model.Move) model.Move {
	return moves[s.random.Intn(len(moves))]
}

// RacerStrategy bears off when it can, hits when it can, and otherwise
// runs its checkers as far as possible without leaving a blot
type RacerStrategy struct{}

// NewRacerStrategy creates a new RacerStrategy
func NewRacerStrategy() *RacerStrategy {
	return &RacerStrategy{}
}

// ChooseMove returns the highest scoring move; ties go to the earliest
func (s *RacerStrategy) ChooseMove(game *model.GameState, moves []model.Move) model.Move {
	best := moves[0]
	bestScore := s.score(game, best)
	for _, m := range moves[1:] {
		if sc := s.score(game, m); sc > bestScore {
			best, bestScore = m, sc
		}
	}
	return best
}

func (s *RacerStrategy) score(game *model.GameState, m model.Move) int {
	turn := game.CurrentTurn
	if m.To == model.OffPoint {
		return 1000
	}

	score := rules.Distance(turn, m.From, m.To)
	dest := game.Board.Point(m.To)
	switch {
	case !dest.Empty() && dest.Color != turn:
		score += 100 // hit
	case !dest.Empty():
		score += 20 // stacks on an own point
	default:
		score -= 10 // leaves a blot on the destination
	}
	if m.From != model.BarPoint && game.Board.Point(m.From).Count == 2 {
		score -= 10 // breaks a made point
	}
	return score
}
