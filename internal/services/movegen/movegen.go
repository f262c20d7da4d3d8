// Package movegen enumerates the legal single-checker moves for the side on turn.
package movegen

import (
	"cmp"
	"slices"

	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/rules"
)

// Generate returns the legal moves for the player on turn in state.
// The result is a set: each (from, to) pair appears once, ordered by
// source then destination.
func Generate(state *model.GameState) []model.Move {
	if state == nil || state.Status != model.GameStatusInProgress {
		return []model.Move{}
	}
	return ForPosition(&state.Board, state.CurrentTurn, state.Dice)
}

// ForPosition returns the legal moves for turn on board with the given dice
func ForPosition(board *model.Board, turn model.Color, dice model.Dice) []model.Move {
	moves := []model.Move{}
	if dice.Empty() {
		return moves
	}

	seen := make(map[model.Move]struct{})
	for _, candidate := range candidates(board, turn, dice) {
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		if rules.Validate(board, turn, dice, candidate) {
			moves = append(moves, candidate)
		}
	}

	slices.SortFunc(moves, func(a, b model.Move) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return moves
}

// candidates lists every move worth asking the validator about
func candidates(board *model.Board, turn model.Color, dice model.Dice) []model.Move {
	distinct := dice.Distinct()

	if board.OnBar(turn) > 0 {
		out := make([]model.Move, 0, len(distinct))
		for _, d := range distinct {
			out = append(out, model.Move{From: model.BarPoint, To: rules.EntryPoint(turn, d)})
		}
		return out
	}

	var out []model.Move
	for from := 0; from < model.NumPoints; from++ {
		if owner, ok := board.Owner(from); !ok || owner != turn {
			continue
		}
		for _, d := range distinct {
			out = append(out, model.Move{From: from, To: target(turn, from, d)})
		}
		if len(distinct) == 2 {
			if to := from + turn.Direction()*(distinct[0]+distinct[1]); model.ValidPoint(to) {
				out = append(out, model.Move{From: from, To: to})
			}
		}
	}
	return out
}

// target is the landing coordinate for a single die, collapsing any
// position past the home edge to the bear-off sentinel
func target(turn model.Color, from, die int) int {
	to := from + turn.Direction()*die
	if !model.ValidPoint(to) {
		return model.OffPoint
	}
	return to
}
