// Package rules decides whether a single checker move is legal and applies
// legal moves to a board.
//
// Checks run in a fixed order and stop at the first failure:
//
//  1. both coordinates are addressable
//  2. the source holds a checker of the mover's color
//  3. the direction-corrected distance matches an available die
//  4. the destination is open (empty, own color, or a single opposing blot)
//  5. the mover has no checkers waiting on the bar
//  6. bearing off requires every checker to be in the home quadrant
package rules

import (
	"fmt"

	"github.com/mcoot/backgammon/internal/model"
)

// Rejection reasons. Each wraps model.ErrInvalidMove.
var (
	ErrOutOfBounds      = fmt.Errorf("%w: point out of range", model.ErrInvalidMove)
	ErrNoPieceToMove    = fmt.Errorf("%w: no checker of yours on that point", model.ErrInvalidMove)
	ErrWrongDirection   = fmt.Errorf("%w: checkers cannot move backwards", model.ErrInvalidMove)
	ErrDiceMismatch     = fmt.Errorf("%w: distance does not match an available die", model.ErrInvalidMove)
	ErrBlocked          = fmt.Errorf("%w: point is blocked", model.ErrInvalidMove)
	ErrMustEnterFromBar = fmt.Errorf("%w: checkers on the bar must enter first", model.ErrInvalidMove)
	ErrNotAllHome       = fmt.Errorf("%w: all checkers must be home to bear off", model.ErrInvalidMove)
)

// Step is a single-die hop that makes up part of a Play
type Step struct {
	From int
	To   int
	Die  int
}

// Play is a validated move broken into the steps that execute it.
// A combined move has two steps, everything else has one.
type Play struct {
	Move  model.Move
	Steps []Step
}

// Dice returns the die values the play consumes
func (p Play) Dice() []int {
	out := make([]int, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Die
	}
	return out
}

// Validate reports whether move is legal for turn given the remaining dice
func Validate(board *model.Board, turn model.Color, dice model.Dice, move model.Move) bool {
	_, err := Resolve(board, turn, dice, move)
	return err == nil
}

// Resolve checks move and, if legal, returns the steps that execute it.
// It never mutates board or dice.
func Resolve(board *model.Board, turn model.Color, dice model.Dice, move model.Move) (Play, error) {
	from, to := move.From, move.To

	// 1. addressability
	if from != model.BarPoint && !model.ValidPoint(from) {
		return Play{}, ErrOutOfBounds
	}
	if to != model.OffPoint && !model.ValidPoint(to) {
		return Play{}, ErrOutOfBounds
	}
	enter := from == model.BarPoint
	bearOff := to == model.OffPoint
	if enter && bearOff {
		return Play{}, ErrOutOfBounds
	}

	// 2. source
	if enter {
		if board.OnBar(turn) == 0 {
			return Play{}, ErrNoPieceToMove
		}
	} else if owner, ok := board.Owner(from); !ok || owner != turn {
		return Play{}, ErrNoPieceToMove
	}

	// 3. distance
	distance := Distance(turn, from, to)
	if distance <= 0 {
		return Play{}, ErrWrongDirection
	}
	steps, err := matchDice(board, turn, dice, from, to, distance)
	if err != nil {
		return Play{}, err
	}

	// 4. destination (and the intermediate point of a combined move)
	if !bearOff && !Open(board, turn, to) {
		return Play{}, ErrBlocked
	}
	if len(steps) == 2 {
		steps = orderCombined(board, turn, steps)
		if steps == nil {
			return Play{}, ErrBlocked
		}
	}

	// 5. bar must be clear
	if !enter && board.OnBar(turn) > 0 {
		return Play{}, ErrMustEnterFromBar
	}

	// 6. bearing off
	if bearOff && !board.AllHome(turn) {
		return Play{}, ErrNotAllHome
	}

	return Play{Move: move, Steps: steps}, nil
}

// Execute applies a resolved play to board and returns the number of
// opposing checkers sent to the bar.
func Execute(board *model.Board, turn model.Color, play Play) int {
	hits := 0
	for _, s := range play.Steps {
		if s.From == model.BarPoint {
			board.Bar[turn]--
		} else {
			board.Pop(s.From)
		}

		if s.To == model.OffPoint {
			board.Off[turn]++
			continue
		}
		if owner, ok := board.Owner(s.To); ok && owner != turn {
			board.Pop(s.To)
			board.Bar[owner]++
			hits++
		}
		board.Push(s.To, turn)
	}
	return hits
}

// Distance returns how far a checker of color c travels from from to to,
// positive in c's direction of play. Bar and off coordinates map to the
// virtual points just outside each end of the board.
func Distance(c model.Color, from, to int) int {
	if from == model.BarPoint {
		from = EntryOrigin(c)
	}
	if to == model.OffPoint {
		to = OffTarget(c)
	}
	return (to - from) * c.Direction()
}

// EntryOrigin is the virtual point a checker of color c enters from
func EntryOrigin(c model.Color) int {
	if c == model.White {
		return model.NumPoints
	}
	return -1
}

// OffTarget is the virtual point a checker of color c bears off to
func OffTarget(c model.Color) int {
	if c == model.White {
		return -1
	}
	return model.NumPoints
}

// EntryPoint is where a checker of color c lands when entering with die
func EntryPoint(c model.Color, die int) int {
	return EntryOrigin(c) + c.Direction()*die
}

// Open reports whether a checker of color c may land on point i
func Open(board *model.Board, c model.Color, i int) bool {
	p := board.Point(i)
	return p.Empty() || p.Color == c || p.Count == 1
}

// matchDice chooses the die (or pair of dice) that covers distance
func matchDice(board *model.Board, turn model.Color, dice model.Dice, from, to, distance int) ([]Step, error) {
	if dice.Has(distance) {
		return []Step{{From: from, To: to, Die: distance}}, nil
	}

	if to == model.OffPoint {
		if hasCheckerBehind(board, turn, from) {
			return nil, ErrDiceMismatch
		}
		for _, d := range dice.Distinct() {
			if d > distance {
				return []Step{{From: from, To: to, Die: d}}, nil
			}
		}
		return nil, ErrDiceMismatch
	}

	distinct := dice.Distinct()
	if from != model.BarPoint && len(distinct) == 2 && distinct[0]+distinct[1] == distance {
		mid := from + turn.Direction()*distinct[0]
		return []Step{
			{From: from, To: mid, Die: distinct[0]},
			{From: mid, To: to, Die: distinct[1]},
		}, nil
	}
	return nil, ErrDiceMismatch
}

// orderCombined picks the first die order whose intermediate point is open.
// It returns nil when both intermediate points are blocked.
func orderCombined(board *model.Board, turn model.Color, steps []Step) []Step {
	from, to := steps[0].From, steps[1].To
	orders := [][2]int{{steps[0].Die, steps[1].Die}, {steps[1].Die, steps[0].Die}}
	for _, o := range orders {
		mid := from + turn.Direction()*o[0]
		if Open(board, turn, mid) {
			return []Step{
				{From: from, To: mid, Die: o[0]},
				{From: mid, To: to, Die: o[1]},
			}
		}
	}
	return nil
}

// hasCheckerBehind reports whether turn has a checker farther from home than from
func hasCheckerBehind(board *model.Board, turn model.Color, from int) bool {
	if board.OnBar(turn) > 0 {
		return true
	}
	for i := from - turn.Direction(); model.ValidPoint(i); i -= turn.Direction() {
		if owner, ok := board.Owner(i); ok && owner == turn {
			return true
		}
	}
	return false
}
