package model

// Dice holds the die values still available this turn.
// A double expands to four entries.
type Dice struct {
	Rolls []int `json:"rolls"`
}

// NewDice builds the available values for a roll of d1 and d2
func NewDice(d1, d2 int) Dice {
	if d1 == d2 {
		return Dice{Rolls: []int{d1, d1, d1, d1}}
	}
	return Dice{Rolls: []int{d1, d2}}
}

// Empty reports whether no values remain
func (d Dice) Empty() bool {
	return len(d.Rolls) == 0
}

// Has reports whether value is available
func (d Dice) Has(value int) bool {
	for _, v := range d.Rolls {
		if v == value {
			return true
		}
	}
	return false
}

// Distinct returns each available value once, in ascending order
func (d Dice) Distinct() []int {
	seen := [7]bool{}
	out := make([]int, 0, 2)
	for v := 1; v <= 6; v++ {
		for _, r := range d.Rolls {
			if r == v && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Consume removes one occurrence of value and reports whether it was present.
// Consuming an absent value is a no-op.
func (d *Dice) Consume(value int) bool {
	for i, v := range d.Rolls {
		if v == value {
			d.Rolls = append(d.Rolls[:i:i], d.Rolls[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns an independent copy
func (d Dice) Clone() Dice {
	if d.Rolls == nil {
		return Dice{}
	}
	rolls := make([]int, len(d.Rolls))
	copy(rolls, d.Rolls)
	return Dice{Rolls: rolls}
}
