package model

import "fmt"

const (
	// NumPoints is the number of points on the board
	NumPoints = 24
	// PiecesPerColor is the number of checkers each side owns
	PiecesPerColor = 15
	// HomeSize is the number of points in a home quadrant
	HomeSize = 6

	// BarPoint is the source coordinate of a move entering from the bar
	BarPoint = -1
	// OffPoint is the destination coordinate of a bear-off move
	OffPoint = NumPoints
)

// Point is one of the 24 board positions. Every checker on a point
// shares the same color.
type Point struct {
	Color Color `json:"color"`
	Count int   `json:"count"`
}

// Empty reports whether the point holds no checkers
func (p Point) Empty() bool {
	return p.Count == 0
}

// Top returns the top checker, if any
func (p Point) Top() (Piece, bool) {
	if p.Count == 0 {
		return Piece{}, false
	}
	return Piece{Color: p.Color}, true
}

// Pieces expands the point into its stack of checkers
func (p Point) Pieces() []Piece {
	pieces := make([]Piece, p.Count)
	for i := range pieces {
		pieces[i] = Piece{Color: p.Color}
	}
	return pieces
}

// Board holds the 24 points plus each side's bar and borne-off checkers
type Board struct {
	Points [NumPoints]Point `json:"points"`
	Bar    [2]int           `json:"bar"`
	Off    [2]int           `json:"off"`
}

// NewStandardBoard returns the standard opening layout.
// White: 2 on 23, 5 on 12, 3 on 7, 5 on 5.
// Black: 2 on 0, 5 on 11, 3 on 16, 5 on 18.
func NewStandardBoard() *Board {
	b := &Board{}
	b.Points[23] = Point{Color: White, Count: 2}
	b.Points[12] = Point{Color: White, Count: 5}
	b.Points[7] = Point{Color: White, Count: 3}
	b.Points[5] = Point{Color: White, Count: 5}

	b.Points[0] = Point{Color: Black, Count: 2}
	b.Points[11] = Point{Color: Black, Count: 5}
	b.Points[16] = Point{Color: Black, Count: 3}
	b.Points[18] = Point{Color: Black, Count: 5}
	return b
}

// ValidPoint reports whether i addresses a point on the board
func ValidPoint(i int) bool {
	return i >= 0 && i < NumPoints
}

// Point returns the point at index i. It panics if i is out of range,
// which is a programming error in callers.
func (b *Board) Point(i int) Point {
	if !ValidPoint(i) {
		panic(fmt.Sprintf("board: point index %d out of range", i))
	}
	return b.Points[i]
}

// Owner returns the color occupying point i, or false if it is empty
func (b *Board) Owner(i int) (Color, bool) {
	p := b.Point(i)
	if p.Empty() {
		return 0, false
	}
	return p.Color, true
}

// Push places a checker of color c on point i
func (b *Board) Push(i int, c Color) {
	p := b.Point(i)
	if p.Count > 0 && p.Color != c {
		panic(fmt.Sprintf("board: cannot stack %s on %s at point %d", c, p.Color, i))
	}
	b.Points[i] = Point{Color: c, Count: p.Count + 1}
}

// Pop removes the top checker from point i
func (b *Board) Pop(i int) Piece {
	p := b.Point(i)
	if p.Count == 0 {
		panic(fmt.Sprintf("board: pop from empty point %d", i))
	}
	p.Count--
	if p.Count == 0 {
		b.Points[i] = Point{}
	} else {
		b.Points[i] = p
	}
	return Piece{Color: p.Color}
}

// OnBar returns the number of checkers of color c waiting on the bar
func (b *Board) OnBar(c Color) int {
	return b.Bar[c]
}

// BorneOff returns the number of checkers of color c already borne off
func (b *Board) BorneOff(c Color) int {
	return b.Off[c]
}

// OnPoints returns the number of checkers of color c on the 24 points
func (b *Board) OnPoints(c Color) int {
	total := 0
	for _, p := range b.Points {
		if p.Count > 0 && p.Color == c {
			total += p.Count
		}
	}
	return total
}

// Total returns every checker of color c, wherever it is
func (b *Board) Total(c Color) int {
	return b.OnPoints(c) + b.Bar[c] + b.Off[c]
}

// HomeRange returns the inclusive index range of c's home quadrant
func HomeRange(c Color) (lo, hi int) {
	if c == White {
		return 0, HomeSize - 1
	}
	return NumPoints - HomeSize, NumPoints - 1
}

// InHome reports whether point i lies in c's home quadrant
func InHome(c Color, i int) bool {
	lo, hi := HomeRange(c)
	return i >= lo && i <= hi
}

// AllHome reports whether every checker of c still in play sits in its home quadrant
func (b *Board) AllHome(c Color) bool {
	if b.Bar[c] > 0 {
		return false
	}
	for i, p := range b.Points {
		if p.Count > 0 && p.Color == c && !InHome(c, i) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
