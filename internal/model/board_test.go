package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStandardBoardLayout(t *testing.T) {
	b := NewStandardBoard()

	assert.Equal(t, Point{Color: White, Count: 2}, b.Point(23))
	assert.Equal(t, Point{Color: White, Count: 5}, b.Point(12))
	assert.Equal(t, Point{Color: White, Count: 3}, b.Point(7))
	assert.Equal(t, Point{Color: White, Count: 5}, b.Point(5))
	assert.Equal(t, Point{Color: Black, Count: 2}, b.Point(0))
	assert.Equal(t, Point{Color: Black, Count: 5}, b.Point(11))
	assert.Equal(t, Point{Color: Black, Count: 3}, b.Point(16))
	assert.Equal(t, Point{Color: Black, Count: 5}, b.Point(18))

	assert.Equal(t, PiecesPerColor, b.Total(White))
	assert.Equal(t, PiecesPerColor, b.Total(Black))
	assert.Zero(t, b.OnBar(White))
	assert.Zero(t, b.BorneOff(Black))
}

func TestBoardPointPanicsOutOfRange(t *testing.T) {
	b := NewStandardBoard()
	assert.Panics(t, func() { b.Point(-1) })
	assert.Panics(t, func() { b.Point(24) })
}

func TestBoardPushPop(t *testing.T) {
	b := &Board{}
	b.Push(3, Black)
	b.Push(3, Black)
	assert.Equal(t, 2, b.Point(3).Count)

	piece := b.Pop(3)
	assert.Equal(t, Black, piece.Color)
	b.Pop(3)
	assert.True(t, b.Point(3).Empty())

	assert.Panics(t, func() { b.Pop(3) })
	b.Push(3, White)
	assert.Panics(t, func() { b.Push(3, Black) })
}

func TestBoardAllHome(t *testing.T) {
	b := &Board{}
	b.Points[0] = Point{Color: White, Count: 10}
	b.Points[5] = Point{Color: White, Count: 5}
	assert.True(t, b.AllHome(White))

	b.Bar[White] = 1
	assert.False(t, b.AllHome(White))

	b.Bar[White] = 0
	b.Points[6] = Point{Color: White, Count: 1}
	assert.False(t, b.AllHome(White))

	b.Points[18] = Point{Color: Black, Count: 15}
	assert.True(t, b.AllHome(Black))
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b := NewStandardBoard()
	c := b.Clone()
	c.Pop(23)
	c.Bar[White]++

	assert.Equal(t, 2, b.Point(23).Count)
	assert.Zero(t, b.OnBar(White))
}

func TestPointPieces(t *testing.T) {
	p := Point{Color: Black, Count: 3}
	pieces := p.Pieces()
	require.Len(t, pieces, 3)
	for _, piece := range pieces {
		assert.Equal(t, Black, piece.Color)
	}

	top, ok := p.Top()
	assert.True(t, ok)
	assert.Equal(t, Black, top.Color)

	_, ok = Point{}.Top()
	assert.False(t, ok)
}

func TestColorHelpers(t *testing.T) {
	assert.Equal(t, Black, White.Opponent())
	assert.Equal(t, White, Black.Opponent())
	assert.Equal(t, -1, White.Direction())
	assert.Equal(t, 1, Black.Direction())

	c, err := ParseColor("Black")
	require.NoError(t, err)
	assert.Equal(t, Black, c)

	_, err = ParseColor("green")
	assert.Error(t, err)
}
