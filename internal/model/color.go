package model

import "fmt"

// Color identifies one of the two sides
type Color int

const (
	White Color = iota
	Black
)

// String returns the display name of the color
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Opponent returns the other color
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Direction is the index delta of a single pip of movement.
// White travels toward point 0, Black toward point 23.
func (c Color) Direction() int {
	if c == White {
		return -1
	}
	return 1
}

// Valid reports whether c is White or Black
func (c Color) Valid() bool {
	return c == White || c == Black
}

// ParseColor converts a display name back to a Color
func ParseColor(s string) (Color, error) {
	switch s {
	case "White", "white":
		return White, nil
	case "Black", "black":
		return Black, nil
	default:
		return 0, fmt.Errorf("unknown color %q", s)
	}
}

// MarshalText encodes the color by name
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a color name
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Piece is a single checker
type Piece struct {
	Color Color
}
