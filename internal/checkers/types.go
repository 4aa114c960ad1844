package checkers

import (
	"fmt"
	"sort"
)

// Size is the number of rows and columns on the board.
const Size = 8

// Color identifies a side.
type Color string

const (
	NoColor Color = ""
	// White starts on rows 0-2 and advances toward increasing rows.
	White Color = "white"
	// Red starts on rows 5-7, advances toward decreasing rows and moves first.
	Red Color = "red"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Red
	case Red:
		return White
	default:
		return NoColor
	}
}

// forward is the row delta of a simple advance for c.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// crownRow is the farthest row in c's direction of travel.
func (c Color) crownRow() int {
	if c == White {
		return Size - 1
	}
	return 0
}

// Valid reports whether c names one of the two sides.
func (c Color) Valid() bool { return c == White || c == Red }

// Piece is a man or king. Its identity is its current square.
type Piece struct {
	Row   int
	Col   int
	Color Color
	King  bool
}

func (p *Piece) Pos() Pos { return Pos{Row: p.Row, Col: p.Col} }

func (p *Piece) String() string {
	kind := "man"
	if p.King {
		kind = "king"
	}
	return fmt.Sprintf("%s %s@%d,%d", p.Color, kind, p.Row, p.Col)
}

// directions lists the row deltas a piece may travel in.
func (p *Piece) directions() []int {
	if p.King {
		return []int{-1, 1}
	}
	return []int{p.Color.forward()}
}

// Pos is a board coordinate.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Pos) step(dRow, dCol int) Pos { return Pos{Row: p.Row + dRow, Col: p.Col + dCol} }

// InBounds reports whether p lies on the 8x8 grid.
func (p Pos) InBounds() bool { return InBounds(p.Row, p.Col) }

func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// Playable reports whether (row, col) is a dark square. Pieces never leave dark squares.
func Playable(row, col int) bool { return InBounds(row, col) && (row+col)%2 == 1 }

// Moves maps each reachable destination to the pieces captured on the way.
// A simple step maps to an empty slice.
type Moves map[Pos][]*Piece

// Destinations returns the keys of m in row-major order.
func (m Moves) Destinations() []Pos {
	out := make([]Pos, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func (m Moves) Has(row, col int) bool {
	_, ok := m[Pos{Row: row, Col: col}]
	return ok
}

func mustInBounds(row, col int) {
	if !InBounds(row, col) {
		panic(fmt.Sprintf("checkers: square %d,%d is off the board", row, col))
	}
}
