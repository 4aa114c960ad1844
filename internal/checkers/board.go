package checkers

import (
	"errors"
	"fmt"
)

var (
	ErrNotPlayable = errors.New("square is not playable")
	ErrOccupied    = errors.New("square already occupied")
	ErrBadColor    = errors.New("unknown piece color")
)

// Board is the 8x8 grid plus the number of live pieces per side.
type Board struct {
	grid [Size][Size]*Piece
	live map[Color]int
}

// NewBoard returns the start-of-game setup: three rows of men per side on the dark squares.
func NewBoard() *Board {
	b := NewEmptyBoard()
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if !Playable(row, col) {
				continue
			}
			switch {
			case row < 3:
				b.put(row, col, White, false)
			case row > 4:
				b.put(row, col, Red, false)
			}
		}
	}
	return b
}

func NewEmptyBoard() *Board {
	return &Board{live: map[Color]int{White: 0, Red: 0}}
}

// Place puts a piece on an empty dark square. It is meant for setting up and restoring positions.
func (b *Board) Place(row, col int, color Color, king bool) (*Piece, error) {
	if !color.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrBadColor, color)
	}
	if !Playable(row, col) {
		return nil, fmt.Errorf("%w: %d,%d", ErrNotPlayable, row, col)
	}
	if b.grid[row][col] != nil {
		return nil, fmt.Errorf("%w: %d,%d", ErrOccupied, row, col)
	}
	return b.put(row, col, color, king), nil
}

func (b *Board) put(row, col int, color Color, king bool) *Piece {
	p := &Piece{Row: row, Col: col, Color: color, King: king}
	b.grid[row][col] = p
	b.live[color]++
	return p
}

// At returns the occupant of (row, col), or nil for an empty square.
func (b *Board) At(row, col int) *Piece {
	mustInBounds(row, col)
	return b.grid[row][col]
}

// Relocate moves p to (row, col) and crowns it on its far row.
// It reports whether the piece was promoted by this move.
func (b *Board) Relocate(p *Piece, row, col int) bool {
	mustInBounds(row, col)
	b.grid[p.Row][p.Col] = nil
	b.grid[row][col] = p
	p.Row, p.Col = row, col
	if row == p.Color.crownRow() && !p.King {
		p.King = true
		return true
	}
	return false
}

// Remove takes captured pieces off the board. A piece that is no longer on its square is ignored.
func (b *Board) Remove(pieces ...*Piece) {
	for _, p := range pieces {
		if p == nil || !InBounds(p.Row, p.Col) || b.grid[p.Row][p.Col] != p {
			continue
		}
		b.grid[p.Row][p.Col] = nil
		if b.live[p.Color] > 0 {
			b.live[p.Color]--
		}
	}
}

// LiveCount returns the number of pieces color still has on the board.
func (b *Board) LiveCount(color Color) int { return b.live[color] }

// Pieces lists color's pieces in row-major order.
func (b *Board) Pieces(color Color) []*Piece {
	var out []*Piece
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if p := b.grid[row][col]; p != nil && p.Color == color {
				out = append(out, p)
			}
		}
	}
	return out
}

// Winner returns the side whose opponent has no pieces left, or NoColor.
// A side that still has pieces but no legal move is not treated as lost.
func (b *Board) Winner() Color {
	switch {
	case b.live[Red] <= 0:
		return White
	case b.live[White] <= 0:
		return Red
	default:
		return NoColor
	}
}
