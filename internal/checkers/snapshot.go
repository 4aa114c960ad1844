package checkers

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSnapshot = errors.New("invalid game snapshot")

// Snapshot is the storable form of a Game. Each row is eight characters:
// '.' empty, 'w'/'W' white man/king, 'r'/'R' red man/king.
type Snapshot struct {
	Rows     [Size]string `json:"rows"`
	Turn     Color        `json:"turn"`
	Selected *Pos         `json:"selected,omitempty"`
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{Turn: g.turn}
	for row := 0; row < Size; row++ {
		var b strings.Builder
		for col := 0; col < Size; col++ {
			b.WriteByte(pieceCode(g.board.grid[row][col]))
		}
		s.Rows[row] = b.String()
	}
	if g.selected != nil {
		pos := g.selected.Pos()
		s.Selected = &pos
	}
	return s
}

func pieceCode(p *Piece) byte {
	if p == nil {
		return '.'
	}
	c := byte('r')
	if p.Color == White {
		c = 'w'
	}
	if p.King {
		c -= 'a' - 'A'
	}
	return c
}

// Restore rebuilds a Game from s. The offered moves of a restored selection are recomputed.
func Restore(s Snapshot) (*Game, error) {
	if !s.Turn.Valid() {
		return nil, fmt.Errorf("%w: turn %q", ErrInvalidSnapshot, s.Turn)
	}
	b := NewEmptyBoard()
	for row, line := range s.Rows {
		if len(line) != Size {
			return nil, fmt.Errorf("%w: row %d has %d squares", ErrInvalidSnapshot, row, len(line))
		}
		for col := 0; col < Size; col++ {
			var (
				color Color
				king  bool
			)
			switch line[col] {
			case '.':
				continue
			case 'w':
				color = White
			case 'W':
				color, king = White, true
			case 'r':
				color = Red
			case 'R':
				color, king = Red, true
			default:
				return nil, fmt.Errorf("%w: square %d,%d has %q", ErrInvalidSnapshot, row, col, line[col])
			}
			if _, err := b.Place(row, col, color, king); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
			}
		}
	}

	g := &Game{board: b, turn: s.Turn}
	g.clearSelection()
	if sel := s.Selected; sel != nil {
		if !sel.InBounds() {
			return nil, fmt.Errorf("%w: selection %d,%d off the board", ErrInvalidSnapshot, sel.Row, sel.Col)
		}
		p := b.At(sel.Row, sel.Col)
		if p == nil || p.Color != s.Turn {
			return nil, fmt.Errorf("%w: selection %d,%d is not a %s piece", ErrInvalidSnapshot, sel.Row, sel.Col, s.Turn)
		}
		g.selected = p
		g.offered = GenerateMoves(b, p)
	}
	return g, nil
}
