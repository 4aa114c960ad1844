package checkers

// Game owns the board and drives turns: whose move it is, which piece is
// selected and which destinations are on offer for it.
type Game struct {
	board    *Board
	turn     Color
	selected *Piece
	offered  Moves
}

// NewGame returns a game in the start-of-game position with Red to move.
func NewGame() *Game {
	g := &Game{}
	g.Reset()
	return g
}

// Reset puts the game back to the start-of-game position.
func (g *Game) Reset() {
	g.board = NewBoard()
	g.turn = Red
	g.clearSelection()
}

func (g *Game) Board() *Board { return g.board }
func (g *Game) Turn() Color   { return g.turn }

// Selected returns the selected piece, or nil.
func (g *Game) Selected() *Piece { return g.selected }

// OfferedMoves returns the moves computed for the current selection. Callers must not modify it.
func (g *Game) OfferedMoves() Moves { return g.offered }

func (g *Game) Winner() Color { return g.board.Winner() }

// Select handles a click on (row, col).
//
// With a piece selected the click is first tried as a move. If that fails the
// selection is dropped and the same click is evaluated as a fresh selection, so
// one click can switch to another piece of the side to move. Select reports
// whether the click either moved a piece or selected one.
func (g *Game) Select(row, col int) bool {
	mustInBounds(row, col)
	if g.selected != nil {
		if g.ApplyMove(row, col) {
			return true
		}
		g.clearSelection()
	}
	p := g.board.At(row, col)
	if p == nil || p.Color != g.turn {
		g.clearSelection()
		return false
	}
	g.selected = p
	g.offered = GenerateMoves(g.board, p)
	return true
}

// ApplyMove moves the selected piece to (row, col) if that square is on offer,
// removes whatever it jumped and passes the turn. State is unchanged on failure.
func (g *Game) ApplyMove(row, col int) bool {
	mustInBounds(row, col)
	if g.selected == nil {
		return false
	}
	captured, ok := g.offered[Pos{Row: row, Col: col}]
	if !ok {
		return false
	}
	g.board.Relocate(g.selected, row, col)
	if len(captured) > 0 {
		g.board.Remove(captured...)
	}
	g.turn = g.turn.Opponent()
	g.clearSelection()
	return true
}

func (g *Game) clearSelection() {
	g.selected = nil
	g.offered = Moves{}
}
