package checkers

// GenerateMoves returns every square piece can reach this ply together with the
// opponent pieces jumped to get there.
//
// Men probe their forward diagonals, kings probe both. A jump lands on the empty
// square directly behind an adjacent enemy. When another jump is available from
// that landing square the chain must continue, so only the final landing square of
// a chain is a destination. Chains keep the vertical direction of their first jump
// and may turn left or right at every landing. If two chains end on the same square
// the one explored last wins.
func GenerateMoves(b *Board, piece *Piece) Moves {
	g := generator{board: b, color: piece.Color, moves: make(Moves)}
	origin := piece.Pos()
	for _, dRow := range piece.directions() {
		g.probe(origin, dRow, -1, nil)
		g.probe(origin, dRow, 1, nil)
	}
	return g.moves
}

type generator struct {
	board *Board
	color Color
	moves Moves
}

// probe walks one diagonal from "from". chain holds the pieces already captured
// on this branch; it is never mutated so sibling branches cannot see each other's
// captures.
func (g *generator) probe(from Pos, dRow, dCol int, chain []*Piece) {
	next := from.step(dRow, dCol)
	if !next.InBounds() {
		return
	}
	occupant := g.board.grid[next.Row][next.Col]
	if occupant == nil {
		// simple steps only start a turn; they never follow a jump
		if len(chain) == 0 {
			g.moves[next] = []*Piece{}
		}
		return
	}
	landing, ok := g.jump(from, dRow, dCol)
	if !ok {
		return
	}
	captured := make([]*Piece, 0, len(chain)+1)
	captured = append(captured, chain...)
	captured = append(captured, occupant)

	if !g.canJump(landing, dRow) {
		g.moves[landing] = captured
		return
	}
	g.probe(landing, dRow, -1, captured)
	g.probe(landing, dRow, 1, captured)
}

// jump reports the landing square of a capture from "from" along (dRow, dCol):
// the adjacent square must hold an enemy and the one behind it must be empty.
func (g *generator) jump(from Pos, dRow, dCol int) (Pos, bool) {
	over := from.step(dRow, dCol)
	landing := over.step(dRow, dCol)
	if !over.InBounds() || !landing.InBounds() {
		return Pos{}, false
	}
	enemy := g.board.grid[over.Row][over.Col]
	if enemy == nil || enemy.Color == g.color {
		return Pos{}, false
	}
	if g.board.grid[landing.Row][landing.Col] != nil {
		return Pos{}, false
	}
	return landing, true
}

func (g *generator) canJump(from Pos, dRow int) bool {
	_, left := g.jump(from, dRow, -1)
	_, right := g.jump(from, dRow, 1)
	return left || right
}
