package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T, turn Color, rows ...string) *Game {
	t.Helper()
	require.Len(t, rows, Size)
	var s Snapshot
	copy(s.Rows[:], rows)
	s.Turn = turn
	g, err := Restore(s)
	require.NoError(t, err)
	return g
}

func TestNewGame(t *testing.T) {
	g := NewGame()
	assert.Equal(t, Red, g.Turn())
	assert.Nil(t, g.Selected())
	assert.Empty(t, g.OfferedMoves())
	assert.Equal(t, NoColor, g.Winner())
}

func TestSelect_WrongSideOrEmpty(t *testing.T) {
	g := NewGame()
	assert.False(t, g.Select(2, 1))
	assert.False(t, g.Select(4, 1))
	assert.Nil(t, g.Selected())
}

func TestSelect_ThenMove(t *testing.T) {
	g := NewGame()
	require.True(t, g.Select(5, 0))
	assert.Same(t, g.Board().At(5, 0), g.Selected())
	assert.ElementsMatch(t, []Pos{{4, 1}}, g.OfferedMoves().Destinations())

	require.True(t, g.Select(4, 1))
	assert.Equal(t, White, g.Turn())
	assert.Nil(t, g.Selected())
	assert.Empty(t, g.OfferedMoves())
	assert.Nil(t, g.Board().At(5, 0))
	assert.Equal(t, Red, g.Board().At(4, 1).Color)
}

func TestSelect_FailedMoveReselects(t *testing.T) {
	g := NewGame()
	require.True(t, g.Select(5, 0))

	assert.True(t, g.Select(5, 2))
	assert.Equal(t, Pos{5, 2}, g.Selected().Pos())
	assert.ElementsMatch(t, []Pos{{4, 1}, {4, 3}}, g.OfferedMoves().Destinations())
	assert.Equal(t, Red, g.Turn())
}

func TestSelect_FailedMoveOnEmptySquareClears(t *testing.T) {
	g := NewGame()
	require.True(t, g.Select(5, 0))

	assert.False(t, g.Select(3, 0))
	assert.Nil(t, g.Selected())
	assert.Empty(t, g.OfferedMoves())
	assert.Equal(t, Red, g.Turn())
}

func TestSelect_CaptureRemovesPiece(t *testing.T) {
	g := restore(t, White,
		"........",
		"........",
		".w......",
		"..r.....",
		"........",
		"........",
		"........",
		"......r.",
	)
	require.True(t, g.Select(2, 1))
	require.Len(t, g.OfferedMoves()[Pos{4, 3}], 1)

	require.True(t, g.Select(4, 3))
	assert.Nil(t, g.Board().At(3, 2))
	assert.Equal(t, 1, g.Board().LiveCount(Red))
	assert.Equal(t, Red, g.Turn())
	assert.Equal(t, NoColor, g.Winner())
}

func TestSelect_LastCaptureWins(t *testing.T) {
	g := restore(t, White,
		"........",
		"........",
		".w......",
		"..r.....",
		"........",
		"....r...",
		"........",
		"........",
	)
	require.True(t, g.Select(2, 1))
	require.True(t, g.Select(6, 5))

	assert.Equal(t, 0, g.Board().LiveCount(Red))
	assert.Equal(t, White, g.Winner())
}

func TestApplyMove_Promotes(t *testing.T) {
	g := restore(t, White,
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		".w......",
		"....r...",
	)
	require.True(t, g.Select(6, 1))
	require.True(t, g.ApplyMove(7, 0))

	king := g.Board().At(7, 0)
	require.NotNil(t, king)
	assert.True(t, king.King)
}

func TestApplyMove_Rejected(t *testing.T) {
	g := NewGame()
	assert.False(t, g.ApplyMove(4, 1))

	require.True(t, g.Select(5, 0))
	assert.False(t, g.ApplyMove(4, 3))
	assert.Equal(t, Red, g.Turn())
	assert.Equal(t, Pos{5, 0}, g.Selected().Pos())
	assert.Len(t, g.OfferedMoves(), 1)
}

func TestSelect_OffBoardPanics(t *testing.T) {
	g := NewGame()
	assert.Panics(t, func() { g.Select(-1, 0) })
	assert.Panics(t, func() { g.ApplyMove(0, 8) })
}

func TestReset(t *testing.T) {
	g := NewGame()
	require.True(t, g.Select(5, 0))
	require.True(t, g.Select(4, 1))

	g.Reset()
	assert.Equal(t, Red, g.Turn())
	assert.Nil(t, g.Board().At(4, 1))
	assert.NotNil(t, g.Board().At(5, 0))
	assert.Equal(t, 12, g.Board().LiveCount(White))
}

func TestSnapshot_RestoresSelection(t *testing.T) {
	g := NewGame()
	require.True(t, g.Select(5, 2))

	s := g.Snapshot()
	assert.Equal(t, "r.r.r.r.", s.Rows[7])
	assert.Equal(t, "r.r.r.r.", s.Rows[5])
	assert.Equal(t, ".r.r.r.r", s.Rows[6])
	require.NotNil(t, s.Selected)

	back, err := Restore(s)
	require.NoError(t, err)
	assert.Equal(t, Red, back.Turn())
	assert.Equal(t, Pos{5, 2}, back.Selected().Pos())
	assert.ElementsMatch(t, []Pos{{4, 1}, {4, 3}}, back.OfferedMoves().Destinations())
	assert.Equal(t, 12, back.Board().LiveCount(Red))
}

func TestSnapshot_KingCodes(t *testing.T) {
	g := restore(t, Red,
		".W......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R.......",
	)
	assert.True(t, g.Board().At(0, 1).King)
	assert.True(t, g.Board().At(7, 0).King)
	assert.Equal(t, ".W......", g.Snapshot().Rows[0])
	assert.Equal(t, "R.......", g.Snapshot().Rows[7])
}

func TestRestore_Invalid(t *testing.T) {
	valid := NewGame().Snapshot()

	cases := map[string]func(s *Snapshot){
		"bad turn":        func(s *Snapshot) { s.Turn = "blue" },
		"short row":       func(s *Snapshot) { s.Rows[3] = "...." },
		"unknown piece":   func(s *Snapshot) { s.Rows[3] = ".x......" },
		"light square":    func(s *Snapshot) { s.Rows[3] = ".w......" },
		"empty selection": func(s *Snapshot) { s.Selected = &Pos{Row: 3, Col: 0} },
		"enemy selection": func(s *Snapshot) { s.Selected = &Pos{Row: 2, Col: 1} },
		"off board":       func(s *Snapshot) { s.Selected = &Pos{Row: 9, Col: 0} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := valid
			mutate(&s)
			_, err := Restore(s)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}
