package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard_Setup(t *testing.T) {
	b := NewBoard()

	assert.Equal(t, 12, b.LiveCount(White))
	assert.Equal(t, 12, b.LiveCount(Red))
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			p := b.At(row, col)
			if p == nil {
				continue
			}
			assert.True(t, Playable(row, col), "piece on light square %d,%d", row, col)
			assert.Equal(t, Pos{row, col}, p.Pos())
			assert.False(t, p.King)
			switch {
			case row < 3:
				assert.Equal(t, White, p.Color)
			case row > 4:
				assert.Equal(t, Red, p.Color)
			default:
				t.Fatalf("unexpected piece on middle row: %v", p)
			}
		}
	}
	assert.Len(t, b.Pieces(White), 12)
	assert.Len(t, b.Pieces(Red), 12)
}

func TestPlace_Rejects(t *testing.T) {
	b := NewEmptyBoard()
	_, err := b.Place(0, 0, White, false)
	assert.ErrorIs(t, err, ErrNotPlayable)

	place(t, b, 0, 1, White, false)
	_, err = b.Place(0, 1, Red, false)
	assert.ErrorIs(t, err, ErrOccupied)

	_, err = b.Place(0, 3, NoColor, false)
	assert.ErrorIs(t, err, ErrBadColor)

	assert.Equal(t, 1, b.LiveCount(White))
	assert.Equal(t, 0, b.LiveCount(Red))
}

func TestRelocate_Promotion(t *testing.T) {
	b := NewEmptyBoard()
	white := place(t, b, 6, 1, White, false)
	red := place(t, b, 1, 2, Red, false)

	assert.True(t, b.Relocate(white, 7, 0))
	assert.True(t, white.King)
	assert.Nil(t, b.At(6, 1))
	assert.Same(t, white, b.At(7, 0))
	assert.Equal(t, Pos{7, 0}, white.Pos())

	// already crowned: moving along the far row again changes nothing
	assert.False(t, b.Relocate(white, 6, 1))
	assert.False(t, b.Relocate(white, 7, 2))
	assert.True(t, white.King)

	assert.True(t, b.Relocate(red, 0, 1))
	assert.True(t, red.King)
}

func TestRelocate_OwnBackRowDoesNotCrown(t *testing.T) {
	b := NewEmptyBoard()
	white := place(t, b, 1, 2, White, false)
	red := place(t, b, 6, 1, Red, false)

	b.Relocate(white, 0, 1)
	b.Relocate(red, 7, 0)

	assert.False(t, white.King)
	assert.False(t, red.King)
}

func TestRemove(t *testing.T) {
	b := NewEmptyBoard()
	r1 := place(t, b, 3, 2, Red, false)
	r2 := place(t, b, 5, 4, Red, false)
	place(t, b, 2, 1, White, false)

	b.Remove(r1, r2)
	assert.Equal(t, 0, b.LiveCount(Red))
	assert.Nil(t, b.At(3, 2))
	assert.Nil(t, b.At(5, 4))

	// stale references are ignored
	b.Remove(r1)
	b.Remove(nil)
	assert.Equal(t, 0, b.LiveCount(Red))
	assert.Equal(t, 1, b.LiveCount(White))
}

func TestRemove_StaleReferenceDoesNotClearNewOccupant(t *testing.T) {
	b := NewEmptyBoard()
	gone := place(t, b, 3, 2, Red, false)
	b.Remove(gone)
	again := place(t, b, 3, 2, Red, false)

	b.Remove(gone)

	assert.Same(t, again, b.At(3, 2))
	assert.Equal(t, 1, b.LiveCount(Red))
}

func TestWinner(t *testing.T) {
	b := NewEmptyBoard()
	place(t, b, 2, 1, White, false)
	r := place(t, b, 5, 2, Red, false)
	assert.Equal(t, NoColor, b.Winner())

	b.Remove(r)
	assert.Equal(t, White, b.Winner())

	b = NewEmptyBoard()
	place(t, b, 5, 2, Red, false)
	assert.Equal(t, Red, b.Winner())
}

func TestAt_OffBoardPanics(t *testing.T) {
	b := NewBoard()
	assert.Panics(t, func() { b.At(8, 0) })
	assert.Panics(t, func() { b.At(0, -1) })
	require.NotPanics(t, func() { b.At(7, 7) })
}
