package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/obslog"
	"go.uber.org/zap"
)

// Config controls board geometry. Zero values fall back to the defaults.
type Config struct {
	SquareSize int
}

const defaultSquareSize = 100

// Renderer turns a game position into a PNG frame.
type Renderer interface {
	RenderPNG(ctx context.Context, g *checkers.Game, banner string) ([]byte, error)
}

type boardRenderer struct {
	square int
	// piece geometry, scaled from a 100px square
	padding int
	outline int
	dot     int
}

func New(cfg Config) Renderer {
	sq := cfg.SquareSize
	if sq <= 0 {
		sq = defaultSquareSize
	}
	return &boardRenderer{
		square:  sq,
		padding: scale(sq, 15),
		outline: maxInt(1, scale(sq, 2)),
		dot:     maxInt(2, scale(sq, 15)),
	}
}

var (
	lightSquare  = color.RGBA{255, 0, 0, 255}
	darkSquare   = color.RGBA{0, 0, 0, 255}
	redPiece     = color.RGBA{255, 0, 0, 255}
	whitePiece   = color.RGBA{255, 255, 255, 255}
	outlineColor = color.RGBA{128, 128, 128, 255}
	offeredColor = color.RGBA{0, 0, 255, 255}
	selectedFill = color.NRGBA{R: 255, G: 228, B: 120, A: 110}
	bannerPanel  = color.NRGBA{R: 28, G: 31, B: 46, A: 210}
	bannerText   = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
)

// RenderPNG draws squares, pieces, the selection, offered destinations and,
// when banner is non-empty, a centred banner. The game is only read.
func (r *boardRenderer) RenderPNG(ctx context.Context, g *checkers.Game, banner string) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("game is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	side := r.square * checkers.Size
	img := image.NewRGBA(image.Rect(0, 0, side, side))

	r.drawSquares(img)
	if sel := g.Selected(); sel != nil {
		imagedraw.Draw(img, r.squareRect(sel.Row, sel.Col), image.NewUniform(selectedFill), image.Point{}, imagedraw.Over)
	}
	r.drawPieces(img, g.Board())
	for _, p := range g.OfferedMoves().Destinations() {
		drawDisc(img, r.center(p.Row, p.Col), r.dot, offeredColor)
	}
	if banner != "" {
		drawBanner(img, banner, r.square)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *boardRenderer) drawSquares(dst *image.RGBA) {
	for row := 0; row < checkers.Size; row++ {
		for col := 0; col < checkers.Size; col++ {
			clr := lightSquare
			if checkers.Playable(row, col) {
				clr = darkSquare
			}
			imagedraw.Draw(dst, r.squareRect(row, col), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func (r *boardRenderer) drawPieces(dst *image.RGBA, b *checkers.Board) {
	radius := r.square/2 - r.padding
	for _, side := range []checkers.Color{checkers.Red, checkers.White} {
		fill := redPiece
		if side == checkers.White {
			fill = whitePiece
		}
		for _, p := range b.Pieces(side) {
			c := r.center(p.Row, p.Col)
			drawDisc(dst, c, radius+r.outline, outlineColor)
			drawDisc(dst, c, radius, fill)
			if !p.King {
				continue
			}
			crown, err := crownImage(r.square)
			if err != nil {
				obslog.L().Warn("crown_render_failed", zap.Error(err))
				drawDisc(dst, c, radius/2, offeredColor)
				continue
			}
			cb := crown.Bounds()
			at := image.Pt(c.X-cb.Dx()/2, c.Y-cb.Dy()/2)
			imagedraw.Draw(dst, cb.Add(at), crown, image.Point{}, imagedraw.Over)
		}
	}
}

func (r *boardRenderer) squareRect(row, col int) image.Rectangle {
	x := col * r.square
	y := row * r.square
	return image.Rect(x, y, x+r.square, y+r.square)
}

func (r *boardRenderer) center(row, col int) image.Point {
	return image.Pt(col*r.square+r.square/2, row*r.square+r.square/2)
}

func scale(square, at100 int) int { return square * at100 / defaultSquareSize }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
