package render

import (
	"image"
	"image/color"
	imagedraw "image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawBanner renders text with the 7x13 bitmap face, scaled up to roughly
// 0.8 of a square in height and clamped to the board width.
func drawBanner(img *image.RGBA, text string, square int) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	m := face.Metrics()
	h := m.Height.Ceil()
	if w <= 0 || h <= 0 {
		return
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = glyphs
	d.Src = image.NewUniform(bannerText)
	d.Dot = fixed.P(0, m.Ascent.Ceil())
	d.DrawString(text)

	bounds := img.Bounds()
	zoom := maxInt(1, square*8/(10*h))
	if limit := bounds.Dx() * 9 / 10 / w; limit >= 1 && zoom > limit {
		zoom = limit
	}

	tw, th := w*zoom, h*zoom
	x := bounds.Min.X + (bounds.Dx()-tw)/2
	y := bounds.Min.Y + (bounds.Dy()-th)/2
	target := image.Rect(x, y, x+tw, y+th)

	pad := maxInt(4, square/8)
	drawRoundedPanel(img, target.Inset(-pad), pad, bannerPanel)
	xdraw.NearestNeighbor.Scale(img, target, glyphs, glyphs.Bounds(), xdraw.Over, nil)
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if img == nil || rect.Empty() {
		return
	}
	radius = minInt(maxInt(radius, 0), minInt(rect.Dx(), rect.Dy())/2)
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}

	// cross shape first, then the four corner discs
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)

	for _, c := range []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	} {
		drawQuarterDisc(img, c, radius, rect, clr)
	}
}

// drawQuarterDisc fills the part of a disc that lies outside the cross of a rounded panel.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, panel image.Rectangle, clr color.Color) {
	inner := image.Rect(panel.Min.X+radius, panel.Min.Y, panel.Max.X-radius, panel.Max.Y)
	side := image.Rect(panel.Min.X, panel.Min.Y+radius, panel.Max.X, panel.Max.Y-radius)
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > r2 {
				continue
			}
			p := image.Pt(center.X+x, center.Y+y)
			if !p.In(panel) || p.In(inner) || p.In(side) {
				continue
			}
			blendPixel(img, p.X, p.Y, clr)
		}
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > r2 {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

// blendPixel composites clr over the pixel at x,y. Off-image points are ignored.
func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if img == nil || !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 65535 - sa
	// premultiplied over: out = src + dst*(1-srcA)
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*inv/65535) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*inv/65535) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*inv/65535) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*inv/65535) >> 8),
	})
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
