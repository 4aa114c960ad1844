package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/crown.svg
var assetFiles embed.FS

var (
	crownCache   = map[int]image.Image{}
	crownCacheMu sync.RWMutex
)

// crownImage rasterises the crown for a given square size. Results are cached per size.
func crownImage(square int) (image.Image, error) {
	crownCacheMu.RLock()
	if img, ok := crownCache[square]; ok {
		crownCacheMu.RUnlock()
		return img, nil
	}
	crownCacheMu.RUnlock()

	data, err := assetFiles.ReadFile("assets/crown.svg")
	if err != nil {
		return nil, fmt.Errorf("read crown asset: %w", err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse crown svg: %w", err)
	}

	w := maxInt(1, scale(square, 44))
	h := maxInt(1, scale(square, 25))
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	crownCacheMu.Lock()
	crownCache[square] = img
	crownCacheMu.Unlock()
	return img, nil
}
