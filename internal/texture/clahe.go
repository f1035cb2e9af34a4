package texture

import (
	"fmt"
	"math"
)

// Enhancer equalizes local contrast tile by tile.
//
// Each tileSize x tileSize tile gets its own 256-bin histogram. Bins above
// (tileArea * clip) / 256 are clipped and the total excess is spread evenly
// over all 256 bins in a single pass; the cumulative distribution, scaled to
// [0, 255], then remaps every pixel of the tile. Tiles are not blended with
// their neighbours. Pixels outside the last full tile row or column are
// copied through unchanged.
//
// The histogram and CDF scratch is reused between calls.
type Enhancer struct {
	tileSize int
	clip     float64

	hist [256]float64
	cdf  [256]float64
}

// NewEnhancer returns an Enhancer for the given tile size and clip multiplier.
func NewEnhancer(tileSize int, clip float64) *Enhancer {
	if tileSize <= 0 {
		panic(fmt.Sprintf("texture: invalid tile size %d", tileSize))
	}
	return &Enhancer{tileSize: tileSize, clip: clip}
}

// TileSize returns the tile edge length in pixels.
func (e *Enhancer) TileSize() int { return e.tileSize }

// Enhance writes the equalized version of src into dst. dst and src must
// have the same shape and must not alias.
func (e *Enhancer) Enhance(dst, src *Frame) {
	if !dst.SameShape(src) || len(dst.Pix) != len(src.Pix) {
		panic(fmt.Sprintf("texture: enhance %dx%d into %dx%d", src.Width, src.Height, dst.Width, dst.Height))
	}

	ts := e.tileSize
	tilesX := src.Width / ts
	tilesY := src.Height / ts
	if tilesX*ts != src.Width || tilesY*ts != src.Height {
		copy(dst.Pix, src.Pix)
	}

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			e.equalizeTile(dst, src, tx*ts, ty*ts)
		}
	}
}

func (e *Enhancer) equalizeTile(dst, src *Frame, x0, y0 int) {
	ts := e.tileSize
	w := src.Width

	for i := range e.hist {
		e.hist[i] = 0
	}
	for y := y0; y < y0+ts; y++ {
		row := src.Pix[y*w+x0 : y*w+x0+ts]
		for _, v := range row {
			e.hist[v]++
		}
	}

	limit := float64(ts*ts) * e.clip / 256
	var excess float64
	for i, c := range e.hist {
		if c > limit {
			excess += c - limit
			e.hist[i] = limit
		}
	}
	spread := excess / 256

	var sum float64
	for i := range e.hist {
		sum += e.hist[i] + spread
		e.cdf[i] = sum
	}
	total := e.cdf[255]
	for i := range e.cdf {
		e.cdf[i] = e.cdf[i] / total * 255
	}

	for y := y0; y < y0+ts; y++ {
		off := y*w + x0
		for x := 0; x < ts; x++ {
			dst.Pix[off+x] = uint8(math.Round(e.cdf[src.Pix[off+x]]))
		}
	}
}
