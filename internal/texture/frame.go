package texture

import (
	"errors"
	"fmt"
	"math"
)

// ErrFrameShape is returned when a pixel buffer does not match the
// dimensions it is declared with.
var ErrFrameShape = errors.New("frame shape mismatch")

// Frame is a row-major buffer of 8-bit luminance samples.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a zeroed width x height frame.
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the sample at (x, y).
func (f *Frame) At(x, y int) uint8 {
	return f.Pix[y*f.Width+x]
}

// Set stores v at (x, y).
func (f *Frame) Set(x, y int, v uint8) {
	f.Pix[y*f.Width+x] = v
}

// SameShape reports whether f and o have identical dimensions.
func (f *Frame) SameShape(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height
}

// Check verifies that the pixel buffer length matches the dimensions.
func (f *Frame) Check() error {
	if f.Width <= 0 || f.Height <= 0 || len(f.Pix) != f.Width*f.Height {
		return fmt.Errorf("%w: %dx%d frame with %d samples", ErrFrameShape, f.Width, f.Height, len(f.Pix))
	}
	return nil
}

// Luma returns the BT.601 luminance of an 8-bit RGB triple, truncated.
// Each product is rounded on its own so the result does not depend on
// whether the platform fuses multiply-add.
func Luma(r, g, b uint8) uint8 {
	return uint8(float64(0.299*float64(r)) + float64(0.587*float64(g)) + float64(0.114*float64(b)))
}

// LumaFromRGBA fills dst with the luminance of a packed RGBA buffer of
// exactly dst.Width*dst.Height*4 bytes. Alpha is ignored.
func LumaFromRGBA(dst *Frame, pix []byte) error {
	n := dst.Width * dst.Height
	if len(pix) != n*4 || len(dst.Pix) != n {
		return fmt.Errorf("%w: %d RGBA bytes for %dx%d frame", ErrFrameShape, len(pix), dst.Width, dst.Height)
	}
	for i := 0; i < n; i++ {
		p := pix[i*4 : i*4+3]
		dst.Pix[i] = Luma(p[0], p[1], p[2])
	}
	return nil
}

// MeanStd returns the mean and population standard deviation of samples.
func MeanStd(samples []uint8) (mean, std float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, v := range samples {
		fv := float64(v)
		sum += fv
		sumSq += fv * fv
	}
	n := float64(len(samples))
	mean = sum / n
	variance := sumSq/n - mean*mean
	if variance <= 0 {
		return mean, 0
	}
	return mean, math.Sqrt(variance)
}
