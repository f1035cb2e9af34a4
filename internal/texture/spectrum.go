package texture

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// nyquist is the highest representable spatial frequency, in cycles per pixel.
const nyquist = 0.5

// BandBins maps a physical frequency band, in cycles per millimetre, to the
// half-open DFT bin range [lo, hi) for rows of the given width. Both bounds
// are clamped to [0, width/2].
func BandBins(width int, freqMinMM, freqMaxMM, pixelSizeMM float64) (lo, hi int) {
	fMin := freqMinMM * pixelSizeMM
	fMax := freqMaxMM * pixelSizeMM

	lo = int(math.Floor(fMin / nyquist * float64(width) / 2))
	hi = int(math.Ceil(fMax / nyquist * float64(width) / 2))

	half := width / 2
	lo = clampInt(lo, 0, half)
	hi = clampInt(hi, lo, half)
	return lo, hi
}

// Analysis is the full outcome of analyzing one frame.
type Analysis struct {
	TexturePower float64 `json:"texture_power"`
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Flat         bool    `json:"flat"` // std below the noise floor; spectrum skipped
	BandMin      int     `json:"band_min"`
	BandMax      int     `json:"band_max"`
}

// Analyzer reduces a frame to its texture power: the peak of the row-averaged
// power spectrum inside the configured band.
//
// Each row of the z-score normalized frame is transformed with an exact DFT of
// length width (radix-2 when width is a power of two, Bluestein otherwise), so
// widths such as 160 need no padding or truncation.
type Analyzer struct {
	width, height int
	binMin        int
	binMax        int
	noiseFloor    float64

	normalized []float64
	spectrum   []float64
}

// NewAnalyzer returns an Analyzer for width x height frames.
func NewAnalyzer(width, height int, freqMinMM, freqMaxMM, pixelSizeMM, noiseFloor float64) *Analyzer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("texture: invalid analyzer size %dx%d", width, height))
	}
	lo, hi := BandBins(width, freqMinMM, freqMaxMM, pixelSizeMM)
	return &Analyzer{
		width:      width,
		height:     height,
		binMin:     lo,
		binMax:     hi,
		noiseFloor: noiseFloor,
		normalized: make([]float64, width*height),
		spectrum:   make([]float64, width),
	}
}

// Band returns the half-open bin range searched for the peak.
func (a *Analyzer) Band() (lo, hi int) { return a.binMin, a.binMax }

// Spectrum returns a copy of the power spectrum computed by the last
// non-flat Analyze call.
func (a *Analyzer) Spectrum() []float64 {
	out := make([]float64, len(a.spectrum))
	copy(out, a.spectrum)
	return out
}

// Power returns the texture power of f.
func (a *Analyzer) Power(f *Frame) float64 {
	return a.Analyze(f).TexturePower
}

// AnalyzeROI gates on the contrast of the raw ROI before looking at the
// spectrum of its enhanced counterpart. A raw ROI whose standard deviation is
// below the noise floor yields zero power with the raw statistics, however
// much enhancement stretched it.
func (a *Analyzer) AnalyzeROI(raw, enhanced *Frame) Analysis {
	if !raw.SameShape(enhanced) {
		panic(fmt.Sprintf("texture: raw %dx%d and enhanced %dx%d frames differ", raw.Width, raw.Height, enhanced.Width, enhanced.Height))
	}
	mean, std := MeanStd(raw.Pix)
	if std < a.noiseFloor {
		return Analysis{Mean: mean, Std: std, Flat: true, BandMin: a.binMin, BandMax: a.binMax}
	}
	return a.Analyze(enhanced)
}

// Analyze computes the texture power of f along with the statistics that
// gate it. f must match the analyzer's dimensions.
func (a *Analyzer) Analyze(f *Frame) Analysis {
	if f.Width != a.width || f.Height != a.height || len(f.Pix) != a.width*a.height {
		panic(fmt.Sprintf("texture: analyze %dx%d frame with %dx%d analyzer", f.Width, f.Height, a.width, a.height))
	}

	res := Analysis{BandMin: a.binMin, BandMax: a.binMax}
	res.Mean, res.Std = MeanStd(f.Pix)
	if res.Std < a.noiseFloor || res.Std == 0 {
		res.Flat = true
		return res
	}

	for i, v := range f.Pix {
		a.normalized[i] = (float64(v) - res.Mean) / res.Std
	}
	for i := range a.spectrum {
		a.spectrum[i] = 0
	}

	w := a.width
	for y := 0; y < a.height; y++ {
		coeffs := fft.FFTReal(a.normalized[y*w : (y+1)*w])
		for x, c := range coeffs {
			re, im := real(c), imag(c)
			a.spectrum[x] += re*re + im*im
		}
	}
	h := float64(a.height)
	for i := range a.spectrum {
		a.spectrum[i] /= h
	}

	for i := a.binMin; i < a.binMax; i++ {
		if a.spectrum[i] > res.TexturePower {
			res.TexturePower = a.spectrum[i]
		}
	}
	return res
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
