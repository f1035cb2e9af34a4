package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/chiller-mcp/internal/texture"
)

// Exposure buckets the perceived lightness of an ROI.
const (
	ExposureDark   = "dark"
	ExposureOK     = "ok"
	ExposureBright = "bright"
)

// Lightness bounds, in CIE L* (0-100), outside which skin texture is hard to
// resolve: too dark for the sensor, or clipped highlights.
const (
	minLightness = 20.0
	maxLightness = 90.0
)

// LightingResult summarizes how well an ROI is lit for texture analysis.
type LightingResult struct {
	// MeanHex is the average ROI colour as "#rrggbb".
	MeanHex string `json:"mean_hex"`

	// Lightness is the CIE L* of the average colour (0 = black, 100 = white).
	Lightness float64 `json:"lightness"`

	// LumaMean and LumaStd are the statistics of the luminance ROI that the
	// analyzer sees before enhancement.
	LumaMean float64 `json:"luma_mean"`
	LumaStd  float64 `json:"luma_std"`

	// Flat is true when LumaStd is below the noise floor; such frames always
	// produce zero texture power.
	Flat bool `json:"flat"`

	// Exposure is "dark", "ok" or "bright".
	Exposure string `json:"exposure"`
}

// SummarizeLighting averages the colour of roi and reports its lightness
// together with the luminance statistics of the same pixels.
//
// Parameters:
//   - roi: The cropped region, already sized to the analysis ROI.
//   - luma: The luminance frame of the same region.
//   - noiseFloor: Standard deviation below which the frame counts as flat.
func SummarizeLighting(roi image.Image, luma *texture.Frame, noiseFloor float64) *LightingResult {
	b := roi.Bounds()
	var sumR, sumG, sumB float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, _ := colorful.MakeColor(roi.At(x, y))
			sumR += c.R
			sumG += c.G
			sumB += c.B
		}
	}
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		n = 1
	}
	mean := colorful.Color{R: sumR / n, G: sumG / n, B: sumB / n}.Clamped()
	l, _, _ := mean.Lab()
	lightness := math.Round(l*1000) / 10

	res := &LightingResult{
		MeanHex:   mean.Hex(),
		Lightness: lightness,
		Exposure:  ExposureOK,
	}
	switch {
	case lightness < minLightness:
		res.Exposure = ExposureDark
	case lightness > maxLightness:
		res.Exposure = ExposureBright
	}

	mu, sd := texture.MeanStd(luma.Pix)
	res.LumaMean = math.Round(mu*100) / 100
	res.LumaStd = math.Round(sd*100) / 100
	res.Flat = sd < noiseFloor
	return res
}
