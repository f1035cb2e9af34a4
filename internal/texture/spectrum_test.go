package texture

import (
	"math"
	"math/cmplx"
	"testing"
)

func newReferenceAnalyzer() *Analyzer {
	return NewAnalyzer(160, 120, 0.23, 0.75, 0.25, 1.0)
}

func TestBandBins(t *testing.T) {
	tests := []struct {
		name           string
		width          int
		fMin, fMax, px float64
		wantLo, wantHi int
	}{
		{"reference", 160, 0.23, 0.75, 0.25, 9, 30},
		{"power of two width", 128, 0.23, 0.75, 0.25, 7, 24},
		{"upper clamped to half", 160, 0.23, 10, 0.25, 9, 80},
		{"whole band above nyquist", 160, 4, 8, 0.25, 80, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := BandBins(tt.width, tt.fMin, tt.fMax, tt.px)
			if lo != tt.wantLo || hi != tt.wantHi {
				t.Errorf("got [%d,%d), want [%d,%d)", lo, hi, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestAnalyze_ConstantFrameIsZero(t *testing.T) {
	a := newReferenceAnalyzer()
	for _, v := range []uint8{0, 17, 128, 255} {
		res := a.Analyze(constantFrame(160, 120, v))
		if res.TexturePower != 0 {
			t.Errorf("value %d: texture power %g, want 0", v, res.TexturePower)
		}
		if !res.Flat {
			t.Errorf("value %d: expected Flat", v)
		}
	}
}

func TestAnalyze_BelowNoiseFloor(t *testing.T) {
	a := newReferenceAnalyzer()
	f := constantFrame(160, 120, 100)
	// A single bright pixel keeps std well below 1.0.
	f.Set(3, 3, 110)
	res := a.Analyze(f)
	if res.Std >= 1.0 {
		t.Fatalf("test frame std %g not below noise floor", res.Std)
	}
	if res.TexturePower != 0 || !res.Flat {
		t.Errorf("got %+v, want flat zero power", res)
	}
}

func TestAnalyze_InBandBeatsOutOfBand(t *testing.T) {
	a := newReferenceAnalyzer()
	lo, hi := a.Band()

	inBand := a.Power(sineFrame(160, 120, 20, 100))
	tests := []struct {
		name   string
		cycles int
	}{
		{"below band", lo - 4},
		{"above band", hi + 10},
		{"near nyquist", 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := a.Power(sineFrame(160, 120, tt.cycles, 100))
			if !(inBand > out) {
				t.Errorf("in-band power %g not greater than %d-cycle power %g", inBand, tt.cycles, out)
			}
		})
	}

	// A unit-variance cosine puts (width/2)^2 * 2 into its bin.
	if math.Abs(inBand-12800)/12800 > 0.01 {
		t.Errorf("in-band power %g, want ~12800", inBand)
	}
}

// directSpectrum computes the row-averaged power spectrum with an O(n^2)
// DFT, as a reference for the analyzer.
func directSpectrum(f *Frame) []float64 {
	mean, std := MeanStd(f.Pix)
	w := f.Width
	ps := make([]float64, w)
	for y := 0; y < f.Height; y++ {
		for k := 0; k < w; k++ {
			var sum complex128
			for n := 0; n < w; n++ {
				v := (float64(f.At(n, y)) - mean) / std
				angle := -2 * math.Pi * float64(k*n) / float64(w)
				sum += complex(v, 0) * cmplx.Exp(complex(0, angle))
			}
			ps[k] += real(sum)*real(sum) + imag(sum)*imag(sum)
		}
	}
	for k := range ps {
		ps[k] /= float64(f.Height)
	}
	return ps
}

func TestAnalyze_ExactTransformForWidth160(t *testing.T) {
	f := noiseFrame(160, 6, 42)
	a := NewAnalyzer(160, 6, 0.23, 0.75, 0.25, 1.0)
	res := a.Analyze(f)
	if res.Flat {
		t.Fatal("noise frame reported flat")
	}

	got := a.Spectrum()
	want := directSpectrum(f)
	for k := range want {
		if math.Abs(got[k]-want[k]) > 1e-6*(1+want[k]) {
			t.Fatalf("bin %d: got %g, want %g", k, got[k], want[k])
		}
	}

	var peak float64
	for k := 9; k < 30; k++ {
		peak = math.Max(peak, want[k])
	}
	if math.Abs(res.TexturePower-peak) > 1e-6*(1+peak) {
		t.Errorf("texture power %g, want band peak %g", res.TexturePower, peak)
	}
}

func TestAnalyze_SpectrumSymmetric(t *testing.T) {
	a := NewAnalyzer(160, 4, 0.23, 0.75, 0.25, 1.0)
	a.Analyze(noiseFrame(160, 4, 9))
	ps := a.Spectrum()
	for k := 1; k < 80; k++ {
		if math.Abs(ps[k]-ps[160-k]) > 1e-6*(1+ps[k]) {
			t.Fatalf("bins %d and %d differ: %g vs %g", k, 160-k, ps[k], ps[160-k])
		}
	}
}

func TestAnalyze_ShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on shape mismatch")
		}
	}()
	newReferenceAnalyzer().Analyze(NewFrame(80, 60))
}

func TestAnalyzeROI_GatesOnRawContrast(t *testing.T) {
	a := newReferenceAnalyzer()
	e := NewEnhancer(8, 2.0)

	raw := constantFrame(160, 120, 100)
	raw.Set(3, 3, 110)
	enhanced := NewFrame(160, 120)
	e.Enhance(enhanced, raw)

	res := a.AnalyzeROI(raw, enhanced)
	if !res.Flat || res.TexturePower != 0 {
		t.Errorf("got %+v, want flat zero power", res)
	}
	wantMean, wantStd := MeanStd(raw.Pix)
	if res.Mean != wantMean || res.Std != wantStd {
		t.Errorf("stats: got %g/%g, want raw %g/%g", res.Mean, res.Std, wantMean, wantStd)
	}
	if res.BandMin != 9 || res.BandMax != 30 {
		t.Errorf("band: got [%d,%d)", res.BandMin, res.BandMax)
	}
}

func TestAnalyzeROI_TexturedUsesEnhanced(t *testing.T) {
	a := newReferenceAnalyzer()
	e := NewEnhancer(8, 2.0)

	raw := noiseFrame(160, 120, 3)
	enhanced := NewFrame(160, 120)
	e.Enhance(enhanced, raw)

	got := a.AnalyzeROI(raw, enhanced)
	want := a.Analyze(enhanced)
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAnalyzeROI_ShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on shape mismatch")
		}
	}()
	newReferenceAnalyzer().AnalyzeROI(NewFrame(160, 120), NewFrame(80, 60))
}
