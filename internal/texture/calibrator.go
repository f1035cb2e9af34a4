package texture

import "math"

// Calibrator accumulates the first texture power readings of a session and
// fixes their mean as the baseline once the window is full.
//
// The transition to calibrated happens exactly once per session; afterwards
// Push is a no-op until Reset.
type Calibrator struct {
	window     int
	samples    []float64
	calibrated bool
	baseline   float64
}

// NewCalibrator returns a Calibrator that needs window samples.
func NewCalibrator(window int) *Calibrator {
	if window <= 0 {
		window = 1
	}
	return &Calibrator{window: window, samples: make([]float64, 0, window)}
}

// Push records one reading while calibrating. It returns true only for the
// reading that completes the window.
func (c *Calibrator) Push(power float64) bool {
	if c.calibrated {
		return false
	}
	c.samples = append(c.samples, power)
	if len(c.samples) < c.window {
		return false
	}

	var sum float64
	for _, v := range c.samples {
		sum += v
	}
	c.baseline = sum / float64(len(c.samples))
	if math.IsInf(sum, 0) {
		// Running mean for readings whose sum leaves float64 range.
		c.baseline = 0
		for i, v := range c.samples {
			c.baseline += (v - c.baseline) / float64(i+1)
		}
	}
	c.calibrated = true
	return true
}

// Calibrated reports whether the baseline has been fixed.
func (c *Calibrator) Calibrated() bool { return c.calibrated }

// Baseline returns the fixed baseline, or 0 while calibrating.
func (c *Calibrator) Baseline() float64 { return c.baseline }

// Samples returns the number of readings collected so far.
func (c *Calibrator) Samples() int { return len(c.samples) }

// Window returns the number of readings required for calibration.
func (c *Calibrator) Window() int { return c.window }

// Reset discards all readings and returns to calibrating.
func (c *Calibrator) Reset() {
	c.samples = c.samples[:0]
	c.calibrated = false
	c.baseline = 0
}
