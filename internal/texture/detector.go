package texture

import "math"

// State is the pipeline's classification of the current frame.
type State string

const (
	StateCalibrating State = "CALIBRATING"
	StateMonitoring  State = "MONITORING"
	StateDetecting   State = "DETECTING"
)

// Intensity returns the percent deviation of power from baseline. A
// non-positive baseline yields 0. The result is always finite: a baseline so
// small that the ratio overflows saturates at ±math.MaxFloat64.
func Intensity(power, baseline float64) float64 {
	if !(baseline > 0) {
		return 0
	}
	i := (power - baseline) / baseline * 100
	switch {
	case math.IsNaN(i):
		return 0
	case math.IsInf(i, 1):
		return math.MaxFloat64
	case math.IsInf(i, -1):
		return -math.MaxFloat64
	}
	return i
}

// Detector is a threshold-only classifier. Every frame at or above the
// threshold counts as one detection; there is no debounce.
type Detector struct {
	threshold float64
	count     int
}

// NewDetector returns a Detector with the given percent threshold.
func NewDetector(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Classify converts one calibrated reading into a state and its intensity.
func (d *Detector) Classify(power, baseline float64) (State, float64) {
	intensity := Intensity(power, baseline)
	if intensity >= d.threshold {
		d.count++
		return StateDetecting, intensity
	}
	return StateMonitoring, intensity
}

// Threshold returns the detection threshold in percent.
func (d *Detector) Threshold() float64 { return d.threshold }

// Count returns the number of detecting frames since the last Reset.
func (d *Detector) Count() int { return d.count }

// Reset zeroes the detection counter.
func (d *Detector) Reset() { d.count = 0 }
