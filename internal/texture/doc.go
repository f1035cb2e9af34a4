// Package texture implements the per-frame goosebump detection pipeline.
//
// A grayscale region of interest (ROI) flows through four stages:
//
//  1. Enhancer: tiled, contrast-limited histogram equalization (CLAHE-style)
//  2. Analyzer: row-wise DFT power spectrum reduced to one "texture power"
//     value, the peak power inside a physical spatial-frequency band
//  3. Calibrator: the mean texture power of the first frames of a session
//     becomes the baseline
//  4. Detector: relative intensity against the baseline, thresholded into
//     MONITORING or DETECTING, with every intensity recorded in a History
//
// A Session ties the stages together and owns all mutable state, so any
// number of sessions can run side by side.
//
// # Frequency Band
//
// The band is configured in cycles per millimetre and converted to DFT bins
// through the pixel pitch:
//
//	bin = (freq_mm * pixel_mm) / 0.5 * width / 2
//
// The lower bound is floored, the upper bound ceiled, and both are clamped to
// the first half of the spectrum. With the reference configuration (width
// 160, band 0.23-0.75 cycles/mm, 0.25 mm pixels) this is bins [9, 30).
//
// # Degenerate Input
//
// Frames whose raw luminance standard deviation is below the noise floor
// yield a texture power of 0; the gate is applied to the raw frame,
// regardless of enhancement. A baseline of 0 yields an intensity of 0, and
// an intensity too large for float64 saturates at math.MaxFloat64. Neither
// is an error. Frames of the wrong shape are rejected by Session.Process
// with ErrFrameShape.
//
// # Thread Safety
//
// None of the types in this package are safe for concurrent use. Each Session
// must be driven from a single goroutine; separate sessions share nothing.
package texture
