// Package config holds the tunable constants of the goosebump detection pipeline.
//
// A Config is a plain JSON record. DefaultConfig returns the reference values;
// Load reads a file on top of those defaults and validates the result.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config holds runtime configuration for frame analysis and detection.
type Config struct {
	// Calibration
	BaselineFrames int `json:"baseline_frames"`

	// Detection
	DetectionThreshold float64 `json:"detection_threshold"` // percent
	MaxHistory         int     `json:"max_history"`

	// Region of interest, cropped from the centre of each camera frame.
	ROIWidth  int `json:"roi_width"`
	ROIHeight int `json:"roi_height"`

	// Contrast enhancement
	TileSize  int     `json:"tile_size"`
	CLAHEClip float64 `json:"clahe_clip"`

	// Spatial frequency band, in cycles per millimetre, mapped to
	// spectrum bins through the physical pixel pitch.
	FreqMinMM   float64 `json:"freq_min_mm"`
	FreqMaxMM   float64 `json:"freq_max_mm"`
	PixelSizeMM float64 `json:"pixel_size_mm"`

	// Frames whose luminance standard deviation falls below NoiseFloor
	// are reported with zero texture power.
	NoiseFloor float64 `json:"noise_floor"`
}

// DefaultConfig returns a Config populated with the reference values.
func DefaultConfig() *Config {
	return &Config{
		BaselineFrames:     10,
		DetectionThreshold: 30.0,
		MaxHistory:         60,
		ROIWidth:           160,
		ROIHeight:          120,
		TileSize:           8,
		CLAHEClip:          2.0,
		FreqMinMM:          0.23,
		FreqMaxMM:          0.75,
		PixelSizeMM:        0.25,
		NoiseFloor:         1.0,
	}
}

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Validate reports the first value that would break the pipeline contract.
func (c *Config) Validate() error {
	switch {
	case c.BaselineFrames <= 0:
		return fmt.Errorf("%w: baseline_frames must be positive, got %d", ErrInvalid, c.BaselineFrames)
	case c.MaxHistory <= 0:
		return fmt.Errorf("%w: max_history must be positive, got %d", ErrInvalid, c.MaxHistory)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile_size must be positive, got %d", ErrInvalid, c.TileSize)
	case c.ROIWidth <= 0 || c.ROIHeight <= 0:
		return fmt.Errorf("%w: roi must be positive, got %dx%d", ErrInvalid, c.ROIWidth, c.ROIHeight)
	case c.ROIWidth%c.TileSize != 0 || c.ROIHeight%c.TileSize != 0:
		return fmt.Errorf("%w: roi %dx%d not divisible by tile_size %d", ErrInvalid, c.ROIWidth, c.ROIHeight, c.TileSize)
	case c.CLAHEClip <= 0:
		return fmt.Errorf("%w: clahe_clip must be positive, got %g", ErrInvalid, c.CLAHEClip)
	case c.PixelSizeMM <= 0:
		return fmt.Errorf("%w: pixel_size_mm must be positive, got %g", ErrInvalid, c.PixelSizeMM)
	case c.FreqMinMM < 0 || c.FreqMinMM >= c.FreqMaxMM:
		return fmt.Errorf("%w: frequency band [%g, %g) is empty", ErrInvalid, c.FreqMinMM, c.FreqMaxMM)
	case c.NoiseFloor < 0:
		return fmt.Errorf("%w: noise_floor must not be negative, got %g", ErrInvalid, c.NoiseFloor)
	}
	return nil
}

// Clone returns an independent copy, used for per-session overrides.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Load reads configuration from the given JSON file. Fields missing from the
// file keep their default values. A missing file yields DefaultConfig().
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
