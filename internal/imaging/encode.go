package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/chiller-mcp/internal/texture"
)

// FrameImageResult contains a luminance frame encoded as base64 PNG.
type FrameImageResult struct {
	// Width of the frame in pixels.
	Width int `json:"width"`

	// Height of the frame in pixels.
	Height int `json:"height"`

	// ImageBase64 is the grayscale frame encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// FrameToGray wraps a luminance frame as an *image.Gray without copying.
func FrameToGray(f *texture.Frame) *image.Gray {
	return &image.Gray{
		Pix:    f.Pix,
		Stride: f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// EncodeFramePNG encodes a luminance frame as a base64 PNG.
func EncodeFramePNG(f *texture.Frame) (*FrameImageResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, FrameToGray(f)); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return &FrameImageResult{
		Width:       f.Width,
		Height:      f.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// SaveFrame writes a luminance frame to path as PNG.
func SaveFrame(path string, f *texture.Frame) error {
	if err := imgio.Save(path, FrameToGray(f), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}
	return nil
}
