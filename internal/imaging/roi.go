package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/chiller-mcp/internal/texture"
)

// ErrFrameTooSmall is returned when a camera frame cannot contain the ROI.
var ErrFrameTooSmall = errors.New("frame smaller than roi")

// ROIRect returns the roiWidth x roiHeight rectangle centred in bounds,
// with its origin at floor((W-roiWidth)/2), floor((H-roiHeight)/2).
func ROIRect(bounds image.Rectangle, roiWidth, roiHeight int) (image.Rectangle, error) {
	if bounds.Dx() < roiWidth || bounds.Dy() < roiHeight {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d frame, %dx%d roi",
			ErrFrameTooSmall, bounds.Dx(), bounds.Dy(), roiWidth, roiHeight)
	}
	x0 := bounds.Min.X + (bounds.Dx()-roiWidth)/2
	y0 := bounds.Min.Y + (bounds.Dy()-roiHeight)/2
	return image.Rect(x0, y0, x0+roiWidth, y0+roiHeight), nil
}

// CropROI returns the centred roiWidth x roiHeight region of img as an
// NRGBA image with its origin at (0,0).
func CropROI(img image.Image, roiWidth, roiHeight int) (*image.NRGBA, error) {
	rect, err := ROIRect(img.Bounds(), roiWidth, roiHeight)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, rect), nil
}

// ROI is the centred region of a camera frame in both colour and luminance.
type ROI struct {
	Color *image.NRGBA
	Luma  *texture.Frame
}

// NewROI crops the roiWidth x roiHeight centre of img and converts it.
func NewROI(img image.Image, roiWidth, roiHeight int) (*ROI, error) {
	c, err := CropROI(img, roiWidth, roiHeight)
	if err != nil {
		return nil, err
	}
	luma := texture.NewFrame(roiWidth, roiHeight)
	if err := LumaFromImage(luma, c); err != nil {
		return nil, err
	}
	return &ROI{Color: c, Luma: luma}, nil
}

// ExtractROI crops the centred ROI out of a camera frame and converts it to
// luminance into dst, which must be roiWidth x roiHeight.
func ExtractROI(dst *texture.Frame, img image.Image) error {
	roi, err := CropROI(img, dst.Width, dst.Height)
	if err != nil {
		return err
	}
	return LumaFromImage(dst, roi)
}

// LumaFromImage converts img, which must have exactly dst's dimensions, to
// truncated BT.601 luminance. Colours are read un-premultiplied, as a
// canvas readback would deliver them.
func LumaFromImage(dst *texture.Frame, img image.Image) error {
	b := img.Bounds()
	if b.Dx() != dst.Width || b.Dy() != dst.Height || len(dst.Pix) != dst.Width*dst.Height {
		return fmt.Errorf("%w: %dx%d image into %dx%d frame", texture.ErrFrameShape, b.Dx(), b.Dy(), dst.Width, dst.Height)
	}

	if n, ok := img.(*image.NRGBA); ok {
		// Crop output is tightly packed from offset 0.
		if n.Stride == dst.Width*4 && n.PixOffset(b.Min.X, b.Min.Y) == 0 {
			return texture.LumaFromRGBA(dst, n.Pix[:dst.Width*dst.Height*4])
		}
		for y := 0; y < dst.Height; y++ {
			off := n.PixOffset(b.Min.X, b.Min.Y+y)
			row := n.Pix[off : off+dst.Width*4]
			for x := 0; x < dst.Width; x++ {
				dst.Set(x, y, texture.Luma(row[x*4], row[x*4+1], row[x*4+2]))
			}
		}
		return nil
	}

	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.Set(x, y, texture.Luma(c.R, c.G, c.B))
		}
	}
	return nil
}
