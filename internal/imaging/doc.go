// Package imaging turns camera frames stored as image files into the
// luminance ROI frames consumed by package texture.
//
// It stands in for the video acquisition layer: frames are decoded from
// PNG, JPEG or GIF files, the fixed-size region of interest is cropped from
// the centre of each frame, and the crop is converted to 8-bit luminance
// with truncated ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B).
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the
// top-left corner. Regions are (x1,y1) inclusive, (x2,y2) exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The conversion functions
// are stateless; they write only into the destination frame passed to them.
//
// # Diagnostics
//
// SummarizeLighting reports the mean colour and perceived lightness of an
// ROI, and EncodeFramePNG / SaveFrame export luminance or enhanced frames
// for visual inspection.
package imaging
