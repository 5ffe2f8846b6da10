// Package coords converts between the pixel space of rendered page images
// and the point space of PDF documents.
//
// A page rasterized at a given DPI maps back to document points by the fixed
// scale 72/DPI. The mapping is stateless and exactly reversible for the DPI
// it was produced with.
package coords

import "math"

// Box is a rectangle described by its top-left corner and extent.
// Units depend on context: pixels before mapping, points after.
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Scale returns the pixel-to-point factor for images rendered at dpi.
// Non-positive dpi is treated as 72 (identity).
func Scale(dpi int) float64 {
	if dpi <= 0 {
		return 1
	}
	return 72.0 / float64(dpi)
}

// MapBox converts a pixel-space box from an image rendered at dpi into
// document points.
func MapBox(b Box, dpi int) Box {
	s := Scale(dpi)
	return Box{
		Left:   b.Left * s,
		Top:    b.Top * s,
		Width:  b.Width * s,
		Height: b.Height * s,
	}
}

// UnmapBox is the inverse of MapBox for the same dpi.
func UnmapBox(b Box, dpi int) Box {
	s := Scale(dpi)
	return Box{
		Left:   b.Left / s,
		Top:    b.Top / s,
		Width:  b.Width / s,
		Height: b.Height / s,
	}
}

// EstimateFontSize maps the height of a recognized glyph row to an overlay
// font size that visually matches the line height, with a floor of 4 pt.
func EstimateFontSize(boxHeight float64) float64 {
	return math.Max(4, boxHeight*0.8)
}
