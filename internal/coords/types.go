// Coordinate spaces used by the annotation canvas
package coords

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// ScreenPoint is a position in window pixels, as reported by pointer events.
type ScreenPoint struct {
	X, Y float64
}

// ImagePoint is a position in untransformed, container-relative image pixels.
// It is what a screen point maps to once zoom, pan and the container offset
// have been removed.
type ImagePoint struct {
	X, Y float64
}

// NormPoint is a position in [0,1] fractions of the rendered image.
type NormPoint struct {
	X, Y float64
}

// Percent is a transform origin expressed in percentages (0-100) of the image box.
type Percent struct {
	X, Y float64
}

// Offset is a translation in screen pixels (container offsets, pan).
type Offset struct {
	X, Y float64
}

func (p ScreenPoint) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }
func (p ImagePoint) vec() r2.Vec  { return r2.Vec{X: p.X, Y: p.Y} }
func (o Offset) vec() r2.Vec      { return r2.Vec{X: o.X, Y: o.Y} }

func (p ScreenPoint) String() string { return fmt.Sprintf("screen(%.2f,%.2f)", p.X, p.Y) }
func (p ImagePoint) String() string  { return fmt.Sprintf("image(%.2f,%.2f)", p.X, p.Y) }
func (p NormPoint) String() string   { return fmt.Sprintf("norm(%.4f,%.4f)", p.X, p.Y) }

// ImageBounds is the displayed size of the image and its top-left offset
// inside its container once "contain" letterboxing is applied.
type ImageBounds struct {
	Width  float64
	Height float64
	X      float64
	Y      float64
}

// Valid reports whether the bounds describe a measurable image.
func (b ImageBounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Transform is the view transform applied to the rendered image.
type Transform struct {
	ZoomLevel       float64
	PanOffset       Offset
	TransformOrigin Percent
}

// IdentityTransform returns the canonical untransformed state.
func IdentityTransform() Transform {
	return Transform{
		ZoomLevel:       1,
		PanOffset:       Offset{},
		TransformOrigin: Percent{X: 50, Y: 50},
	}
}

// Normalize enforces the zoom invariants: the zoom level is never below 1 and
// pan and origin reset whenever zoom is back at 1.
func (t Transform) Normalize() Transform {
	if t.ZoomLevel <= 1 {
		return IdentityTransform()
	}
	return t
}

// IsIdentity reports whether the transform leaves the image untouched.
func (t Transform) IsIdentity() bool {
	return t.ZoomLevel <= 1 && t.PanOffset == (Offset{})
}

// ZoomOptions bounds wheel zooming.
type ZoomOptions struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultZoomOptions returns the stock wheel zoom range.
func DefaultZoomOptions() ZoomOptions {
	return ZoomOptions{Min: 1, Max: 4, Step: 0.2}
}
