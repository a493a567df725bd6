// Normalized bounding boxes and the predicates the canvas runs over them
package geometry

import (
	"fmt"
	"math"

	"smoke-annotator/internal/coords"
)

// DefaultSimilarityThreshold is the per-coordinate delta under which two
// boxes are treated as the same detection.
const DefaultSimilarityThreshold = 0.05

// NormalizedBox is [x1, y1, x2, y2] in [0,1] fractions of the image with
// x2 > x1 and y2 > y1. It is the persisted representation of a box.
type NormalizedBox [4]float64

// NewBox builds a box from its corner coordinates.
func NewBox(x1, y1, x2, y2 float64) NormalizedBox {
	return NormalizedBox{x1, y1, x2, y2}
}

// BoxFromCorners orders two arbitrary corners into a box.
func BoxFromCorners(a, b coords.NormPoint) NormalizedBox {
	return NormalizedBox{
		math.Min(a.X, b.X),
		math.Min(a.Y, b.Y),
		math.Max(a.X, b.X),
		math.Max(a.Y, b.Y),
	}
}

func (b NormalizedBox) X1() float64 { return b[0] }
func (b NormalizedBox) Y1() float64 { return b[1] }
func (b NormalizedBox) X2() float64 { return b[2] }
func (b NormalizedBox) Y2() float64 { return b[3] }

// Width returns the normalized width.
func (b NormalizedBox) Width() float64 { return b[2] - b[0] }

// Height returns the normalized height.
func (b NormalizedBox) Height() float64 { return b[3] - b[1] }

// Area returns the normalized area.
func (b NormalizedBox) Area() float64 { return b.Width() * b.Height() }

// Valid reports whether the box is non-degenerate and inside the unit square.
func (b NormalizedBox) Valid() bool {
	for _, v := range b {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return b[2] > b[0] && b[3] > b[1]
}

// Clamp pulls coordinates that drifted slightly outside [0,1] back in.
func (b NormalizedBox) Clamp() NormalizedBox {
	for i, v := range b {
		b[i] = math.Max(0, math.Min(v, 1))
	}
	return b
}

// ToImage returns the box corners in image pixels for the given bounds.
func (b NormalizedBox) ToImage(bounds coords.ImageBounds) (topLeft, bottomRight coords.ImagePoint) {
	topLeft = coords.NormalizedToImage(coords.NormPoint{X: b[0], Y: b[1]}, bounds)
	bottomRight = coords.NormalizedToImage(coords.NormPoint{X: b[2], Y: b[3]}, bounds)
	return topLeft, bottomRight
}

func (b NormalizedBox) String() string {
	return fmt.Sprintf("[%.4f %.4f %.4f %.4f]", b[0], b[1], b[2], b[3])
}
