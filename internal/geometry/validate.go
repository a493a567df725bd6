package geometry

import (
	"math"

	"smoke-annotator/internal/coords"
)

// Boxed is anything that occupies a normalized box on the canvas.
type Boxed interface {
	BoundingBox() NormalizedBox
}

// IsPointInBox reports whether an image-pixel point lies inside the box once
// the box is scaled to the given bounds. Borders are inclusive.
func IsPointInBox(p coords.ImagePoint, box NormalizedBox, bounds coords.ImageBounds) bool {
	topLeft, bottomRight := box.ToImage(bounds)
	return p.X >= topLeft.X && p.X <= bottomRight.X &&
		p.Y >= topLeft.Y && p.Y <= bottomRight.Y
}

// HitTest returns the topmost item containing the point. Items later in the
// slice are drawn above earlier ones, so the search runs back to front.
func HitTest[T Boxed](p coords.ImagePoint, items []T, bounds coords.ImageBounds) (T, bool) {
	var zero T
	if !bounds.Valid() {
		return zero, false
	}
	for i := len(items) - 1; i >= 0; i-- {
		if IsPointInBox(p, items[i].BoundingBox(), bounds) {
			return items[i], true
		}
	}
	return zero, false
}

// BoxesAreSimilar is a cheap near-duplicate test: every coordinate delta must
// be strictly below threshold. A non-positive threshold uses the default.
func BoxesAreSimilar(a, b NormalizedBox, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) >= threshold {
			return false
		}
	}
	return true
}

// BoxOverlapRatio is the intersection over union of two boxes. Disjoint and
// edge-adjacent boxes yield 0.
func BoxOverlapRatio(a, b NormalizedBox) float64 {
	x1 := math.Max(a[0], b[0])
	y1 := math.Max(a[1], b[1])
	x2 := math.Min(a[2], b[2])
	y2 := math.Min(a[3], b[3])

	if x2 <= x1 || y2 <= y1 {
		return 0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// MinSizeThreshold converts a minimum on-screen size in pixels into
// normalized units of the rendered image width. The rendered width includes
// the current zoom, so the minimum stays perceptually constant on screen.
func MinSizeThreshold(minScreenPixels float64, bounds coords.ImageBounds, zoom float64) float64 {
	if zoom < 1 {
		zoom = 1
	}
	rendered := bounds.Width * zoom
	if rendered <= 0 {
		return 0
	}
	return minScreenPixels / rendered
}

// HasMinimumSize rejects accidental single-click boxes: both sides must
// reach the threshold.
func HasMinimumSize(box NormalizedBox, threshold float64) bool {
	return box.Width() >= threshold && box.Height() >= threshold
}
