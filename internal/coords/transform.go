// Screen / image / normalized coordinate conversions under zoom and pan
package coords

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ImageBoundsFromContainer computes where an image of the given natural size
// is drawn inside a container using "contain" fit: uniformly scaled to fit and
// centered on both axes.
func ImageBoundsFromContainer(containerWidth, containerHeight, naturalWidth, naturalHeight float64) ImageBounds {
	if containerWidth <= 0 || containerHeight <= 0 || naturalWidth <= 0 || naturalHeight <= 0 {
		return ImageBounds{}
	}

	scale := math.Min(containerWidth/naturalWidth, containerHeight/naturalHeight)

	displayWidth := naturalWidth * scale
	displayHeight := naturalHeight * scale

	return ImageBounds{
		Width:  displayWidth,
		Height: displayHeight,
		X:      (containerWidth - displayWidth) / 2,
		Y:      (containerHeight - displayHeight) / 2,
	}
}

// origin returns the transform origin in container-relative pixels.
func origin(bounds ImageBounds, t Transform) r2.Vec {
	return r2.Vec{
		X: bounds.X + bounds.Width*t.TransformOrigin.X/100,
		Y: bounds.Y + bounds.Height*t.TransformOrigin.Y/100,
	}
}

// ScreenToImage maps a pointer position to untransformed, container-relative
// image pixels. The rendered image is scaled by ZoomLevel about the transform
// origin and then translated by PanOffset, so the inverse subtracts the
// container offset and the pan, then scales by 1/ZoomLevel about the origin.
//
// With zoom 1 and no pan this is a pure translation by the container offset;
// the image-bounds offset is removed by ImageToNormalized.
func ScreenToImage(p ScreenPoint, containerOffset Offset, bounds ImageBounds, t Transform) ImagePoint {
	zoom := t.ZoomLevel
	if zoom <= 0 {
		zoom = 1
	}

	local := r2.Sub(p.vec(), containerOffset.vec())
	if zoom == 1 && t.PanOffset == (Offset{}) {
		return ImagePoint{X: local.X, Y: local.Y}
	}

	o := origin(bounds, t)
	unpanned := r2.Sub(local, t.PanOffset.vec())
	q := r2.Add(o, r2.Scale(1/zoom, r2.Sub(unpanned, o)))
	return ImagePoint{X: q.X, Y: q.Y}
}

// ImageToScreen is the forward transform of ScreenToImage.
func ImageToScreen(p ImagePoint, containerOffset Offset, bounds ImageBounds, t Transform) ScreenPoint {
	zoom := t.ZoomLevel
	if zoom <= 0 {
		zoom = 1
	}

	o := origin(bounds, t)
	scaled := r2.Add(o, r2.Scale(zoom, r2.Sub(p.vec(), o)))
	s := r2.Add(r2.Add(scaled, t.PanOffset.vec()), containerOffset.vec())
	return ScreenPoint{X: s.X, Y: s.Y}
}

// ImageToNormalized converts image pixels to [0,1] fractions of the rendered
// image. No clamping is applied; points near the edges may fall slightly
// outside the unit range.
func ImageToNormalized(p ImagePoint, bounds ImageBounds) NormPoint {
	if !bounds.Valid() {
		return NormPoint{}
	}
	return NormPoint{
		X: (p.X - bounds.X) / bounds.Width,
		Y: (p.Y - bounds.Y) / bounds.Height,
	}
}

// NormalizedToImage is the inverse of ImageToNormalized.
func NormalizedToImage(p NormPoint, bounds ImageBounds) ImagePoint {
	return ImagePoint{
		X: bounds.X + p.X*bounds.Width,
		Y: bounds.Y + p.Y*bounds.Height,
	}
}

// ScreenToNormalized composes ScreenToImage and ImageToNormalized.
func ScreenToNormalized(p ScreenPoint, containerOffset Offset, bounds ImageBounds, t Transform) NormPoint {
	return ImageToNormalized(ScreenToImage(p, containerOffset, bounds, t), bounds)
}

// NormalizedToScreen composes NormalizedToImage and ImageToScreen.
func NormalizedToScreen(p NormPoint, containerOffset Offset, bounds ImageBounds, t Transform) ScreenPoint {
	return ImageToScreen(NormalizedToImage(p, bounds), containerOffset, bounds, t)
}

// ComputeZoomLevel applies one wheel tick. A negative deltaY zooms in, a
// positive one zooms out, zero leaves the level unchanged. The result is
// clamped to [Min, Max].
func ComputeZoomLevel(current, wheelDeltaY float64, opts ZoomOptions) float64 {
	next := current
	switch {
	case wheelDeltaY < 0:
		next = current + opts.Step
	case wheelDeltaY > 0:
		next = current - opts.Step
	}

	// Round away accumulated float error from repeated steps.
	next = math.Round(next*1000) / 1000

	if next < opts.Min {
		next = opts.Min
	}
	if next > opts.Max {
		next = opts.Max
	}
	return next
}

// ComputeTransformOrigin returns the cursor position as percentages of the
// element size so that zooming is centered on the cursor.
func ComputeTransformOrigin(mouseX, mouseY, elementWidth, elementHeight float64) Percent {
	if elementWidth <= 0 || elementHeight <= 0 {
		return Percent{X: 50, Y: 50}
	}
	return Percent{
		X: clamp(mouseX/elementWidth*100, 0, 100),
		Y: clamp(mouseY/elementHeight*100, 0, 100),
	}
}

// ConstrainPan clamps a pan offset so the zoomed image never reveals space
// outside its own bounds. The maximum pan on each axis is half of the extra
// size gained by zooming.
func ConstrainPan(offset Offset, zoomLevel, baseWidth, baseHeight float64) Offset {
	if zoomLevel <= 1 {
		return Offset{}
	}
	maxX := (baseWidth*zoomLevel - baseWidth) / 2
	maxY := (baseHeight*zoomLevel - baseHeight) / 2
	return Offset{
		X: clamp(offset.X, -maxX, maxX),
		Y: clamp(offset.Y, -maxY, maxY),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
