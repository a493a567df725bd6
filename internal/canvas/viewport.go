// Headless viewport and pointer handling for the annotation canvas
package canvas

import (
	"smoke-annotator/internal/coords"
)

// Viewport tracks the container the image is laid out in, the image's
// natural size and the current zoom/pan transform.
type Viewport struct {
	ContainerWidth  float64
	ContainerHeight float64
	ContainerOffset coords.Offset
	NaturalWidth    float64
	NaturalHeight   float64
	Transform       coords.Transform
	Zoom            coords.ZoomOptions
}

// NewViewport returns an unmeasured viewport with the identity transform.
func NewViewport(zoom coords.ZoomOptions) Viewport {
	return Viewport{Transform: coords.IdentityTransform(), Zoom: zoom}
}

// Bounds returns the letterboxed image rectangle. ok is false until both the
// container and the image have a size.
func (v Viewport) Bounds() (coords.ImageBounds, bool) {
	if v.ContainerWidth <= 0 || v.ContainerHeight <= 0 || v.NaturalWidth <= 0 || v.NaturalHeight <= 0 {
		return coords.ImageBounds{}, false
	}
	b := coords.ImageBoundsFromContainer(v.ContainerWidth, v.ContainerHeight, v.NaturalWidth, v.NaturalHeight)
	return b, b.Valid()
}

// ToImage maps a screen point into image pixels.
func (v Viewport) ToImage(p coords.ScreenPoint) coords.ImagePoint {
	b, _ := v.Bounds()
	return coords.ScreenToImage(p, v.ContainerOffset, b, v.Transform)
}

// ToScreen maps a normalized point onto the screen.
func (v Viewport) ToScreen(p coords.NormPoint) coords.ScreenPoint {
	b, _ := v.Bounds()
	return coords.NormalizedToScreen(p, v.ContainerOffset, b, v.Transform)
}

// ImageToScreen maps an image pixel onto the screen.
func (v Viewport) ImageToScreen(p coords.ImagePoint) coords.ScreenPoint {
	b, _ := v.Bounds()
	return coords.ImageToScreen(p, v.ContainerOffset, b, v.Transform)
}

// ZoomAt applies one wheel tick centred on the cursor. Zooming back out to
// the minimum restores the identity transform.
func (v *Viewport) ZoomAt(p coords.ScreenPoint, deltaY float64) bool {
	b, ok := v.Bounds()
	if !ok {
		return false
	}
	prev := v.Transform
	next := prev
	next.ZoomLevel = coords.ComputeZoomLevel(prev.ZoomLevel, deltaY, v.Zoom)
	if next.ZoomLevel == prev.ZoomLevel {
		return false
	}
	next.TransformOrigin = coords.ComputeTransformOrigin(
		p.X-v.ContainerOffset.X-b.X,
		p.Y-v.ContainerOffset.Y-b.Y,
		b.Width, b.Height,
	)
	next = next.Normalize()
	next.PanOffset = coords.ConstrainPan(next.PanOffset, next.ZoomLevel, b.Width, b.Height)
	v.Transform = next
	return true
}

// PanBy moves the zoomed image, keeping it inside its own bounds. It does
// nothing at zoom 1.
func (v *Viewport) PanBy(dx, dy float64) bool {
	b, ok := v.Bounds()
	if !ok || v.Transform.ZoomLevel <= 1 {
		return false
	}
	prev := v.Transform.PanOffset
	next := coords.ConstrainPan(coords.Offset{X: prev.X + dx, Y: prev.Y + dy}, v.Transform.ZoomLevel, b.Width, b.Height)
	v.Transform.PanOffset = next
	return next != prev
}

// ResetZoom restores the identity transform.
func (v *Viewport) ResetZoom() bool {
	if v.Transform.IsIdentity() {
		return false
	}
	v.Transform = coords.IdentityTransform()
	return true
}
