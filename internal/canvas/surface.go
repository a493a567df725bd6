package canvas

import (
	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/coords"
	"smoke-annotator/internal/geometry"
)

// Surface turns pointer input into engine actions and viewport changes.
// It holds no fyne state so it can be driven directly from tests.
type Surface struct {
	engine   *annotation.Engine
	viewport Viewport
	logger   *logrus.Logger

	predictions     []geometry.NormalizedBox
	persisted       []annotation.Item
	showPredictions bool
}

// NewSurface binds a surface to the engine of the open detection.
func NewSurface(engine *annotation.Engine, zoom coords.ZoomOptions, showPredictions bool, logger *logrus.Logger) *Surface {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Surface{
		engine:          engine,
		viewport:        NewViewport(zoom),
		logger:          logger,
		showPredictions: showPredictions,
	}
}

// Viewport returns a copy of the current viewport.
func (s *Surface) Viewport() Viewport { return s.viewport }

// Bounds returns the measured image rectangle, ok=false until measured.
func (s *Surface) Bounds() (coords.ImageBounds, bool) { return s.viewport.Bounds() }

// Load prepares the surface for a new detection. The view transform is
// discarded along with the previous session.
func (s *Surface) Load(naturalWidth, naturalHeight float64, predictions []geometry.NormalizedBox, persisted []annotation.Item) {
	s.viewport.NaturalWidth = naturalWidth
	s.viewport.NaturalHeight = naturalHeight
	s.viewport.Transform = coords.IdentityTransform()
	s.predictions = append([]geometry.NormalizedBox(nil), predictions...)
	s.persisted = append([]annotation.Item(nil), persisted...)

	s.logger.WithFields(logrus.Fields{
		"width":       naturalWidth,
		"height":      naturalHeight,
		"predictions": len(predictions),
		"persisted":   len(persisted),
	}).Debug("Canvas loaded")
}

// Resize records the container size. Returns true when bounds changed.
func (s *Surface) Resize(width, height float64) bool {
	if s.viewport.ContainerWidth == width && s.viewport.ContainerHeight == height {
		return false
	}
	s.viewport.ContainerWidth = width
	s.viewport.ContainerHeight = height
	b, _ := s.viewport.Bounds()
	s.viewport.Transform.PanOffset = coords.ConstrainPan(s.viewport.Transform.PanOffset, s.viewport.Transform.ZoomLevel, b.Width, b.Height)
	return true
}

// SetNaturalSize records the image size once it has decoded.
func (s *Surface) SetNaturalSize(width, height float64) {
	s.viewport.NaturalWidth = width
	s.viewport.NaturalHeight = height
}

// SetContainerOffset records where the container sits on screen.
func (s *Surface) SetContainerOffset(o coords.Offset) { s.viewport.ContainerOffset = o }

// Click forwards a primary click to the engine.
func (s *Surface) Click(p coords.ScreenPoint) annotation.State {
	b, _ := s.viewport.Bounds()
	return s.engine.Dispatch(annotation.Click{
		Point:  s.viewport.ToImage(p),
		Bounds: b,
		Zoom:   s.viewport.Transform.ZoomLevel,
	})
}

// Move updates the live corner of an active gesture. Returns true when the
// overlay needs repainting.
func (s *Surface) Move(p coords.ScreenPoint) bool {
	if !s.engine.State().IsActivelyDrawing() {
		return false
	}
	pt := s.viewport.ToImage(p)
	s.engine.UpdateDrawing(pt.X, pt.Y)
	return true
}

// Wheel zooms about the cursor.
func (s *Surface) Wheel(p coords.ScreenPoint, deltaY float64) bool {
	changed := s.viewport.ZoomAt(p, deltaY)
	if changed {
		s.logger.WithField("zoom", s.viewport.Transform.ZoomLevel).Debug("Zoom changed")
	}
	return changed
}

// Drag pans the zoomed image. Drags during a gesture are ignored so the
// live corner keeps following the pointer.
func (s *Surface) Drag(dx, dy float64) bool {
	if s.engine.State().IsActivelyDrawing() {
		return false
	}
	return s.viewport.PanBy(dx, dy)
}

// ResetZoom restores the identity transform.
func (s *Surface) ResetZoom() bool { return s.viewport.ResetZoom() }

// TogglePredictions flips prediction visibility.
func (s *Surface) TogglePredictions() bool {
	s.showPredictions = !s.showPredictions
	return s.showPredictions
}

// PredictionsVisible reports whether predictions are painted.
func (s *Surface) PredictionsVisible() bool { return s.showPredictions }

// Predictions returns the predictions of the open detection.
func (s *Surface) Predictions() []geometry.NormalizedBox {
	return append([]geometry.NormalizedBox(nil), s.predictions...)
}

// SetPersisted replaces the saved-annotation outline, e.g. after a submit.
func (s *Surface) SetPersisted(items []annotation.Item) {
	s.persisted = append([]annotation.Item(nil), items...)
}
