package canvas

import (
	"image/color"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/coords"
	"smoke-annotator/internal/geometry"
)

// ShapeKind says what an overlay shape represents.
type ShapeKind int

const (
	ShapePersisted ShapeKind = iota
	ShapePrediction
	ShapeRectangle
	ShapePreview
)

// Shape is an axis-aligned box in screen pixels ready to paint.
type Shape struct {
	Kind      ShapeKind
	ID        string
	Min, Max  coords.ScreenPoint
	Color     color.NRGBA
	Thickness int
	Selected  bool
	Label     string
}

var classificationColors = map[annotation.Classification]color.NRGBA{
	annotation.Wildfire:   {R: 255, G: 69, B: 0, A: 255},
	annotation.Industrial: {R: 147, G: 51, B: 234, A: 255},
	annotation.Other:      {R: 100, G: 116, B: 139, A: 255},
}

var (
	predictionColor = color.NRGBA{R: 250, G: 204, B: 21, A: 220}
	persistedColor  = color.NRGBA{R: 34, G: 197, B: 94, A: 200}
	selectedColor   = color.NRGBA{R: 59, G: 130, B: 246, A: 255}
)

// ClassificationColor returns the stroke colour for a classification.
func ClassificationColor(c annotation.Classification) color.NRGBA {
	if col, ok := classificationColors[c]; ok {
		return col
	}
	return classificationColors[annotation.Other]
}

// Overlay builds the shapes for the current engine state, back to front:
// persisted annotation, predictions, drawn rectangles, then the live preview.
// Nothing is returned while the image is unmeasured.
func (s *Surface) Overlay() []Shape {
	if _, ok := s.viewport.Bounds(); !ok {
		return nil
	}
	state := s.engine.State()
	shapes := make([]Shape, 0, len(s.persisted)+len(s.predictions)+len(state.Rectangles)+1)

	for _, item := range s.persisted {
		shapes = append(shapes, s.boxShape(ShapePersisted, item.Box, persistedColor, 1, ""))
	}
	if s.showPredictions {
		for _, p := range s.predictions {
			shapes = append(shapes, s.boxShape(ShapePrediction, p, predictionColor, 1, "prediction"))
		}
	}
	for _, r := range state.Rectangles {
		col, thickness := ClassificationColor(r.Classification), 2
		selected := r.ID == state.SelectedID
		if selected {
			col, thickness = selectedColor, 3
		}
		shape := s.boxShape(ShapeRectangle, r.Box, col, thickness, r.Classification.String())
		shape.ID = r.ID
		shape.Selected = selected
		shapes = append(shapes, shape)
	}
	if cur := state.Current; cur != nil {
		a := s.viewport.ImageToScreen(cur.Start())
		b := s.viewport.ImageToScreen(cur.Current())
		topLeft, bottomRight := orderCorners(a, b)
		shapes = append(shapes, Shape{
			Kind:      ShapePreview,
			Min:       topLeft,
			Max:       bottomRight,
			Color:     ClassificationColor(state.NextClassification),
			Thickness: 1,
			Label:     state.NextClassification.String(),
		})
	}
	return shapes
}

func (s *Surface) boxShape(kind ShapeKind, box geometry.NormalizedBox, col color.NRGBA, thickness int, label string) Shape {
	topLeft := s.viewport.ToScreen(coords.NormPoint{X: box.X1(), Y: box.Y1()})
	bottomRight := s.viewport.ToScreen(coords.NormPoint{X: box.X2(), Y: box.Y2()})
	return Shape{Kind: kind, Min: topLeft, Max: bottomRight, Color: col, Thickness: thickness, Label: label}
}

func orderCorners(a, b coords.ScreenPoint) (coords.ScreenPoint, coords.ScreenPoint) {
	if a.X > b.X {
		a.X, b.X = b.X, a.X
	}
	if a.Y > b.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	return a, b
}
