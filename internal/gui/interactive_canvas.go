// Interactive canvas widget for drawing smoke boxes
package gui

import (
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	annot "smoke-annotator/internal/canvas"
	"smoke-annotator/internal/coords"
	"smoke-annotator/internal/review"
)

// boundsRetryDelay is how long to wait before measuring again when the
// image is loaded but the widget has no size yet.
const boundsRetryDelay = 100 * time.Millisecond

// AnnotationCanvas shows the open detection and routes pointer input to the
// workspace.
type AnnotationCanvas struct {
	widget.BaseWidget

	workspace *review.Workspace
	logger    *logrus.Logger

	retryMu      sync.Mutex
	retryPending bool
}

var (
	_ fyne.Tappable     = (*AnnotationCanvas)(nil)
	_ desktop.Hoverable = (*AnnotationCanvas)(nil)
	_ fyne.Scrollable   = (*AnnotationCanvas)(nil)
	_ fyne.Draggable    = (*AnnotationCanvas)(nil)
)

func NewAnnotationCanvas(ws *review.Workspace, logger *logrus.Logger) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		workspace: ws,
		logger:    logger,
	}
	ac.ExtendBaseWidget(ac)
	return ac
}

// CreateRenderer creates the renderer for the annotation canvas
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &annotationCanvasRenderer{
		canvas:     ac,
		background: canvas.NewRectangle(color.NRGBA{R: 17, G: 24, B: 39, A: 255}),
		image:      canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
	}
	r.image.FillMode = canvas.ImageFillStretch
	r.image.ScaleMode = canvas.ImageScaleSmooth
	r.overlay = canvas.NewRaster(ac.createOverlay)
	return r
}

func screenPoint(p fyne.Position) coords.ScreenPoint {
	return coords.ScreenPoint{X: float64(p.X), Y: float64(p.Y)}
}

func (ac *AnnotationCanvas) Tapped(ev *fyne.PointEvent) {
	ac.workspace.Click(screenPoint(ev.Position))
}

func (ac *AnnotationCanvas) MouseIn(ev *desktop.MouseEvent) {
	ac.workspace.PointerMove(screenPoint(ev.Position))
}

func (ac *AnnotationCanvas) MouseMoved(ev *desktop.MouseEvent) {
	ac.workspace.PointerMove(screenPoint(ev.Position))
}

func (ac *AnnotationCanvas) MouseOut() {}

// Scrolled zooms. Fyne reports scrolling up as a positive DY.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	ac.workspace.Wheel(screenPoint(ev.Position), -float64(ev.Scrolled.DY))
}

func (ac *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	ac.workspace.Drag(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
}

func (ac *AnnotationCanvas) DragEnd() {}

// scheduleBoundsRetry refreshes once more after a short delay. Layout can
// lag behind the image load, leaving the canvas unmeasured.
func (ac *AnnotationCanvas) scheduleBoundsRetry() {
	ac.retryMu.Lock()
	defer ac.retryMu.Unlock()
	if ac.retryPending {
		return
	}
	ac.retryPending = true
	time.AfterFunc(boundsRetryDelay, func() {
		fyne.Do(func() {
			ac.retryMu.Lock()
			ac.retryPending = false
			ac.retryMu.Unlock()

			size := ac.Size()
			ac.workspace.Resize(float64(size.Width), float64(size.Height))
			ac.logger.WithField("size", size).Debug("Retrying canvas measurement")
			ac.Refresh()
		})
	})
}

// createOverlay paints the shapes into a raster of w x h device pixels.
func (ac *AnnotationCanvas) createOverlay(w, h int) image.Image {
	overlay := image.NewNRGBA(image.Rect(0, 0, w, h))
	size := ac.Size()
	if size.Width <= 0 || w <= 0 {
		return overlay
	}
	scale := float64(w) / float64(size.Width)

	for _, shape := range ac.workspace.Surface().Overlay() {
		ac.drawShape(overlay, shape, scale)
	}
	return overlay
}

func (ac *AnnotationCanvas) drawShape(overlay *image.NRGBA, shape annot.Shape, scale float64) {
	rect := image.Rect(
		int(shape.Min.X*scale), int(shape.Min.Y*scale),
		int(shape.Max.X*scale), int(shape.Max.Y*scale),
	)
	thickness := max(1, int(float64(shape.Thickness)*scale))

	if shape.Kind == annot.ShapePrediction {
		drawDashedRectangle(overlay, rect, shape.Color, thickness)
	} else {
		drawRectangle(overlay, rect, shape.Color, thickness)
	}
	if shape.Label != "" {
		drawLabel(overlay, rect.Min, shape.Label, shape.Color)
	}
}

// drawRectangle strokes the outline inwards so thick borders stay inside
// the box.
func drawRectangle(overlay *image.NRGBA, rect image.Rectangle, col color.NRGBA, thickness int) {
	for i := 0; i < thickness; i++ {
		r := rect.Inset(i)
		if r.Empty() {
			return
		}
		drawLine(overlay, r.Min, image.Pt(r.Max.X, r.Min.Y), col, 0)
		drawLine(overlay, image.Pt(r.Max.X, r.Min.Y), r.Max, col, 0)
		drawLine(overlay, r.Max, image.Pt(r.Min.X, r.Max.Y), col, 0)
		drawLine(overlay, image.Pt(r.Min.X, r.Max.Y), r.Min, col, 0)
	}
}

func drawDashedRectangle(overlay *image.NRGBA, rect image.Rectangle, col color.NRGBA, thickness int) {
	const dash = 6
	for i := 0; i < thickness; i++ {
		r := rect.Inset(i)
		if r.Empty() {
			return
		}
		drawLine(overlay, r.Min, image.Pt(r.Max.X, r.Min.Y), col, dash)
		drawLine(overlay, image.Pt(r.Max.X, r.Min.Y), r.Max, col, dash)
		drawLine(overlay, r.Max, image.Pt(r.Min.X, r.Max.Y), col, dash)
		drawLine(overlay, image.Pt(r.Min.X, r.Max.Y), r.Min, col, dash)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
// A positive dash skips every other run of dash pixels.
func drawLine(overlay *image.NRGBA, p1, p2 image.Point, col color.NRGBA, dash int) {
	bounds := overlay.Bounds()
	dx := abs(p2.X - p1.X)
	dy := abs(p2.Y - p1.Y)
	sx := -1
	if p1.X < p2.X {
		sx = 1
	}
	sy := -1
	if p1.Y < p2.Y {
		sy = 1
	}
	err := dx - dy

	x, y := p1.X, p1.Y
	for step := 0; ; step++ {
		if (dash <= 0 || (step/dash)%2 == 0) && image.Pt(x, y).In(bounds) {
			overlay.SetNRGBA(x, y, col)
		}
		if x == p2.X && y == p2.Y {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// drawLabel writes text on a filled tag above the box, or inside it when
// the box touches the top edge.
func drawLabel(overlay *image.NRGBA, at image.Point, text string, col color.NRGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 6
	height := face.Metrics().Height.Ceil() + 2

	top := at.Y - height
	if top < 0 {
		top = at.Y
	}
	tag := image.Rect(at.X, top, at.X+width, top+height).Intersect(overlay.Bounds())
	for y := tag.Min.Y; y < tag.Max.Y; y++ {
		for x := tag.Min.X; x < tag.Max.X; x++ {
			overlay.SetNRGBA(x, y, col)
		}
	}

	d := &font.Drawer{
		Dst:  overlay,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(at.X+3, top+face.Metrics().Ascent.Ceil()+1),
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// annotationCanvasRenderer is the renderer for the annotation canvas
type annotationCanvasRenderer struct {
	canvas     *AnnotationCanvas
	background *canvas.Rectangle
	image      *canvas.Image
	overlay    *canvas.Raster
	shown      image.Image
}

func (r *annotationCanvasRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.overlay.Resize(size)
	r.canvas.workspace.Resize(float64(size.Width), float64(size.Height))
	r.placeImage()
}

// placeImage positions the image at its zoomed and panned screen rectangle.
func (r *annotationCanvasRenderer) placeImage() {
	ws := r.canvas.workspace
	img := ws.Image()
	v := ws.Surface().Viewport()
	_, ok := v.Bounds()
	if img == nil {
		r.image.Hide()
		return
	}
	if !ok {
		r.image.Hide()
		r.canvas.scheduleBoundsRetry()
		return
	}

	if img != r.shown {
		r.image.Image = img
		r.shown = img
	}
	topLeft := v.ToScreen(coords.NormPoint{})
	bottomRight := v.ToScreen(coords.NormPoint{X: 1, Y: 1})
	r.image.Move(fyne.NewPos(float32(topLeft.X), float32(topLeft.Y)))
	r.image.Resize(fyne.NewSize(float32(bottomRight.X-topLeft.X), float32(bottomRight.Y-topLeft.Y)))
	r.image.Show()
}

func (r *annotationCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *annotationCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.image, r.overlay}
}

func (r *annotationCanvasRenderer) Refresh() {
	r.placeImage()
	r.image.Refresh()
	r.overlay.Refresh()
}

func (r *annotationCanvasRenderer) Destroy() {
}
