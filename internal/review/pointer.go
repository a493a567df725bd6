package review

import "smoke-annotator/internal/coords"

// Pointer input is only routed to the canvas while a loaded detection is
// open. Points are relative to the canvas container.

func (w *Workspace) pointerActive() bool {
	return w.modalOpen && !w.loading && !w.helpOpen
}

// Click forwards a primary click to the canvas.
func (w *Workspace) Click(p coords.ScreenPoint) {
	if !w.pointerActive() {
		return
	}
	w.surface.Click(p)
	w.changed()
}

// PointerMove tracks the live corner of a gesture.
func (w *Workspace) PointerMove(p coords.ScreenPoint) {
	if !w.pointerActive() {
		return
	}
	if w.surface.Move(p) {
		w.changed()
	}
}

// Wheel zooms about the pointer. A negative delta zooms in.
func (w *Workspace) Wheel(p coords.ScreenPoint, deltaY float64) {
	if !w.pointerActive() {
		return
	}
	if w.surface.Wheel(p, deltaY) {
		w.changed()
	}
}

// Drag pans the zoomed image.
func (w *Workspace) Drag(dx, dy float64) {
	if !w.pointerActive() {
		return
	}
	if w.surface.Drag(dx, dy) {
		w.changed()
	}
}

// Resize records the canvas size. It does not notify listeners since it is
// driven by layout.
func (w *Workspace) Resize(width, height float64) bool {
	return w.surface.Resize(width, height)
}
