package annotation

import (
	"smoke-annotator/internal/coords"
	"smoke-annotator/internal/geometry"
)

// Action is a request to change the session state. Every mutation goes
// through Engine.Dispatch so it is reduced against the state current at
// dispatch time.
type Action interface {
	isAction()
}

type (
	// SetDrawMode arms or disarms drawing; disarming cancels a gesture.
	SetDrawMode struct{ Enabled bool }
	// ToggleDrawMode flips draw mode, cancelling a gesture first.
	ToggleDrawMode struct{}
	// StartDrawing places the first corner. No-op outside draw mode.
	StartDrawing struct{ Point coords.ImagePoint }
	// UpdateDrawing moves the live corner. No-op unless drawing.
	UpdateDrawing struct{ Point coords.ImagePoint }
	// FinishDrawing commits the gesture. Bounds must be measured, otherwise
	// the gesture is dropped.
	FinishDrawing struct {
		Bounds coords.ImageBounds
		Zoom   float64
	}
	// Click is a primary click on the image: select, start or finish a box
	// depending on the mode.
	Click struct {
		Point  coords.ImagePoint
		Bounds coords.ImageBounds
		Zoom   float64
	}
	// SelectRectangle selects by id; an empty id clears the selection.
	SelectRectangle struct{ ID string }
	// DeleteRectangle removes one rectangle.
	DeleteRectangle struct{ ID string }
	// DeleteAll clears the list.
	DeleteAll struct{}
	// DeleteSelectedOrAll deletes the selection, or everything when nothing
	// is selected.
	DeleteSelectedOrAll struct{}
	// ChangeClassification relabels one rectangle.
	ChangeClassification struct {
		ID string
		To Classification
	}
	// SetNextClassification sets the label given to the next drawn box.
	SetNextClassification struct{ To Classification }
	// Classify relabels the selection, or sets the next label when nothing
	// is selected.
	Classify struct{ To Classification }
	// Undo restores the previous rectangle list.
	Undo struct{}
	// Import appends already materialised rectangles.
	Import struct{ Rectangles []DrawnRectangle }
	// ImportPredictions materialises the predictions not already drawn.
	ImportPredictions struct {
		Predictions    []geometry.NormalizedBox
		Classification Classification
	}
	// Escape cancels a gesture, else clears the selection.
	Escape struct{}
	// Reset starts a new detection session seeded with persisted items.
	Reset struct{ Initial []Item }
)

func (SetDrawMode) isAction()           {}
func (ToggleDrawMode) isAction()        {}
func (StartDrawing) isAction()          {}
func (UpdateDrawing) isAction()         {}
func (FinishDrawing) isAction()         {}
func (Click) isAction()                 {}
func (SelectRectangle) isAction()       {}
func (DeleteRectangle) isAction()       {}
func (DeleteAll) isAction()             {}
func (DeleteSelectedOrAll) isAction()   {}
func (ChangeClassification) isAction()  {}
func (SetNextClassification) isAction() {}
func (Classify) isAction()              {}
func (Undo) isAction()                  {}
func (Import) isAction()                {}
func (ImportPredictions) isAction()     {}
func (Escape) isAction()                {}
func (Reset) isAction()                 {}

// EventKind names a structural change to the rectangle list.
type EventKind int

const (
	EventDrawn EventKind = iota + 1
	EventDeleted
	EventCleared
	EventReclassified
	EventImported
	EventUndone
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventDrawn:
		return "drawn"
	case EventDeleted:
		return "deleted"
	case EventCleared:
		return "cleared"
	case EventReclassified:
		return "reclassified"
	case EventImported:
		return "imported"
	case EventUndone:
		return "undone"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event describes a change after it has been applied. Count is the number
// of rectangles the change touched, Total the list length afterwards.
type Event struct {
	Kind           EventKind
	RectangleID    string
	Classification Classification
	Count          int
	Total          int
}

// Listener is called after each structural change, outside the engine lock.
type Listener func(Event)
