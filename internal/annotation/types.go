// Rectangle annotation types shared by the drawing engine and its collaborators
package annotation

import (
	"fmt"
	"strings"

	"smoke-annotator/internal/coords"
	"smoke-annotator/internal/geometry"
)

// DefaultUndoLimit bounds the number of snapshots kept per detection session.
const DefaultUndoLimit = 50

// DefaultMinDrawPixels is the smallest on-screen box side accepted when a
// draw gesture finishes.
const DefaultMinDrawPixels = 10

// Classification is the smoke type attached to a drawn box.
type Classification int

const (
	Wildfire Classification = iota
	Industrial
	Other
)

// Classifications lists every classification in shortcut order.
var Classifications = []Classification{Wildfire, Industrial, Other}

func (c Classification) String() string {
	switch c {
	case Wildfire:
		return "wildfire"
	case Industrial:
		return "industrial"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// ParseClassification accepts the lowercase names produced by String.
func ParseClassification(s string) (Classification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wildfire":
		return Wildfire, nil
	case "industrial":
		return Industrial, nil
	case "other":
		return Other, nil
	}
	return Wildfire, fmt.Errorf("unknown classification %q", s)
}

func (c Classification) MarshalText() ([]byte, error) {
	if c < Wildfire || c > Other {
		return nil, fmt.Errorf("invalid classification %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Classification) UnmarshalText(text []byte) error {
	parsed, err := ParseClassification(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// DrawnRectangle is one box on the canvas. IDs are unique within a list.
type DrawnRectangle struct {
	ID             string
	Box            geometry.NormalizedBox
	Classification Classification
}

// BoundingBox implements geometry.Boxed.
func (r DrawnRectangle) BoundingBox() geometry.NormalizedBox { return r.Box }

// Item is the serialised form of a rectangle: what a detection session is
// seeded with and what is handed over on submit.
type Item struct {
	Box            geometry.NormalizedBox `json:"box"`
	Classification Classification         `json:"classification"`
}

// CurrentDrawing is the in-progress gesture between the first and second
// click, in image pixels. It is never persisted nor undo-tracked.
type CurrentDrawing struct {
	StartX, StartY     float64
	CurrentX, CurrentY float64
}

// Start returns the first corner.
func (d CurrentDrawing) Start() coords.ImagePoint {
	return coords.ImagePoint{X: d.StartX, Y: d.StartY}
}

// Current returns the live corner that follows the pointer.
func (d CurrentDrawing) Current() coords.ImagePoint {
	return coords.ImagePoint{X: d.CurrentX, Y: d.CurrentY}
}

// State is a snapshot of one detection session.
type State struct {
	Rectangles         []DrawnRectangle
	Current            *CurrentDrawing
	DrawMode           bool
	SelectedID         string
	NextClassification Classification

	undo [][]DrawnRectangle
}

// IsActivelyDrawing reports whether the first corner of a box is placed.
func (s State) IsActivelyDrawing() bool { return s.Current != nil }

// UndoDepth returns the number of snapshots available to Undo.
func (s State) UndoDepth() int { return len(s.undo) }

// CanUndo reports whether Undo would change anything.
func (s State) CanUndo() bool { return len(s.undo) > 0 }

// Selected returns the selected rectangle, if any.
func (s State) Selected() (DrawnRectangle, bool) {
	if s.SelectedID == "" {
		return DrawnRectangle{}, false
	}
	for _, r := range s.Rectangles {
		if r.ID == s.SelectedID {
			return r, true
		}
	}
	return DrawnRectangle{}, false
}

// Items serialises the rectangle list for submission.
func (s State) Items() []Item {
	items := make([]Item, 0, len(s.Rectangles))
	for _, r := range s.Rectangles {
		items = append(items, Item{Box: r.Box, Classification: r.Classification})
	}
	return items
}

// clone deep-copies the slices so callers can never reach engine-owned memory.
func (s State) clone() State {
	out := s
	out.Rectangles = cloneRectangles(s.Rectangles)
	if s.Current != nil {
		cur := *s.Current
		out.Current = &cur
	}
	out.undo = make([][]DrawnRectangle, len(s.undo))
	for i, snap := range s.undo {
		out.undo[i] = cloneRectangles(snap)
	}
	return out
}

func cloneRectangles(in []DrawnRectangle) []DrawnRectangle {
	if in == nil {
		return nil
	}
	out := make([]DrawnRectangle, len(in))
	copy(out, in)
	return out
}
