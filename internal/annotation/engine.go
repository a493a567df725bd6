// Drawing and annotation state engine for one detection session
package annotation

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/coords"
	"smoke-annotator/internal/geometry"
)

// Engine owns the rectangle list, the in-progress gesture, the selection and
// the undo history of the detection being edited.
type Engine struct {
	mu        sync.Mutex
	state     State
	logger    *logrus.Logger
	listeners []Listener

	newID               func() string
	undoLimit           int
	minDrawPixels       float64
	similarityThreshold float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithUndoLimit bounds the undo history.
func WithUndoLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.undoLimit = limit
		}
	}
}

// WithMinDrawPixels sets the smallest accepted on-screen box side.
func WithMinDrawPixels(px float64) Option {
	return func(e *Engine) {
		if px >= 0 {
			e.minDrawPixels = px
		}
	}
}

// WithSimilarityThreshold sets the near-duplicate threshold for imports.
func WithSimilarityThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.similarityThreshold = threshold
		}
	}
}

// NewEngine creates an engine with an empty session.
func NewEngine(logger *logrus.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	e := &Engine{
		logger:              logger,
		newID:               uuid.NewString,
		undoLimit:           DefaultUndoLimit,
		minDrawPixels:       DefaultMinDrawPixels,
		similarityThreshold: geometry.DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddListener registers a callback for structural changes.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Dispatch reduces the action against the current state and returns a copy
// of the resulting state.
func (e *Engine) Dispatch(a Action) State {
	e.mu.Lock()
	prev := e.state
	next, events := e.reduce(prev, a)
	e.state = next
	listeners := append([]Listener(nil), e.listeners...)
	out := next.clone()
	e.mu.Unlock()

	if prev.DrawMode != next.DrawMode || prev.IsActivelyDrawing() != next.IsActivelyDrawing() {
		e.logger.WithFields(logrus.Fields{
			"action":    fmt.Sprintf("%T", a),
			"draw_mode": next.DrawMode,
			"drawing":   next.IsActivelyDrawing(),
		}).Debug("Drawing state transition")
	}
	for _, ev := range events {
		ev.Total = len(next.Rectangles)
		e.logger.WithFields(logrus.Fields{
			"event":      ev.Kind.String(),
			"rectangles": len(next.Rectangles),
			"undo_depth": len(next.undo),
		}).Debug("Annotation changed")
		for _, l := range listeners {
			l(ev)
		}
	}
	return out
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// ImportableCount returns how many predictions an import would add right now.
func (e *Engine) ImportableCount(predictions []geometry.NormalizedBox) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CountImportable(predictions, e.state.Rectangles, e.similarityThreshold)
}

func (e *Engine) SetDrawMode(enabled bool) State { return e.Dispatch(SetDrawMode{Enabled: enabled}) }
func (e *Engine) ToggleDrawMode() State          { return e.Dispatch(ToggleDrawMode{}) }
func (e *Engine) StartDrawing(x, y float64) State {
	return e.Dispatch(StartDrawing{Point: coords.ImagePoint{X: x, Y: y}})
}
func (e *Engine) UpdateDrawing(x, y float64) State {
	return e.Dispatch(UpdateDrawing{Point: coords.ImagePoint{X: x, Y: y}})
}
func (e *Engine) FinishDrawing(bounds coords.ImageBounds, zoom float64) State {
	return e.Dispatch(FinishDrawing{Bounds: bounds, Zoom: zoom})
}
func (e *Engine) SelectRectangle(id string) State { return e.Dispatch(SelectRectangle{ID: id}) }
func (e *Engine) DeleteRectangle(id string) State { return e.Dispatch(DeleteRectangle{ID: id}) }
func (e *Engine) DeleteAll() State                { return e.Dispatch(DeleteAll{}) }
func (e *Engine) DeleteSelectedOrAll() State      { return e.Dispatch(DeleteSelectedOrAll{}) }
func (e *Engine) ChangeClassification(id string, to Classification) State {
	return e.Dispatch(ChangeClassification{ID: id, To: to})
}
func (e *Engine) Classify(to Classification) State { return e.Dispatch(Classify{To: to}) }
func (e *Engine) Undo() State                      { return e.Dispatch(Undo{}) }
func (e *Engine) Import(rects []DrawnRectangle) State {
	return e.Dispatch(Import{Rectangles: rects})
}
func (e *Engine) ImportPredictions(predictions []geometry.NormalizedBox, c Classification) State {
	return e.Dispatch(ImportPredictions{Predictions: predictions, Classification: c})
}
func (e *Engine) Escape() State              { return e.Dispatch(Escape{}) }
func (e *Engine) Reset(initial []Item) State { return e.Dispatch(Reset{Initial: initial}) }

// reduce is the single place the session state changes. It never mutates
// slices reachable from s.
func (e *Engine) reduce(s State, a Action) (State, []Event) {
	switch act := a.(type) {
	case SetDrawMode:
		if !act.Enabled {
			s.Current = nil
		}
		s.DrawMode = act.Enabled
		return s, nil

	case ToggleDrawMode:
		s.Current = nil
		s.DrawMode = !s.DrawMode
		return s, nil

	case StartDrawing:
		if !s.DrawMode {
			return s, nil
		}
		s.SelectedID = ""
		s.Current = &CurrentDrawing{
			StartX: act.Point.X, StartY: act.Point.Y,
			CurrentX: act.Point.X, CurrentY: act.Point.Y,
		}
		return s, nil

	case UpdateDrawing:
		if s.Current == nil {
			return s, nil
		}
		cur := *s.Current
		cur.CurrentX, cur.CurrentY = act.Point.X, act.Point.Y
		s.Current = &cur
		return s, nil

	case FinishDrawing:
		return e.finish(s, act.Bounds, act.Zoom)

	case Click:
		return e.click(s, act)

	case SelectRectangle:
		if act.ID != "" && indexOf(s.Rectangles, act.ID) < 0 {
			return s, nil
		}
		s.SelectedID = act.ID
		return s, nil

	case DeleteRectangle:
		return e.deleteByID(s, act.ID)

	case DeleteAll:
		if len(s.Rectangles) == 0 {
			return s, nil
		}
		n := len(s.Rectangles)
		s = e.pushUndo(s)
		s.Rectangles = []DrawnRectangle{}
		s.SelectedID = ""
		return s, []Event{{Kind: EventCleared, Count: n}}

	case DeleteSelectedOrAll:
		if s.SelectedID != "" {
			return e.deleteByID(s, s.SelectedID)
		}
		return e.reduce(s, DeleteAll{})

	case ChangeClassification:
		return e.reclassify(s, act.ID, act.To)

	case SetNextClassification:
		s.NextClassification = act.To
		return s, nil

	case Classify:
		if s.SelectedID != "" {
			return e.reclassify(s, s.SelectedID, act.To)
		}
		s.NextClassification = act.To
		return s, nil

	case Undo:
		if len(s.undo) == 0 {
			return s, nil
		}
		last := len(s.undo) - 1
		restored := s.undo[last]
		s.undo = s.undo[:last:last]
		s.Current = nil
		s.Rectangles = restored
		s.SelectedID = ""
		return s, []Event{{Kind: EventUndone, Count: len(restored)}}

	case Import:
		if len(act.Rectangles) == 0 {
			return s, nil
		}
		s = e.pushUndo(s)
		s.Rectangles = appendRectangles(s.Rectangles, act.Rectangles...)
		return s, []Event{{Kind: EventImported, Count: len(act.Rectangles)}}

	case ImportPredictions:
		created := ImportPredictionsAsRectangles(act.Predictions, act.Classification, s.Rectangles, e.similarityThreshold, e.newID)
		return e.reduce(s, Import{Rectangles: created})

	case Escape:
		if s.Current != nil {
			s.Current = nil
			return s, nil
		}
		s.SelectedID = ""
		return s, nil

	case Reset:
		next := State{Rectangles: make([]DrawnRectangle, 0, len(act.Initial))}
		for _, item := range act.Initial {
			if !item.Box.Valid() {
				e.logger.WithField("box", item.Box.String()).Warn("Skipping invalid persisted box")
				continue
			}
			next.Rectangles = append(next.Rectangles, DrawnRectangle{
				ID:             e.newID(),
				Box:            item.Box,
				Classification: item.Classification,
			})
		}
		return next, []Event{{Kind: EventReset, Count: len(next.Rectangles)}}
	}

	e.logger.WithField("action", fmt.Sprintf("%T", a)).Warn("Unhandled annotation action")
	return s, nil
}

func (e *Engine) click(s State, act Click) (State, []Event) {
	if s.Current != nil {
		s, _ = e.reduce(s, UpdateDrawing{Point: act.Point})
		return e.finish(s, act.Bounds, act.Zoom)
	}

	hit, ok := geometry.HitTest(act.Point, s.Rectangles, act.Bounds)
	if !s.DrawMode {
		s.SelectedID = ""
		if ok {
			s.SelectedID = hit.ID
		}
		return s, nil
	}
	if ok {
		s.Current = nil
		s.SelectedID = hit.ID
		return s, nil
	}
	return e.reduce(s, StartDrawing{Point: act.Point})
}

func (e *Engine) finish(s State, bounds coords.ImageBounds, zoom float64) (State, []Event) {
	cur := s.Current
	s.Current = nil
	if cur == nil {
		return s, nil
	}
	if !bounds.Valid() {
		e.logger.Debug("Dropping gesture: image bounds not measured")
		return s, nil
	}

	box := geometry.BoxFromCorners(
		coords.ImageToNormalized(cur.Start(), bounds),
		coords.ImageToNormalized(cur.Current(), bounds),
	).Clamp()
	if !geometry.HasMinimumSize(box, geometry.MinSizeThreshold(e.minDrawPixels, bounds, zoom)) {
		e.logger.WithField("box", box.String()).Debug("Dropping gesture below minimum size")
		return s, nil
	}

	rect := DrawnRectangle{ID: e.newID(), Box: box, Classification: s.NextClassification}
	s = e.pushUndo(s)
	s.Rectangles = appendRectangles(s.Rectangles, rect)
	s.SelectedID = rect.ID
	return s, []Event{{Kind: EventDrawn, RectangleID: rect.ID, Classification: rect.Classification, Count: 1}}
}

func (e *Engine) deleteByID(s State, id string) (State, []Event) {
	idx := indexOf(s.Rectangles, id)
	if idx < 0 {
		return s, nil
	}
	s = e.pushUndo(s)
	next := make([]DrawnRectangle, 0, len(s.Rectangles)-1)
	next = append(next, s.Rectangles[:idx]...)
	next = append(next, s.Rectangles[idx+1:]...)
	s.Rectangles = next
	if s.SelectedID == id {
		s.SelectedID = ""
	}
	return s, []Event{{Kind: EventDeleted, RectangleID: id, Count: 1}}
}

func (e *Engine) reclassify(s State, id string, to Classification) (State, []Event) {
	idx := indexOf(s.Rectangles, id)
	if idx < 0 {
		return s, nil
	}
	s = e.pushUndo(s)
	next := cloneRectangles(s.Rectangles)
	next[idx].Classification = to
	s.Rectangles = next
	return s, []Event{{Kind: EventReclassified, RectangleID: id, Classification: to, Count: 1}}
}

// pushUndo records the pre-mutation list, evicting the oldest snapshot once
// the limit is exceeded.
func (e *Engine) pushUndo(s State) State {
	stack := make([][]DrawnRectangle, 0, len(s.undo)+1)
	stack = append(stack, s.undo...)
	stack = append(stack, s.Rectangles)
	if over := len(stack) - e.undoLimit; over > 0 {
		stack = stack[over:]
	}
	s.undo = stack
	return s
}

func indexOf(rects []DrawnRectangle, id string) int {
	for i, r := range rects {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func appendRectangles(list []DrawnRectangle, more ...DrawnRectangle) []DrawnRectangle {
	out := make([]DrawnRectangle, 0, len(list)+len(more))
	out = append(out, list...)
	return append(out, more...)
}
