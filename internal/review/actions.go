package review

import (
	"fmt"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/dataset"
	"smoke-annotator/internal/keyboard"
)

var _ keyboard.Actions = (*Workspace)(nil)

// KeyboardContext describes the UI state for shortcut resolution.
func (w *Workspace) KeyboardContext() keyboard.Context {
	_, active := w.ActiveDetection()
	return keyboard.Context{
		HelpOpen:        w.helpOpen,
		ModalOpen:       w.modalOpen,
		ActiveDetection: active,
		HasSelection:    w.engine.State().SelectedID != "",
	}
}

func (w *Workspace) ToggleHelp() {
	w.helpOpen = !w.helpOpen
	w.changed()
}

func (w *Workspace) CloseHelp() {
	w.helpOpen = false
	w.changed()
}

// Escape cancels the gesture, else clears the selection. It never closes
// the detection, so unsubmitted boxes survive.
func (w *Workspace) Escape() {
	if !w.modalOpen {
		return
	}
	w.engine.Escape()
	w.changed()
}

func (w *Workspace) Undo() {
	if !w.modalOpen {
		return
	}
	w.engine.Undo()
	w.changed()
}

// Submit saves the open detection, or the active sequence's labels in the
// list view.
func (w *Workspace) Submit() {
	var err error
	if w.modalOpen {
		err = w.SubmitAnnotation()
	} else {
		err = w.SubmitLabels()
	}
	if err != nil {
		w.logger.WithError(err).Debug("Submit ignored")
	}
}

func (w *Workspace) PreviousDetection() { w.moveDetection(-1) }
func (w *Workspace) NextDetection()     { w.moveDetection(1) }

func (w *Workspace) moveDetection(delta int) {
	next, ok := w.step(w.cursor, delta, w.modalOpen)
	if !ok {
		return
	}
	if w.modalOpen {
		if d, ok := w.manifest.At(next); ok {
			w.OpenDetection(d.ID)
		}
		return
	}
	w.cursor = next
	w.changed()
}

func (w *Workspace) PreviousSequence() { w.moveSequence(-1) }
func (w *Workspace) NextSequence()     { w.moveSequence(1) }

func (w *Workspace) moveSequence(delta int) {
	if w.modalOpen {
		return
	}
	seq := w.cursor.Sequence + delta
	if seq < 0 || seq >= len(w.manifest.Sequences) {
		return
	}
	w.cursor = dataset.Location{Sequence: seq}
	w.changed()
}

// Select moves the list cursor, e.g. after a click in the sequence list.
func (w *Workspace) Select(loc dataset.Location) {
	if _, ok := w.manifest.At(loc); !ok {
		return
	}
	w.cursor = loc
	w.changed()
}

func (w *Workspace) ToggleDrawMode() {
	w.engine.ToggleDrawMode()
	w.changed()
}

func (w *Workspace) TogglePredictions() {
	w.surface.TogglePredictions()
	w.changed()
}

func (w *Workspace) DeleteSelectedOrAll() {
	w.engine.DeleteSelectedOrAll()
	w.changed()
}

func (w *Workspace) Classify(c annotation.Classification) {
	w.engine.Classify(c)
	w.changed()
}

func (w *Workspace) ResetZoom() {
	if w.surface.ResetZoom() {
		w.changed()
	}
}

// ImportPredictions adds the predictions not already drawn, tagged with the
// next classification.
func (w *Workspace) ImportPredictions() {
	if !w.modalOpen || w.loading {
		return
	}
	st := w.engine.State()
	before := len(st.Rectangles)
	st = w.engine.ImportPredictions(w.surface.Predictions(), st.NextClassification)
	if added := len(st.Rectangles) - before; added > 0 {
		w.notifyInfo(fmt.Sprintf("Imported %d prediction(s)", added))
	}
	w.changed()
}
