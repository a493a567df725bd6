package review

import (
	"fmt"
	"strings"

	"smoke-annotator/internal/annotation"
)

// Status summarises the workspace for the status bar.
type Status struct {
	Mode               string
	SequenceID         string
	DetectionID        string
	Position, Total    int
	NextClassification annotation.Classification
	// Classification is the selected box's class, else NextClassification.
	Classification     annotation.Classification
	Rectangles         int
	Selected           bool
	UndoDepth          int
	Zoom               float64
	Importable         int
	PredictionsVisible bool
	Loading            bool
}

// Status returns the current summary.
func (w *Workspace) Status() Status {
	s := Status{Mode: "list", Zoom: 1}
	if det, ok := w.ActiveDetection(); ok {
		seq := w.manifest.Sequences[w.cursor.Sequence]
		s.SequenceID = seq.ID
		s.DetectionID = det.ID
		s.Position = w.cursor.Detection + 1
		s.Total = len(seq.Detections)
	}
	if !w.modalOpen {
		return s
	}

	st := w.engine.State()
	s.Mode = "annotate"
	switch {
	case st.IsActivelyDrawing():
		s.Mode = "drawing"
	case st.DrawMode:
		s.Mode = "draw"
	}
	s.NextClassification = st.NextClassification
	s.Rectangles = len(st.Rectangles)
	s.Classification = st.NextClassification
	if sel, ok := st.Selected(); ok {
		s.Selected = true
		s.Classification = sel.Classification
	}
	s.UndoDepth = st.UndoDepth()
	s.Zoom = w.surface.Viewport().Transform.ZoomLevel
	s.Importable = w.engine.ImportableCount(w.surface.Predictions())
	s.PredictionsVisible = w.surface.PredictionsVisible()
	s.Loading = w.loading
	return s
}

func (s Status) String() string {
	var parts []string
	if s.DetectionID != "" {
		parts = append(parts, fmt.Sprintf("%s %d/%d", s.SequenceID, s.Position, s.Total))
		parts = append(parts, s.DetectionID)
	}
	if s.Loading {
		return strings.Join(append(parts, "loading…"), " | ")
	}
	parts = append(parts, strings.ToUpper(s.Mode))
	if s.Mode == "list" {
		return strings.Join(parts, " | ")
	}
	parts = append(parts,
		fmt.Sprintf("next: %s", s.NextClassification),
		fmt.Sprintf("boxes: %d", s.Rectangles),
		fmt.Sprintf("zoom: %.1fx", s.Zoom),
		fmt.Sprintf("undo: %d", s.UndoDepth),
	)
	if s.Importable > 0 {
		parts = append(parts, fmt.Sprintf("importable: %d", s.Importable))
	}
	if !s.PredictionsVisible {
		parts = append(parts, "predictions hidden")
	}
	return strings.Join(parts, " | ")
}
