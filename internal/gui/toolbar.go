// Annotation toolbar: drawing mode, classification, predictions and submit
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/review"
)

type Toolbar struct {
	workspace *review.Workspace

	container *fyne.Container

	drawBtn        *widget.Button
	classSelect    *widget.Select
	predictionsBtn *widget.Button
	importBtn      *widget.Button
	deleteBtn      *widget.Button
	undoBtn        *widget.Button
	resetZoomBtn   *widget.Button
	zoomLabel      *widget.Label
	submitBtn      *widget.Button
	closeBtn       *widget.Button
	helpBtn        *widget.Button

	modalOnly []fyne.Disableable
	syncing   bool
}

func NewToolbar(ws *review.Workspace) *Toolbar {
	tb := &Toolbar{workspace: ws}
	tb.initializeUI()
	return tb
}

func (tb *Toolbar) initializeUI() {
	ws := tb.workspace

	tb.drawBtn = widget.NewButtonWithIcon("Draw", theme.ContentAddIcon(), ws.ToggleDrawMode)

	names := make([]string, 0, len(annotation.Classifications))
	for _, c := range annotation.Classifications {
		names = append(names, c.String())
	}
	tb.classSelect = widget.NewSelect(names, func(name string) {
		if tb.syncing {
			return
		}
		if c, err := annotation.ParseClassification(name); err == nil {
			ws.Classify(c)
		}
	})

	tb.predictionsBtn = widget.NewButtonWithIcon("Predictions", theme.VisibilityIcon(), ws.TogglePredictions)
	tb.importBtn = widget.NewButtonWithIcon("Import", theme.DownloadIcon(), ws.ImportPredictions)
	tb.deleteBtn = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), ws.DeleteSelectedOrAll)
	tb.undoBtn = widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), ws.Undo)
	tb.resetZoomBtn = widget.NewButtonWithIcon("", theme.ZoomFitIcon(), ws.ResetZoom)
	tb.zoomLabel = widget.NewLabel("100%")

	tb.submitBtn = widget.NewButtonWithIcon("Submit", theme.ConfirmIcon(), ws.Submit)
	tb.submitBtn.Importance = widget.HighImportance
	tb.closeBtn = widget.NewButtonWithIcon("Close", theme.CancelIcon(), ws.CloseDetection)
	tb.helpBtn = widget.NewButtonWithIcon("", theme.HelpIcon(), ws.ToggleHelp)

	tb.modalOnly = []fyne.Disableable{
		tb.drawBtn, tb.classSelect, tb.predictionsBtn, tb.importBtn,
		tb.deleteBtn, tb.undoBtn, tb.resetZoomBtn, tb.closeBtn,
	}

	tb.container = container.NewHBox(
		tb.drawBtn,
		tb.classSelect,
		widget.NewSeparator(),
		tb.predictionsBtn,
		tb.importBtn,
		widget.NewSeparator(),
		tb.deleteBtn,
		tb.undoBtn,
		widget.NewSeparator(),
		tb.resetZoomBtn,
		tb.zoomLabel,
		layout.NewSpacer(),
		tb.submitBtn,
		tb.closeBtn,
		tb.helpBtn,
	)
	tb.Update(review.Status{Mode: "list"})
}

// Update mirrors the workspace status into the controls.
func (tb *Toolbar) Update(s review.Status) {
	annotating := s.Mode != "list" && !s.Loading
	for _, w := range tb.modalOnly {
		if annotating {
			w.Enable()
		} else {
			w.Disable()
		}
	}

	if s.Mode == "draw" || s.Mode == "drawing" {
		tb.drawBtn.Importance = widget.HighImportance
	} else {
		tb.drawBtn.Importance = widget.MediumImportance
	}
	tb.drawBtn.Refresh()

	tb.syncing = true
	tb.classSelect.SetSelected(s.Classification.String())
	tb.syncing = false

	if s.Importable > 0 {
		tb.importBtn.SetText(fmt.Sprintf("Import (%d)", s.Importable))
	} else {
		tb.importBtn.SetText("Import")
		tb.importBtn.Disable()
	}
	if s.UndoDepth == 0 {
		tb.undoBtn.Disable()
	}
	if s.PredictionsVisible {
		tb.predictionsBtn.SetIcon(theme.VisibilityIcon())
	} else {
		tb.predictionsBtn.SetIcon(theme.VisibilityOffIcon())
	}
	tb.zoomLabel.SetText(fmt.Sprintf("%.0f%%", s.Zoom*100))

	if s.Mode == "list" {
		tb.submitBtn.SetText("Submit labels")
	} else {
		tb.submitBtn.SetText("Submit")
	}
}

func (tb *Toolbar) GetContainer() *fyne.Container {
	return tb.container
}
