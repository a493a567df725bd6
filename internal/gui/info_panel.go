// Keyboard shortcut overlay
package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"smoke-annotator/internal/keyboard"
	"smoke-annotator/internal/review"
)

// HelpOverlay lists every shortcut over the current view.
type HelpOverlay struct {
	workspace *review.Workspace
	container *fyne.Container
}

func NewHelpOverlay(ws *review.Workspace) *HelpOverlay {
	h := &HelpOverlay{workspace: ws}
	h.initializeUI()
	return h
}

func (h *HelpOverlay) initializeUI() {
	sections := container.NewVBox()
	var scope keyboard.Scope
	var grid *fyne.Container
	for _, b := range keyboard.Bindings() {
		if b.Scope != scope || grid == nil {
			scope = b.Scope
			grid = container.NewGridWithColumns(2)
			sections.Add(widget.NewLabelWithStyle(string(scope), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
			sections.Add(grid)
		}
		grid.Add(widget.NewLabelWithStyle(b.Keys, fyne.TextAlignLeading, fyne.TextStyle{Monospace: true}))
		grid.Add(widget.NewLabel(b.Description))
	}

	card := widget.NewCard("Keyboard shortcuts", "Press ? or Esc to close", container.NewVScroll(sections))
	backdrop := canvas.NewRectangle(color.NRGBA{A: 160})

	h.container = container.NewStack(backdrop, container.NewPadded(card))
	h.container.Hide()
}

// Update shows or hides the overlay.
func (h *HelpOverlay) Update() {
	if h.workspace.HelpOpen() {
		h.container.Show()
	} else {
		h.container.Hide()
	}
}

func (h *HelpOverlay) GetContainer() *fyne.Container {
	return h.container
}
