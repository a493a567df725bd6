// Menu handler for review actions
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/review"
)

// MenuHandler handles menu actions
type MenuHandler struct {
	window    fyne.Window
	workspace *review.Workspace
	logger    *logrus.Logger

	onShowHelp func()
}

func NewMenuHandler(window fyne.Window, ws *review.Workspace, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		window:    window,
		workspace: ws,
		logger:    logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	ws := mh.workspace

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Submit", ws.Submit),
		fyne.NewMenuItem("Close Detection", ws.CloseDetection),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", ws.Undo),
		fyne.NewMenuItem("Delete Selected or All", ws.DeleteSelectedOrAll),
		fyne.NewMenuItem("Import Predictions", ws.ImportPredictions),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Toggle Predictions", ws.TogglePredictions),
		fyne.NewMenuItem("Reset Zoom", ws.ResetZoom),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Previous Detection", ws.PreviousDetection),
		fyne.NewMenuItem("Next Detection", ws.NextDetection),
		fyne.NewMenuItem("Previous Sequence", ws.PreviousSequence),
		fyne.NewMenuItem("Next Sequence", ws.NextSequence),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Keyboard Shortcuts", func() {
			if mh.onShowHelp != nil {
				mh.onShowHelp()
			}
		}),
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu)
}

func (mh *MenuHandler) showAbout() {
	m := mh.workspace.Manifest()
	content := container.NewVBox(
		widget.NewLabel("Smoke Annotator"),
		widget.NewSeparator(),
		widget.NewLabel("Review wildfire smoke detections and draw"),
		widget.NewLabel("bounding boxes around the smoke plumes."),
		widget.NewSeparator(),
		widget.NewLabel("Dataset: "+m.Root),
	)

	mh.logger.Debug("Showing about dialog")
	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(400, 250))
	aboutDialog.Show()
}

func (mh *MenuHandler) SetShowHelp(fn func()) {
	mh.onShowHelp = fn
}
