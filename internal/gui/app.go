// Main window: sequence list, annotation canvas, toolbar and status bar
package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/keyboard"
	"smoke-annotator/internal/review"
)

// Application is the review window.
type Application struct {
	app       fyne.App
	window    fyne.Window
	logger    *logrus.Logger
	debugMode bool

	workspace  *review.Workspace
	dispatcher *keyboard.Dispatcher

	canvas      *AnnotationCanvas
	canvasView  *container.Scroll
	toolbar     *Toolbar
	sequences   *SequencePanel
	help        *HelpOverlay
	menuHandler *MenuHandler
	keys        *keyState

	placeholder *fyne.Container
	statusLabel *widget.Label
	message     string

	onClose func()
}

func NewApplication(app fyne.App, ws *review.Workspace, logger *logrus.Logger, debugMode bool) *Application {
	window := app.NewWindow("Smoke Annotator")
	window.Resize(fyne.NewSize(1600, 1000))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		debugMode: debugMode,
		workspace: ws,
		keys:      &keyState{},
	}

	a.initializeGUI()
	ws.SetNotifier(a)
	a.setupLayout()
	a.setupCallbacks()
	return a
}

func (a *Application) initializeGUI() {
	a.dispatcher = keyboard.NewDispatcher(a.workspace, a.keyboardContext, a.logger)
	a.canvas = NewAnnotationCanvas(a.workspace, a.logger)
	// A scroll that never scrolls clips the zoomed image to the view.
	a.canvasView = container.NewScroll(a.canvas)
	a.canvasView.Direction = container.ScrollNone
	a.toolbar = NewToolbar(a.workspace)
	a.sequences = NewSequencePanel(a.workspace)
	a.help = NewHelpOverlay(a.workspace)
	a.menuHandler = NewMenuHandler(a.window, a.workspace, a.logger)
	a.statusLabel = widget.NewLabel("Loading dataset…")
	a.placeholder = container.NewCenter(widget.NewLabel("Select a detection and press Open to annotate"))
}

func (a *Application) setupLayout() {
	center := container.NewStack(a.placeholder, a.canvasView, a.help.GetContainer())

	content := container.NewBorder(
		a.toolbar.GetContainer(),
		container.NewVBox(widget.NewSeparator(), a.statusLabel),
		nil,
		nil,
		center,
	)

	split := container.NewHSplit(a.sequences.GetContainer(), content)
	split.SetOffset(0.25)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(split)
}

func (a *Application) setupCallbacks() {
	a.workspace.OnChange(a.refresh)

	a.window.Canvas().SetOnTypedKey(a.typedKey)
	a.window.Canvas().SetOnTypedRune(a.typedRune)
	if dc, ok := a.window.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(a.keys.down)
		dc.SetOnKeyUp(a.keys.up)
	}
	for _, mod := range []fyne.KeyModifier{fyne.KeyModifierControl, fyne.KeyModifierSuper} {
		a.window.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: mod}, func(fyne.Shortcut) {
			a.dispatcher.Handle(keyboard.KeyEvent{Name: fyne.KeyZ, Ctrl: mod == fyne.KeyModifierControl, Meta: mod == fyne.KeyModifierSuper})
		})
	}
	a.menuHandler.SetShowHelp(func() { a.workspace.ToggleHelp() })
}

func (a *Application) keyboardContext() keyboard.Context {
	ctx := a.workspace.KeyboardContext()
	ctx.InputFocused = a.inputFocused()
	return ctx
}

// inputFocused reports whether a text entry holds the keyboard.
func (a *Application) inputFocused() bool {
	switch a.window.Canvas().Focused().(type) {
	case *widget.Entry, *widget.SelectEntry:
		return true
	}
	return false
}

func (a *Application) typedKey(ev *fyne.KeyEvent) {
	// "?" arrives as a rune; the slash key itself is not bound.
	if ev.Name == fyne.KeySlash {
		return
	}
	a.dispatcher.Handle(a.keys.event(ev.Name))
}

func (a *Application) typedRune(r rune) {
	if r == '?' {
		a.dispatcher.Handle(keyboard.KeyEvent{Name: "?", Shift: true})
	}
}

// refresh re-renders every view from the workspace. It always runs on the
// UI goroutine.
func (a *Application) refresh() {
	modal := a.workspace.ModalOpen()
	if modal {
		a.placeholder.Hide()
		a.canvasView.Show()
	} else {
		a.canvasView.Hide()
		a.placeholder.Show()
	}
	a.canvas.Refresh()
	a.toolbar.Update(a.workspace.Status())
	a.sequences.Refresh()
	a.help.Update()
	a.updateStatus()
}

func (a *Application) updateStatus() {
	text := a.workspace.Status().String()
	if a.message != "" {
		text = fmt.Sprintf("%s    %s", text, a.message)
	}
	a.statusLabel.SetText(text)
}

// Info implements review.Notifier.
func (a *Application) Info(message string) {
	a.logger.WithField("message", message).Info("Notification")
	a.message = message
	a.updateStatus()
}

// Error implements review.Notifier.
func (a *Application) Error(err error) {
	a.logger.WithError(err).Warn("Error shown to user")
	a.message = fmt.Sprintf("Error: %s", err)
	a.updateStatus()
	dialog.ShowError(err, a.window)
}

// SetCloseCallback registers cleanup to run when the window closes.
func (a *Application) SetCloseCallback(fn func()) {
	a.onClose = fn
}

// ShowAndRun starts the review and blocks until the window closes.
func (a *Application) ShowAndRun(ctx context.Context) {
	a.logger.Info("Showing review window")

	a.window.SetCloseIntercept(func() {
		a.logger.Info("Closing review window")
		if a.onClose != nil {
			a.onClose()
		}
		a.app.Quit()
	})

	if err := a.workspace.Start(ctx); err != nil {
		a.Error(fmt.Errorf("failed to load saved labels: %w", err))
	}
	a.refresh()
	a.window.ShowAndRun()
}
