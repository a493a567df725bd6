package keyboard

import (
	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/annotation"
)

// Actions is what the dispatcher drives. The review workspace implements it.
type Actions interface {
	ToggleHelp()
	CloseHelp()
	Escape()
	Undo()
	Submit()
	PreviousDetection()
	NextDetection()
	PreviousSequence()
	NextSequence()
	ToggleDrawMode()
	TogglePredictions()
	DeleteSelectedOrAll()
	Classify(c annotation.Classification)
	ResetZoom()
	ImportPredictions()
	MarkSmoke()
	MarkFalsePositive()
	ToggleFalsePositiveType(t annotation.FalsePositiveType)
}

// Dispatcher resolves key presses against the live UI context and invokes
// the matching action.
type Dispatcher struct {
	actions Actions
	context func() Context
	logger  *logrus.Logger
}

// NewDispatcher creates a dispatcher. context is called on every key press so
// it always sees the current state.
func NewDispatcher(actions Actions, context func() Context, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dispatcher{actions: actions, context: context, logger: logger}
}

// Handle resolves and runs one key press. It returns true when the key was
// consumed and must not be handled further.
func (d *Dispatcher) Handle(ev KeyEvent) bool {
	ctx := d.context()
	intent := Resolve(ev, ctx)
	if !intent.Matched() {
		return false
	}

	d.logger.WithFields(logrus.Fields{
		"key":    string(ev.Name),
		"intent": intent.Kind.String(),
	}).Debug("Key resolved")

	d.run(intent)
	return true
}

func (d *Dispatcher) run(intent Intent) {
	a := d.actions
	switch intent.Kind {
	case IntentToggleHelp:
		a.ToggleHelp()
	case IntentCloseHelp:
		a.CloseHelp()
	case IntentEscape:
		a.Escape()
	case IntentUndo:
		a.Undo()
	case IntentSubmit:
		a.Submit()
	case IntentPreviousDetection:
		a.PreviousDetection()
	case IntentNextDetection:
		a.NextDetection()
	case IntentPreviousSequence:
		a.PreviousSequence()
	case IntentNextSequence:
		a.NextSequence()
	case IntentToggleDrawMode:
		a.ToggleDrawMode()
	case IntentTogglePredictions:
		a.TogglePredictions()
	case IntentDelete:
		a.DeleteSelectedOrAll()
	case IntentClassify:
		a.Classify(intent.Classification)
	case IntentResetZoom:
		a.ResetZoom()
	case IntentImportPredictions:
		a.ImportPredictions()
	case IntentMarkSmoke:
		a.MarkSmoke()
	case IntentMarkFalsePositive:
		a.MarkFalsePositive()
	case IntentToggleFalsePositiveType:
		a.ToggleFalsePositiveType(intent.FalsePositive)
	}
}
