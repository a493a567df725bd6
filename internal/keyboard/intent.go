// Keyboard shortcut resolution for the annotation and sequence review views
package keyboard

import (
	"fyne.io/fyne/v2"

	"smoke-annotator/internal/annotation"
)

// KeyEvent is a key press with its modifier state. Name uses fyne key names,
// with "?" for the help key on layouts that deliver it as a rune.
type KeyEvent struct {
	Name  fyne.KeyName
	Shift bool
	Ctrl  bool
	Meta  bool
}

// Context is the UI state that gates which intents are reachable.
type Context struct {
	HelpOpen        bool
	ModalOpen       bool
	ActiveDetection bool
	HasSelection    bool
	InputFocused    bool
}

// IntentKind names what a key press asks for.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentToggleHelp
	IntentCloseHelp
	IntentEscape
	IntentUndo
	IntentSubmit
	IntentPreviousDetection
	IntentNextDetection
	IntentPreviousSequence
	IntentNextSequence
	IntentToggleDrawMode
	IntentTogglePredictions
	IntentDelete
	IntentClassify
	IntentResetZoom
	IntentImportPredictions
	IntentMarkSmoke
	IntentMarkFalsePositive
	IntentToggleFalsePositiveType
)

var intentNames = map[IntentKind]string{
	IntentNone:                    "none",
	IntentToggleHelp:              "toggle_help",
	IntentCloseHelp:               "close_help",
	IntentEscape:                  "escape",
	IntentUndo:                    "undo",
	IntentSubmit:                  "submit",
	IntentPreviousDetection:       "previous_detection",
	IntentNextDetection:           "next_detection",
	IntentPreviousSequence:        "previous_sequence",
	IntentNextSequence:            "next_sequence",
	IntentToggleDrawMode:          "toggle_draw_mode",
	IntentTogglePredictions:       "toggle_predictions",
	IntentDelete:                  "delete",
	IntentClassify:                "classify",
	IntentResetZoom:               "reset_zoom",
	IntentImportPredictions:       "import_predictions",
	IntentMarkSmoke:               "mark_smoke",
	IntentMarkFalsePositive:       "mark_false_positive",
	IntentToggleFalsePositiveType: "toggle_false_positive_type",
}

func (k IntentKind) String() string {
	if name, ok := intentNames[k]; ok {
		return name
	}
	return "unknown"
}

// Intent is the single action a key press resolves to. Classification and
// FalsePositive are only set for the intents that carry them.
type Intent struct {
	Kind           IntentKind
	Classification annotation.Classification
	FalsePositive  annotation.FalsePositiveType
}

// Matched reports whether the key press resolved to anything.
func (i Intent) Matched() bool { return i.Kind != IntentNone }
