package keyboard

import (
	"fyne.io/fyne/v2"

	"smoke-annotator/internal/annotation"
)

// falsePositiveKeys maps the sequence review letters to rejection reasons.
var falsePositiveKeys = map[fyne.KeyName]annotation.FalsePositiveType{
	fyne.KeyA: annotation.FPAntenna,
	fyne.KeyB: annotation.FPBuilding,
	fyne.KeyC: annotation.FPCliff,
	fyne.KeyK: annotation.FPDark,
	fyne.KeyD: annotation.FPDust,
	fyne.KeyH: annotation.FPHighCloud,
	fyne.KeyL: annotation.FPLowCloud,
	fyne.KeyE: annotation.FPLensFlare,
	fyne.KeyG: annotation.FPLensDroplet,
	fyne.KeyT: annotation.FPLight,
	fyne.KeyN: annotation.FPRain,
	fyne.KeyI: annotation.FPTrail,
	fyne.KeyR: annotation.FPRoad,
	fyne.KeyY: annotation.FPSky,
	fyne.KeyJ: annotation.FPTree,
	fyne.KeyW: annotation.FPWaterBody,
	fyne.KeyO: annotation.FPOther,
}

var classificationKeys = map[fyne.KeyName]annotation.Classification{
	fyne.Key1: annotation.Wildfire,
	fyne.KeyW: annotation.Wildfire,
	fyne.Key2: annotation.Industrial,
	fyne.KeyI: annotation.Industrial,
	fyne.Key3: annotation.Other,
	fyne.KeyO: annotation.Other,
}

// Resolve maps a key press to at most one intent. Checks run in strict
// priority order and the first match wins:
//
//  1. help toggle
//  2. closing the help overlay
//  3. undo
//  4. submit
//  5. navigation
//  6. draw mode and prediction visibility
//  7. delete
//  8. classification
//  9. zoom reset
//  10. prediction import
//
// Levels 6 to 10 only apply inside the annotation modal. Outside it the
// detection-level letters of ResolveSequence take their place.
func Resolve(ev KeyEvent, ctx Context) Intent {
	if ctx.InputFocused {
		return Intent{}
	}
	if isHelpKey(ev) {
		return Intent{Kind: IntentToggleHelp}
	}
	if ev.Name == fyne.KeyEscape {
		switch {
		case ctx.HelpOpen:
			return Intent{Kind: IntentCloseHelp}
		case ctx.ModalOpen:
			return Intent{Kind: IntentEscape}
		}
		return Intent{}
	}
	if ctx.HelpOpen {
		return Intent{}
	}
	if ev.Name == fyne.KeyZ && (ev.Ctrl || ev.Meta) {
		return Intent{Kind: IntentUndo}
	}
	if ev.Ctrl || ev.Meta {
		return Intent{}
	}
	if intent := resolveSubmit(ev, ctx); intent.Matched() {
		return intent
	}
	if intent := resolveNavigation(ev, ctx); intent.Matched() {
		return intent
	}
	if !ctx.ModalOpen {
		return resolveDetectionLabel(ev, ctx)
	}
	return resolveDrawing(ev)
}

// ResolveSequence resolves keys for the sequence review workflow, where an
// active detection is labelled smoke or false positive. It follows the same
// priority pattern as Resolve and never yields drawing intents.
func ResolveSequence(ev KeyEvent, ctx Context) Intent {
	ctx.ModalOpen = false
	return Resolve(ev, ctx)
}

func isHelpKey(ev KeyEvent) bool {
	return ev.Name == "?" || (ev.Name == fyne.KeySlash && ev.Shift)
}

func resolveSubmit(ev KeyEvent, ctx Context) Intent {
	switch {
	case ctx.ModalOpen && ev.Name == fyne.KeySpace:
		return Intent{Kind: IntentSubmit}
	case !ctx.ModalOpen && (ev.Name == fyne.KeyReturn || ev.Name == fyne.KeyEnter):
		return Intent{Kind: IntentSubmit}
	}
	return Intent{}
}

func resolveNavigation(ev KeyEvent, ctx Context) Intent {
	switch ev.Name {
	case fyne.KeyLeft:
		return Intent{Kind: IntentPreviousDetection}
	case fyne.KeyRight:
		return Intent{Kind: IntentNextDetection}
	case fyne.KeyUp:
		if !ctx.ModalOpen {
			return Intent{Kind: IntentPreviousSequence}
		}
	case fyne.KeyDown:
		if !ctx.ModalOpen {
			return Intent{Kind: IntentNextSequence}
		}
	}
	return Intent{}
}

func resolveDetectionLabel(ev KeyEvent, ctx Context) Intent {
	if !ctx.ActiveDetection {
		return Intent{}
	}
	switch ev.Name {
	case fyne.KeyS:
		return Intent{Kind: IntentMarkSmoke}
	case fyne.KeyF:
		return Intent{Kind: IntentMarkFalsePositive}
	}
	if fp, ok := falsePositiveKeys[ev.Name]; ok {
		return Intent{Kind: IntentToggleFalsePositiveType, FalsePositive: fp}
	}
	return Intent{}
}

func resolveDrawing(ev KeyEvent) Intent {
	switch ev.Name {
	case fyne.KeyD:
		return Intent{Kind: IntentToggleDrawMode}
	case fyne.KeyP, fyne.KeyV:
		return Intent{Kind: IntentTogglePredictions}
	case fyne.KeyDelete, fyne.KeyBackspace, fyne.KeyX:
		return Intent{Kind: IntentDelete}
	}
	if c, ok := classificationKeys[ev.Name]; ok {
		return Intent{Kind: IntentClassify, Classification: c}
	}
	switch ev.Name {
	case fyne.KeyR:
		return Intent{Kind: IntentResetZoom}
	case fyne.KeyU, fyne.KeyA:
		return Intent{Kind: IntentImportPredictions}
	}
	return Intent{}
}
