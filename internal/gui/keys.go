package gui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"smoke-annotator/internal/keyboard"
)

// keyState tracks held modifiers, which typed-key events do not carry.
type keyState struct {
	mu                 sync.Mutex
	shift, ctrl, super int
}

func (k *keyState) down(ev *fyne.KeyEvent) { k.track(ev.Name, 1) }
func (k *keyState) up(ev *fyne.KeyEvent)   { k.track(ev.Name, -1) }

func (k *keyState) track(name fyne.KeyName, delta int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var n *int
	switch name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		n = &k.shift
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		n = &k.ctrl
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		n = &k.super
	default:
		return
	}
	*n = max(0, *n+delta)
}

func (k *keyState) event(name fyne.KeyName) keyboard.KeyEvent {
	k.mu.Lock()
	defer k.mu.Unlock()
	return keyboard.KeyEvent{
		Name:  name,
		Shift: k.shift > 0,
		Ctrl:  k.ctrl > 0,
		Meta:  k.super > 0,
	}
}
