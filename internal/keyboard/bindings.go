package keyboard

import (
	"fmt"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
)

// Scope says where a binding is active.
type Scope string

const (
	ScopeGlobal   Scope = "Global"
	ScopeModal    Scope = "Annotation"
	ScopeSequence Scope = "Sequence review"
)

// Binding is one row of the help overlay.
type Binding struct {
	Keys        string
	Description string
	Scope       Scope
}

// Bindings lists every shortcut grouped by scope, in priority order.
func Bindings() []Binding {
	out := []Binding{
		{"?", "Show or hide this help", ScopeGlobal},
		{"Esc", "Close help, cancel drawing or clear selection", ScopeGlobal},
		{"Ctrl+Z / Cmd+Z", "Undo", ScopeGlobal},
		{"Enter", "Submit sequence labels", ScopeSequence},
		{"Space", "Submit annotation", ScopeModal},
		{"← / →", "Previous / next detection", ScopeGlobal},
		{"↑ / ↓", "Previous / next sequence", ScopeSequence},
		{"D", "Toggle draw mode", ScopeModal},
		{"P / V", "Show or hide predictions", ScopeModal},
		{"Delete / Backspace / X", "Delete selected box, or all boxes", ScopeModal},
		{"1 / W", "Wildfire", ScopeModal},
		{"2 / I", "Industrial", ScopeModal},
		{"3 / O", "Other", ScopeModal},
		{"R", "Reset zoom", ScopeModal},
		{"U / A", "Import predictions", ScopeModal},
		{"S", "Mark detection as smoke", ScopeSequence},
		{"F", "Mark detection as false positive", ScopeSequence},
	}

	keys := make([]string, 0, len(falsePositiveKeys))
	for k := range falsePositiveKeys {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fp := falsePositiveKeys[fyne.KeyName(k)]
		out = append(out, Binding{
			Keys:        k,
			Description: fmt.Sprintf("False positive: %s", strings.ReplaceAll(string(fp), "_", " ")),
			Scope:       ScopeSequence,
		})
	}
	return out
}
