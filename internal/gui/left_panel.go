// Sequence review panel: sequences, their detections and the labels given so far
package gui

import (
	"fmt"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/dataset"
	"smoke-annotator/internal/review"
	"smoke-annotator/internal/store"
)

type SequencePanel struct {
	workspace *review.Workspace

	container *fyne.Container

	sequenceList  *widget.List
	detectionList *widget.List
	openBtn       *widget.Button
	smokeBtn      *widget.Button
	falseBtn      *widget.Button
	reasons       *widget.CheckGroup

	syncing bool
}

func NewSequencePanel(ws *review.Workspace) *SequencePanel {
	panel := &SequencePanel{workspace: ws}
	panel.initializeUI()
	return panel
}

func (sp *SequencePanel) initializeUI() {
	ws := sp.workspace
	m := ws.Manifest()

	sp.sequenceList = widget.NewList(
		func() int { return len(m.Sequences) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil, widget.NewLabel("0/0"), widget.NewLabel("Sequence"))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			seq := m.Sequences[id]
			row := item.(*fyne.Container)
			name := seq.ID
			if seq.Camera != "" {
				name = fmt.Sprintf("%s (%s)", seq.ID, seq.Camera)
			}
			labelled, total := ws.Progress(id)
			row.Objects[0].(*widget.Label).SetText(name)
			row.Objects[1].(*widget.Label).SetText(fmt.Sprintf("%d/%d", labelled, total))
		},
	)
	sp.sequenceList.OnSelected = func(id widget.ListItemID) {
		if sp.syncing || id == ws.Cursor().Sequence {
			return
		}
		ws.Select(dataset.Location{Sequence: id})
	}

	sp.detectionList = widget.NewList(
		func() int { return len(sp.activeSequence().Detections) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, widget.NewIcon(theme.QuestionIcon()), nil, widget.NewLabel("Detection"))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			seq := sp.activeSequence()
			if id >= len(seq.Detections) {
				return
			}
			det := seq.Detections[id]
			verdict := ws.Label(seq.ID, det.ID)
			row := item.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(fmt.Sprintf("%s  %s", det.ID, describeLabel(verdict)))
			row.Objects[1].(*widget.Icon).SetResource(labelIcon(verdict))
		},
	)
	sp.detectionList.OnSelected = func(id widget.ListItemID) {
		cur := ws.Cursor()
		if sp.syncing || id == cur.Detection {
			return
		}
		ws.Select(dataset.Location{Sequence: cur.Sequence, Detection: id})
	}

	sp.openBtn = widget.NewButtonWithIcon("Open", theme.MediaPlayIcon(), func() {
		if det, ok := ws.ActiveDetection(); ok {
			ws.OpenDetection(det.ID)
		}
	})
	sp.openBtn.Importance = widget.HighImportance
	sp.smokeBtn = widget.NewButton("Smoke", ws.MarkSmoke)
	sp.falseBtn = widget.NewButton("False positive", ws.MarkFalsePositive)

	options := make([]string, 0, len(annotation.FalsePositiveTypes))
	for _, t := range annotation.FalsePositiveTypes {
		options = append(options, string(t))
	}
	sp.reasons = widget.NewCheckGroup(options, sp.reasonsChanged)
	sp.reasons.Horizontal = false

	labelsCard := widget.NewCard("Verdict", "", container.NewVBox(
		container.NewGridWithColumns(2, sp.smokeBtn, sp.falseBtn),
		container.NewVScroll(sp.reasons),
	))

	lists := container.NewVSplit(
		widget.NewCard("Sequences", "", sp.sequenceList),
		widget.NewCard("Detections", "", sp.detectionList),
	)
	lists.SetOffset(0.4)

	sp.container = container.NewBorder(nil, container.NewVBox(sp.openBtn, labelsCard), nil, nil, lists)
	sp.Refresh()
}

func (sp *SequencePanel) activeSequence() dataset.Sequence {
	m := sp.workspace.Manifest()
	cur := sp.workspace.Cursor()
	if cur.Sequence < 0 || cur.Sequence >= len(m.Sequences) {
		return dataset.Sequence{}
	}
	return m.Sequences[cur.Sequence]
}

// reasonsChanged toggles the reasons that differ from the stored verdict.
func (sp *SequencePanel) reasonsChanged(selected []string) {
	if sp.syncing {
		return
	}
	det, ok := sp.workspace.ActiveDetection()
	if !ok {
		return
	}
	current := sp.workspace.Label(sp.activeSequence().ID, det.ID).FalsePositives
	for _, t := range annotation.FalsePositiveTypes {
		if slices.Contains(selected, string(t)) != slices.Contains(current, t) {
			sp.workspace.ToggleFalsePositiveType(t)
		}
	}
}

// Refresh mirrors the cursor and labels into the lists.
func (sp *SequencePanel) Refresh() {
	ws := sp.workspace
	cur := ws.Cursor()

	sp.syncing = true
	defer func() { sp.syncing = false }()

	sp.sequenceList.Select(cur.Sequence)
	sp.sequenceList.Refresh()
	sp.detectionList.Select(cur.Detection)
	sp.detectionList.Refresh()

	det, ok := ws.ActiveDetection()
	listView := ok && !ws.ModalOpen()
	for _, w := range []fyne.Disableable{sp.openBtn, sp.smokeBtn, sp.falseBtn, sp.reasons} {
		if listView {
			w.Enable()
		} else {
			w.Disable()
		}
	}
	if !ok {
		sp.reasons.SetSelected(nil)
		return
	}

	verdict := ws.Label(sp.activeSequence().ID, det.ID)
	selected := make([]string, 0, len(verdict.FalsePositives))
	for _, t := range verdict.FalsePositives {
		selected = append(selected, string(t))
	}
	sp.reasons.SetSelected(selected)
}

func describeLabel(v store.DetectionLabel) string {
	switch {
	case v.Smoke:
		return "smoke"
	case v.FalsePositive && len(v.FalsePositives) > 0:
		reasons := make([]string, 0, len(v.FalsePositives))
		for _, t := range v.FalsePositives {
			reasons = append(reasons, string(t))
		}
		return "false positive: " + strings.Join(reasons, ", ")
	case v.FalsePositive:
		return "false positive"
	}
	return ""
}

func labelIcon(v store.DetectionLabel) fyne.Resource {
	switch {
	case v.Smoke:
		return theme.WarningIcon()
	case v.FalsePositive:
		return theme.CancelIcon()
	}
	return theme.QuestionIcon()
}

func (sp *SequencePanel) GetContainer() *fyne.Container {
	return sp.container
}
