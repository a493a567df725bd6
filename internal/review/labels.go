package review

import (
	"fmt"
	"slices"
	"time"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/store"
)

// Label returns the verdict given to a detection so far.
func (w *Workspace) Label(sequenceID, detectionID string) store.DetectionLabel {
	if l := w.labels[sequenceID]; l != nil {
		return l.Detections[detectionID]
	}
	return store.DetectionLabel{}
}

// Progress returns how many detections of a sequence have a verdict.
func (w *Workspace) Progress(sequenceIndex int) (labelled, total int) {
	if sequenceIndex < 0 || sequenceIndex >= len(w.manifest.Sequences) {
		return 0, 0
	}
	seq := w.manifest.Sequences[sequenceIndex]
	l := w.labels[seq.ID]
	for _, det := range seq.Detections {
		if l == nil {
			break
		}
		if v, ok := l.Detections[det.ID]; ok && (v.Smoke || v.FalsePositive) {
			labelled++
		}
	}
	return labelled, len(seq.Detections)
}

// updateLabel edits the verdict of the active detection.
func (w *Workspace) updateLabel(edit func(*store.DetectionLabel)) bool {
	if w.modalOpen {
		return false
	}
	det, ok := w.ActiveDetection()
	if !ok {
		return false
	}
	seqID := w.manifest.Sequences[w.cursor.Sequence].ID
	l := w.labels[seqID]
	if l == nil {
		l = &store.SequenceLabels{SequenceID: seqID, Detections: make(map[string]store.DetectionLabel)}
		w.labels[seqID] = l
	}

	v := l.Detections[det.ID]
	edit(&v)
	l.Detections[det.ID] = v
	w.changed()
	return true
}

// MarkSmoke labels the active detection as smoke.
func (w *Workspace) MarkSmoke() {
	if w.updateLabel(func(v *store.DetectionLabel) {
		*v = store.DetectionLabel{Smoke: true}
	}) {
		w.metrics.ObserveDetectionLabel(true)
	}
}

// MarkFalsePositive labels the active detection as a false positive,
// keeping any reasons already chosen.
func (w *Workspace) MarkFalsePositive() {
	if w.updateLabel(func(v *store.DetectionLabel) {
		v.Smoke = false
		v.FalsePositive = true
	}) {
		w.metrics.ObserveDetectionLabel(false)
	}
}

// ToggleFalsePositiveType adds or removes a reason. Any reason marks the
// detection as a false positive.
func (w *Workspace) ToggleFalsePositiveType(t annotation.FalsePositiveType) {
	w.updateLabel(func(v *store.DetectionLabel) {
		v.Smoke = false
		v.FalsePositive = true
		if i := slices.Index(v.FalsePositives, t); i >= 0 {
			v.FalsePositives = slices.Delete(slices.Clone(v.FalsePositives), i, i+1)
			return
		}
		v.FalsePositives = append(slices.Clone(v.FalsePositives), t)
		slices.Sort(v.FalsePositives)
	})
}

// SubmitLabels saves the verdicts of the active sequence and, with
// auto-advance, moves to the next sequence.
func (w *Workspace) SubmitLabels() error {
	if len(w.manifest.Sequences) == 0 {
		return ErrNothingToSubmit
	}
	seqIndex := w.cursor.Sequence
	seqID := w.manifest.Sequences[seqIndex].ID
	l := w.labels[seqID]
	if l == nil || len(l.Detections) == 0 {
		err := fmt.Errorf("sequence %s: %w", seqID, ErrNothingToSubmit)
		w.notifyError(err)
		return err
	}

	snapshot := store.SequenceLabels{SequenceID: seqID, Detections: make(map[string]store.DetectionLabel, len(l.Detections))}
	for id, v := range l.Detections {
		v.FalsePositives = slices.Clone(v.FalsePositives)
		snapshot.Detections[id] = v
	}

	w.run(func() {
		ctx, cancel := w.timeout()
		defer cancel()

		start := time.Now()
		err := w.store.SaveLabels(ctx, snapshot)
		w.metrics.ObserveSubmit("labels", time.Since(start), err)

		w.ui(func() {
			if err != nil {
				w.logger.WithError(err).WithField("sequence_id", seqID).Error("Label submit failed")
				w.notifyError(fmt.Errorf("failed to save labels for %s: %w", seqID, err))
				return
			}
			w.notifyInfo(fmt.Sprintf("Saved labels for %s", seqID))
			if w.opts.AutoAdvance && !w.modalOpen && w.cursor.Sequence == seqIndex {
				w.NextSequence()
			}
		})
	})
	return nil
}
