package review

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/dataset"
	"smoke-annotator/internal/geometry"
	"smoke-annotator/internal/store"
)

type loaded struct {
	image       image.Image
	predictions []geometry.NormalizedBox
	existing    *store.Annotation
	err         error
}

// OpenDetection starts an annotation session. The previous session, its
// gesture and its undo history are discarded. Unknown ids close the modal
// and return ErrDetectionNotFound.
func (w *Workspace) OpenDetection(id string) error {
	loc, ok := w.manifest.Locate(id)
	if !ok {
		err := fmt.Errorf("%s: %w", id, ErrDetectionNotFound)
		w.logger.WithField("detection_id", id).Warn("Unknown detection, returning to list")
		w.closeModal()
		w.notifyError(err)
		w.changed()
		return err
	}

	w.session++
	session := w.session
	w.cursor = loc
	w.modalOpen = true
	w.loading = true
	w.image = nil
	w.engine.Reset(nil)
	w.changed()

	w.logger.WithFields(logrus.Fields{
		"detection_id": id,
		"session":      session,
	}).Info("Opening detection")

	w.run(func() {
		res := w.load(id)
		w.ui(func() { w.apply(session, id, res) })
	})
	return nil
}

func (w *Workspace) load(id string) loaded {
	ctx, cancel := w.timeout()
	defer cancel()

	var res loaded
	res.image, res.err = w.images.Image(ctx, id)
	w.metrics.ObserveImageLoad(res.err)
	if res.err != nil {
		return res
	}

	preds, err := w.predictions.Predictions(ctx, id)
	if err != nil {
		w.logger.WithError(err).WithField("detection_id", id).Warn("Predictions unavailable")
	}
	res.predictions = preds

	existing, err := w.store.LoadAnnotation(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		res.err = fmt.Errorf("failed to load saved annotation: %w", err)
	default:
		res.existing = existing
	}
	return res
}

// apply installs loaded data unless the user has moved on since.
func (w *Workspace) apply(session uint64, id string, res loaded) {
	if session != w.session || !w.modalOpen {
		w.logger.WithField("detection_id", id).Debug("Dropping stale detection load")
		return
	}
	w.loading = false

	if res.image == nil {
		w.logger.WithError(res.err).WithField("detection_id", id).Error("Failed to load detection")
		w.closeModal()
		w.notifyError(fmt.Errorf("detection %s: %w", id, res.err))
		w.changed()
		return
	}
	if res.err != nil {
		w.notifyError(fmt.Errorf("detection %s: %w", id, res.err))
	}

	var items []annotation.Item
	if res.existing != nil {
		items = res.existing.Items
	}
	b := res.image.Bounds()
	w.image = res.image
	w.engine.Reset(items)
	w.surface.Load(float64(b.Dx()), float64(b.Dy()), res.predictions, items)
	w.metrics.ObserveSessionOpened()
	w.changed()
}

// CloseDetection returns to the list view, discarding the session.
func (w *Workspace) CloseDetection() {
	if !w.modalOpen {
		return
	}
	w.closeModal()
	w.changed()
}

func (w *Workspace) closeModal() {
	w.session++
	w.modalOpen = false
	w.loading = false
	w.image = nil
	w.engine.Reset(nil)
}

// SubmitAnnotation saves the boxes of the open detection. On failure the
// session is left untouched so the user can retry; on success the next
// detection opens when auto-advance is on.
func (w *Workspace) SubmitAnnotation() error {
	det, ok := w.ActiveDetection()
	if !w.modalOpen || !ok || w.loading {
		return ErrNoActiveDetection
	}
	items := w.engine.State().Items()
	session := w.session

	w.run(func() {
		ctx, cancel := w.timeout()
		defer cancel()

		start := time.Now()
		saved, err := w.store.SaveAnnotation(ctx, det.ID, items)
		w.metrics.ObserveSubmit("annotation", time.Since(start), err)

		w.ui(func() { w.submitted(session, det.ID, saved, err) })
	})
	return nil
}

func (w *Workspace) submitted(session uint64, id string, saved *store.Annotation, err error) {
	if err != nil {
		w.logger.WithError(err).WithField("detection_id", id).Error("Annotation submit failed")
		w.notifyError(fmt.Errorf("failed to save %s: %w", id, err))
		return
	}
	w.notifyInfo(fmt.Sprintf("Saved %d box(es) for %s", len(saved.Items), id))

	if session != w.session {
		return
	}
	w.surface.SetPersisted(saved.Items)
	if !w.opts.AutoAdvance {
		w.changed()
		return
	}
	next, ok := w.step(w.cursor, 1, true)
	if !ok {
		w.notifyInfo("All detections reviewed")
		w.CloseDetection()
		return
	}
	if d, ok := w.manifest.At(next); ok {
		w.OpenDetection(d.ID)
	}
}

// step moves the cursor by delta detections. Within a sequence it stops at
// the ends unless crossSequences is set.
func (w *Workspace) step(loc dataset.Location, delta int, crossSequences bool) (dataset.Location, bool) {
	seqs := w.manifest.Sequences
	if len(seqs) == 0 {
		return loc, false
	}
	next := loc
	next.Detection += delta
	for next.Detection < 0 || next.Detection >= len(seqs[next.Sequence].Detections) {
		if !crossSequences {
			return loc, false
		}
		if next.Detection < 0 {
			next.Sequence--
			if next.Sequence < 0 {
				return loc, false
			}
			next.Detection = len(seqs[next.Sequence].Detections) - 1
		} else {
			next.Sequence++
			if next.Sequence >= len(seqs) {
				return loc, false
			}
			next.Detection = 0
		}
	}
	return next, true
}
