// Review workspace: sequence list, detection sessions, submission and labelling
package review

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/canvas"
	"smoke-annotator/internal/coords"
	"smoke-annotator/internal/dataset"
	"smoke-annotator/internal/geometry"
	"smoke-annotator/internal/metrics"
	"smoke-annotator/internal/store"
)

var (
	// ErrDetectionNotFound is returned when asked to open an id the dataset
	// does not list.
	ErrDetectionNotFound = errors.New("detection not found")
	// ErrNothingToSubmit is returned when a sequence has no verdicts yet.
	ErrNothingToSubmit = errors.New("nothing to submit")
	// ErrNoActiveDetection is returned by operations that need an open
	// annotation session.
	ErrNoActiveDetection = errors.New("no detection open")
)

// ImageSource loads the image of a detection.
type ImageSource interface {
	Image(ctx context.Context, detectionID string) (image.Image, error)
}

// PredictionSource returns the model boxes of a detection.
type PredictionSource interface {
	Predictions(ctx context.Context, detectionID string) ([]geometry.NormalizedBox, error)
}

// Notifier surfaces outcomes to the user.
type Notifier interface {
	Info(message string)
	Error(err error)
}

// Options tunes the workspace.
type Options struct {
	AutoAdvance     bool
	Timeout         time.Duration
	ZoomOptions     coords.ZoomOptions
	ShowPredictions bool
	EngineOptions   []annotation.Option
}

// Workspace drives one review run over a dataset. Its methods must be called
// from the UI goroutine; blocking work is handed to the runner and its
// results come back through the ui callback.
type Workspace struct {
	manifest    *dataset.Manifest
	images      ImageSource
	predictions PredictionSource
	store       store.Store
	notifier    Notifier
	metrics     *metrics.Metrics
	logger      *logrus.Logger
	opts        Options

	engine  *annotation.Engine
	surface *canvas.Surface

	cursor    dataset.Location
	modalOpen bool
	helpOpen  bool
	session   uint64
	loading   bool
	image     image.Image
	labels    map[string]*store.SequenceLabels

	run       func(task func())
	ui        func(task func())
	listeners []func()
}

// Dependencies groups the collaborators of a workspace.
type Dependencies struct {
	Manifest    *dataset.Manifest
	Images      ImageSource
	Predictions PredictionSource
	Store       store.Store
	Notifier    Notifier
	Metrics     *metrics.Metrics
	Logger      *logrus.Logger
}

// NewWorkspace wires a workspace. By default blocking work runs on a new
// goroutine and results are applied inline; the GUI replaces ui with
// fyne.Do.
func NewWorkspace(deps Dependencies, opts Options) *Workspace {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.ZoomOptions == (coords.ZoomOptions{}) {
		opts.ZoomOptions = coords.DefaultZoomOptions()
	}
	predictions := deps.Predictions
	if predictions == nil {
		predictions = deps.Manifest
	}

	engine := annotation.NewEngine(logger, opts.EngineOptions...)
	engine.AddListener(deps.Metrics.AnnotationListener())

	w := &Workspace{
		manifest:    deps.Manifest,
		images:      deps.Images,
		predictions: predictions,
		store:       deps.Store,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		logger:      logger,
		opts:        opts,
		engine:      engine,
		surface:     canvas.NewSurface(engine, opts.ZoomOptions, opts.ShowPredictions, logger),
		labels:      make(map[string]*store.SequenceLabels),
		run:         func(task func()) { go task() },
		ui:          func(task func()) { task() },
	}
	return w
}

// SetScheduler replaces how background work is started and how its results
// are applied.
func (w *Workspace) SetScheduler(run, ui func(task func())) {
	if run != nil {
		w.run = run
	}
	if ui != nil {
		w.ui = ui
	}
}

// SetNotifier replaces the notifier, for views created after the workspace.
func (w *Workspace) SetNotifier(n Notifier) {
	w.notifier = n
}

// OnChange registers a callback invoked after every visible change.
func (w *Workspace) OnChange(fn func()) {
	w.listeners = append(w.listeners, fn)
}

func (w *Workspace) changed() {
	for _, fn := range w.listeners {
		fn()
	}
}

// Start loads the saved sequence labels. Sequences without labels start
// empty.
func (w *Workspace) Start(ctx context.Context) error {
	for _, seq := range w.manifest.Sequences {
		ctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
		l, err := w.store.LoadLabels(ctx, seq.ID)
		cancel()
		switch {
		case errors.Is(err, store.ErrNotFound):
			l = &store.SequenceLabels{SequenceID: seq.ID}
		case err != nil:
			return err
		}
		if l.Detections == nil {
			l.Detections = make(map[string]store.DetectionLabel)
		}
		w.labels[seq.ID] = l
	}

	w.logger.WithFields(logrus.Fields{
		"sequences":  len(w.manifest.Sequences),
		"detections": w.manifest.DetectionCount(),
	}).Info("Review workspace started")
	w.changed()
	return nil
}

func (w *Workspace) notifyInfo(msg string) {
	if w.notifier != nil {
		w.notifier.Info(msg)
	}
}

func (w *Workspace) notifyError(err error) {
	if w.notifier != nil {
		w.notifier.Error(err)
	}
}

func (w *Workspace) timeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), w.opts.Timeout)
}

// Manifest returns the dataset being reviewed.
func (w *Workspace) Manifest() *dataset.Manifest { return w.manifest }

// Engine returns the annotation engine of the open detection.
func (w *Workspace) Engine() *annotation.Engine { return w.engine }

// Surface returns the canvas surface of the open detection.
func (w *Workspace) Surface() *canvas.Surface { return w.surface }

// Cursor returns the active sequence and detection.
func (w *Workspace) Cursor() dataset.Location { return w.cursor }

// ActiveDetection returns the detection under the cursor.
func (w *Workspace) ActiveDetection() (dataset.Detection, bool) {
	return w.manifest.At(w.cursor)
}

// ModalOpen reports whether a detection is open for annotation.
func (w *Workspace) ModalOpen() bool { return w.modalOpen }

// HelpOpen reports whether the shortcut overlay is showing.
func (w *Workspace) HelpOpen() bool { return w.helpOpen }

// Loading reports whether the open detection is still loading.
func (w *Workspace) Loading() bool { return w.loading }

// Image returns the image of the open detection, nil while loading.
func (w *Workspace) Image() image.Image { return w.image }
