package review

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smoke-annotator/internal/annotation"
	"smoke-annotator/internal/dataset"
	"smoke-annotator/internal/geometry"
	"smoke-annotator/internal/keyboard"
	"smoke-annotator/internal/metrics"
	"smoke-annotator/internal/store"
)

const testManifest = `
sequences:
  - id: seq-1
    detections:
      - id: det-1
        image: det-1.jpg
        predictions:
          - [0.1, 0.1, 0.3, 0.3]
          - [0.5, 0.5, 0.8, 0.9]
      - id: det-2
        image: det-2.jpg
  - id: seq-2
    detections:
      - id: det-3
        image: det-3.jpg
`

type fakeImages struct {
	err error
}

func (f *fakeImages) Image(_ context.Context, _ string) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 800, 600)), nil
}

type flakyStore struct {
	store.Store
	saveErr error
}

func (s *flakyStore) SaveAnnotation(ctx context.Context, id string, items []annotation.Item) (*store.Annotation, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.Store.SaveAnnotation(ctx, id, items)
}

func (s *flakyStore) SaveLabels(ctx context.Context, l store.SequenceLabels) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.SaveLabels(ctx, l)
}

type recordingNotifier struct {
	infos  []string
	errors []error
}

func (n *recordingNotifier) Info(msg string) { n.infos = append(n.infos, msg) }
func (n *recordingNotifier) Error(err error) { n.errors = append(n.errors, err) }

type fixture struct {
	ws       *Workspace
	store    *flakyStore
	images   *fakeImages
	notifier *recordingNotifier
	metrics  *metrics.Metrics
}

func inline(task func()) { task() }

func newFixture(t *testing.T, autoAdvance bool) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()

	m, err := dataset.Parse([]byte(testManifest))
	require.NoError(t, err)
	fs, err := store.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)

	f := &fixture{
		store:    &flakyStore{Store: fs},
		images:   &fakeImages{},
		notifier: &recordingNotifier{},
		metrics:  metrics.New(),
	}
	f.ws = NewWorkspace(Dependencies{
		Manifest: m,
		Images:   f.images,
		Store:    f.store,
		Notifier: f.notifier,
		Metrics:  f.metrics,
		Logger:   logger,
	}, Options{AutoAdvance: autoAdvance, ShowPredictions: true})
	f.ws.SetScheduler(inline, inline)
	require.NoError(t, f.ws.Start(context.Background()))
	return f
}

func (f *fixture) open(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.ws.OpenDetection(id))
	f.ws.Surface().Resize(1000, 600)
}

func (f *fixture) draw(x1, y1, x2, y2 float64) {
	f.ws.Engine().SetDrawMode(true)
	s := f.ws.Surface()
	s.Click(screen(x1, y1))
	s.Click(screen(x2, y2))
}

func TestOpenDetection_UnknownIDRedirectsToList(t *testing.T) {
	f := newFixture(t, true)
	f.open(t, "det-2")

	err := f.ws.OpenDetection("det-404")
	assert.ErrorIs(t, err, ErrDetectionNotFound)
	assert.False(t, f.ws.ModalOpen())
	require.Len(t, f.notifier.errors, 1)
	assert.ErrorIs(t, f.notifier.errors[0], ErrDetectionNotFound)
	assert.Equal(t, dataset.Location{Sequence: 0, Detection: 1}, f.ws.Cursor(), "cursor stays where it was")
}

func TestOpenDetection_SeedsFromSavedAnnotation(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.store.SaveAnnotation(context.Background(), "det-1", []annotation.Item{
		{Box: geometry.NewBox(0.2, 0.2, 0.4, 0.4), Classification: annotation.Industrial},
	})
	require.NoError(t, err)

	f.open(t, "det-1")
	require.True(t, f.ws.ModalOpen())
	assert.False(t, f.ws.Loading())
	assert.NotNil(t, f.ws.Image())

	st := f.ws.Engine().State()
	require.Len(t, st.Rectangles, 1)
	assert.Equal(t, annotation.Industrial, st.Rectangles[0].Classification)
	assert.Zero(t, st.UndoDepth())

	b, ok := f.ws.Surface().Bounds()
	require.True(t, ok)
	assert.Equal(t, 800.0, b.Width)
	assert.Len(t, f.ws.Surface().Predictions(), 2)
}

func TestOpenDetection_ImageFailureReturnsToList(t *testing.T) {
	f := newFixture(t, false)
	f.images.err = errors.New("disk gone")

	require.NoError(t, f.ws.OpenDetection("det-1"))
	assert.False(t, f.ws.ModalOpen())
	require.Len(t, f.notifier.errors, 1)
	assert.Contains(t, f.notifier.errors[0].Error(), "disk gone")
}

func TestOpenDetection_StaleLoadIsDropped(t *testing.T) {
	f := newFixture(t, false)
	var pending []func()
	f.ws.SetScheduler(func(task func()) { pending = append(pending, task) }, inline)

	require.NoError(t, f.ws.OpenDetection("det-1"))
	require.NoError(t, f.ws.OpenDetection("det-2"))
	assert.True(t, f.ws.Loading())

	for _, task := range pending {
		task()
	}
	assert.False(t, f.ws.Loading())
	assert.Empty(t, f.ws.Surface().Predictions(), "det-1 predictions never reach det-2")
	assert.Equal(t, dataset.Location{Sequence: 0, Detection: 1}, f.ws.Cursor())
}

func TestSubmitAnnotation_FailureKeepsState(t *testing.T) {
	f := newFixture(t, true)
	f.open(t, "det-1")
	f.draw(200, 100, 400, 300)
	before := f.ws.Engine().State()
	require.Len(t, before.Rectangles, 1)

	f.store.saveErr = errors.New("server unavailable")
	require.NoError(t, f.ws.SubmitAnnotation())

	require.Len(t, f.notifier.errors, 1)
	assert.True(t, f.ws.ModalOpen())
	assert.Equal(t, before.Rectangles, f.ws.Engine().State().Rectangles)
	assert.Equal(t, before.UndoDepth(), f.ws.Engine().State().UndoDepth())

	_, err := f.store.LoadAnnotation(context.Background(), "det-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	f.store.saveErr = nil
	require.NoError(t, f.ws.SubmitAnnotation())
	saved, err := f.store.LoadAnnotation(context.Background(), "det-1")
	require.NoError(t, err)
	assert.Equal(t, before.Items(), saved.Items)
}

func TestSubmitAnnotation_AutoAdvancesAcrossSequences(t *testing.T) {
	f := newFixture(t, true)
	f.open(t, "det-1")

	require.NoError(t, f.ws.SubmitAnnotation())
	assert.Equal(t, dataset.Location{Sequence: 0, Detection: 1}, f.ws.Cursor())
	assert.True(t, f.ws.ModalOpen())

	require.NoError(t, f.ws.SubmitAnnotation())
	assert.Equal(t, dataset.Location{Sequence: 1, Detection: 0}, f.ws.Cursor())

	require.NoError(t, f.ws.SubmitAnnotation())
	assert.False(t, f.ws.ModalOpen())
	assert.Contains(t, f.notifier.infos, "All detections reviewed")
}

func TestSubmitAnnotation_WithoutAutoAdvanceStays(t *testing.T) {
	f := newFixture(t, false)
	f.open(t, "det-1")
	f.draw(200, 100, 400, 300)

	require.NoError(t, f.ws.SubmitAnnotation())
	assert.Equal(t, dataset.Location{}, f.ws.Cursor())
	assert.True(t, f.ws.ModalOpen())
	assert.Len(t, f.ws.Engine().State().Rectangles, 1)
}

func TestSubmitAnnotation_RequiresOpenDetection(t *testing.T) {
	f := newFixture(t, true)
	assert.ErrorIs(t, f.ws.SubmitAnnotation(), ErrNoActiveDetection)
}

func TestNavigation_ClosingDiscardsSession(t *testing.T) {
	f := newFixture(t, false)
	f.open(t, "det-1")
	f.draw(200, 100, 400, 300)
	f.ws.Engine().SetDrawMode(true)
	f.ws.Surface().Click(screen(500, 400))

	f.ws.NextDetection()
	st := f.ws.Engine().State()
	assert.Empty(t, st.Rectangles)
	assert.Zero(t, st.UndoDepth())
	assert.False(t, st.IsActivelyDrawing())
	assert.Equal(t, dataset.Location{Sequence: 0, Detection: 1}, f.ws.Cursor())
}

func TestNavigation_ListView(t *testing.T) {
	f := newFixture(t, false)

	f.ws.NextDetection()
	assert.Equal(t, dataset.Location{Sequence: 0, Detection: 1}, f.ws.Cursor())
	f.ws.NextDetection()
	assert.Equal(t, dataset.Location{Sequence: 0, Detection: 1}, f.ws.Cursor(), "list view stops at the end of a sequence")

	f.ws.NextSequence()
	assert.Equal(t, dataset.Location{Sequence: 1, Detection: 0}, f.ws.Cursor())
	f.ws.NextSequence()
	assert.Equal(t, dataset.Location{Sequence: 1, Detection: 0}, f.ws.Cursor())
	f.ws.PreviousSequence()
	assert.Equal(t, dataset.Location{Sequence: 0, Detection: 0}, f.ws.Cursor())
	f.ws.PreviousDetection()
	assert.Equal(t, dataset.Location{}, f.ws.Cursor())
}

func TestLabels_MarkAndSubmit(t *testing.T) {
	f := newFixture(t, true)

	assert.ErrorIs(t, f.ws.SubmitLabels(), ErrNothingToSubmit)

	f.ws.MarkSmoke()
	f.ws.NextDetection()
	f.ws.ToggleFalsePositiveType(annotation.FPLowCloud)
	f.ws.ToggleFalsePositiveType(annotation.FPDust)
	f.ws.ToggleFalsePositiveType(annotation.FPLowCloud)

	assert.Equal(t, store.DetectionLabel{Smoke: true}, f.ws.Label("seq-1", "det-1"))
	assert.Equal(t, store.DetectionLabel{
		FalsePositive:  true,
		FalsePositives: []annotation.FalsePositiveType{annotation.FPDust},
	}, f.ws.Label("seq-1", "det-2"))

	labelled, total := f.ws.Progress(0)
	assert.Equal(t, 2, labelled)
	assert.Equal(t, 2, total)

	require.NoError(t, f.ws.SubmitLabels())
	assert.Equal(t, dataset.Location{Sequence: 1}, f.ws.Cursor(), "auto-advance to next sequence")

	saved, err := f.store.LoadLabels(context.Background(), "seq-1")
	require.NoError(t, err)
	assert.Len(t, saved.Detections, 2)
}

func TestLabels_SmokeClearsFalsePositive(t *testing.T) {
	f := newFixture(t, false)
	f.ws.ToggleFalsePositiveType(annotation.FPSky)
	f.ws.MarkSmoke()
	assert.Equal(t, store.DetectionLabel{Smoke: true}, f.ws.Label("seq-1", "det-1"))

	f.ws.MarkFalsePositive()
	assert.Equal(t, store.DetectionLabel{FalsePositive: true}, f.ws.Label("seq-1", "det-1"))
}

func TestLabels_IgnoredWhileAnnotating(t *testing.T) {
	f := newFixture(t, false)
	f.open(t, "det-1")
	f.ws.MarkSmoke()
	assert.Equal(t, store.DetectionLabel{}, f.ws.Label("seq-1", "det-1"))
}

func TestStart_RestoresSavedLabels(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.store.SaveLabels(context.Background(), store.SequenceLabels{
		SequenceID: "seq-2",
		Detections: map[string]store.DetectionLabel{"det-3": {Smoke: true}},
	}))

	require.NoError(t, f.ws.Start(context.Background()))
	assert.True(t, f.ws.Label("seq-2", "det-3").Smoke)
}

func TestKeyboard_DrivesWorkspace(t *testing.T) {
	f := newFixture(t, false)
	d := keyboard.NewDispatcher(f.ws, f.ws.KeyboardContext, nil)
	press := func(name fyne.KeyName) bool { return d.Handle(keyboard.KeyEvent{Name: name}) }

	require.True(t, press(fyne.KeyS))
	assert.True(t, f.ws.Label("seq-1", "det-1").Smoke)

	f.open(t, "det-1")
	require.True(t, press(fyne.KeyU))
	assert.Len(t, f.ws.Engine().State().Rectangles, 2)
	assert.Contains(t, f.notifier.infos, "Imported 2 prediction(s)")

	require.True(t, press(fyne.KeyD))
	assert.True(t, f.ws.Engine().State().DrawMode)
	require.True(t, press(fyne.Key3))
	assert.Equal(t, annotation.Other, f.ws.Engine().State().NextClassification)

	require.True(t, press(fyne.KeyX))
	assert.Empty(t, f.ws.Engine().State().Rectangles)
	require.True(t, d.Handle(keyboard.KeyEvent{Name: fyne.KeyZ, Ctrl: true}))
	assert.Len(t, f.ws.Engine().State().Rectangles, 2)

	require.True(t, press("?"))
	assert.True(t, f.ws.HelpOpen())
	assert.False(t, press(fyne.KeyD), "help blocks drawing keys")
	require.True(t, press(fyne.KeyEscape))
	assert.False(t, f.ws.HelpOpen())

	require.True(t, press(fyne.KeyEscape))
	assert.True(t, f.ws.ModalOpen(), "escape never closes the detection")
}

func TestEscape_KeepsUnsubmittedBoxes(t *testing.T) {
	f := newFixture(t, false)
	f.open(t, "det-1")
	f.draw(200, 100, 400, 300)
	d := keyboard.NewDispatcher(f.ws, f.ws.KeyboardContext, nil)
	esc := func() { require.True(t, d.Handle(keyboard.KeyEvent{Name: fyne.KeyEscape})) }

	require.NotEmpty(t, f.ws.Engine().State().SelectedID)
	esc()
	assert.Empty(t, f.ws.Engine().State().SelectedID, "escape clears the selection")

	f.ws.Click(screen(500, 400))
	require.True(t, f.ws.Engine().State().IsActivelyDrawing())
	esc()
	assert.False(t, f.ws.Engine().State().IsActivelyDrawing(), "escape cancels the gesture")

	esc()
	st := f.ws.Engine().State()
	assert.True(t, f.ws.ModalOpen())
	assert.Len(t, st.Rectangles, 1)
	assert.True(t, st.CanUndo())
}

func TestStatus_ReportsSelectedClassification(t *testing.T) {
	f := newFixture(t, false)
	f.open(t, "det-1")
	f.draw(200, 100, 400, 300)

	f.ws.Classify(annotation.Industrial)
	s := f.ws.Status()
	require.True(t, s.Selected)
	assert.Equal(t, annotation.Industrial, s.Classification)
	assert.Equal(t, annotation.Wildfire, s.NextClassification, "reclassifying leaves the next class alone")

	f.ws.Escape()
	s = f.ws.Status()
	assert.False(t, s.Selected)
	assert.Equal(t, annotation.Wildfire, s.Classification)
}

func TestMetrics_CountsOpenedSessions(t *testing.T) {
	f := newFixture(t, false)
	f.open(t, "det-1")
	f.ws.CloseDetection()

	expected := `
# HELP annotator_sessions_total Detection sessions opened
# TYPE annotator_sessions_total counter
annotator_sessions_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "annotator_sessions_total"))
}
