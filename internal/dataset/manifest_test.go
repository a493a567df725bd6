package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smoke-annotator/internal/geometry"
)

const sample = `
sequences:
  - id: seq-1
    camera: ridge-north
    started_at: 2024-07-01T12:00:00Z
    detections:
      - id: det-1
        image: seq-1/det-1.jpg
        confidence: 0.91
        predictions:
          - [0.1, 0.2, 0.3, 0.4]
          - [0.5, 0.5, 0.5, 0.9]
      - id: det-2
        image: /abs/det-2.png
  - id: seq-2
    detections:
      - id: det-3
        image: seq-2/det-3.jpg
`

func TestParse_IndexesDetections(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Len(t, m.Sequences, 2)
	assert.Equal(t, 3, m.DetectionCount())

	loc, ok := m.Locate("det-3")
	require.True(t, ok)
	assert.Equal(t, Location{Sequence: 1, Detection: 0}, loc)

	det, err := m.Detection("det-1")
	require.NoError(t, err)
	assert.Equal(t, "ridge-north", m.Sequences[0].Camera)
	assert.Equal(t, 2024, m.Sequences[0].StartedAt.Year())
	assert.InDelta(t, 0.91, det.Confidence, 1e-9)
	assert.Equal(t, []geometry.NormalizedBox{geometry.NewBox(0.1, 0.2, 0.3, 0.4)}, det.Predictions, "degenerate box dropped")

	_, err = m.Detection("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok = m.At(Location{Sequence: 0, Detection: 5})
	assert.False(t, ok)
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	_, err := Parse([]byte(`
sequences:
  - id: a
    detections:
      - {id: x, image: x.jpg}
  - id: b
    detections:
      - {id: x, image: y.jpg}
`))
	assert.Error(t, err)
}

func TestParse_RejectsWrongBoxArity(t *testing.T) {
	_, err := Parse([]byte(`
sequences:
  - id: a
    detections:
      - id: x
        image: x.jpg
        predictions:
          - [0.1, 0.2, 0.3]
`))
	assert.Error(t, err)
}

func TestLoad_ResolvesImagePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(sample), 0o644))

	m, err := Load(dir)
	require.NoError(t, err)

	path, err := m.ImagePath("det-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "seq-1", "det-1.jpg"), path)

	path, err = m.ImagePath("det-2")
	require.NoError(t, err)
	assert.Equal(t, "/abs/det-2.png", path)

	preds, err := m.Predictions(context.Background(), "det-1")
	require.NoError(t, err)
	assert.Len(t, preds, 1)

	_, err = Load(t.TempDir())
	assert.Error(t, err)
}
