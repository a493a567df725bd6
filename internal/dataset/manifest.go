// Dataset manifest: sequences of detections with their images and model predictions
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"smoke-annotator/internal/geometry"
)

// ErrNotFound is returned for ids the manifest does not list.
var ErrNotFound = errors.New("detection not found")

// Detection is one camera frame flagged by the model.
type Detection struct {
	ID          string                   `yaml:"id"`
	Image       string                   `yaml:"image"`
	CapturedAt  time.Time                `yaml:"captured_at,omitempty"`
	Confidence  float64                  `yaml:"confidence,omitempty"`
	Predictions []geometry.NormalizedBox `yaml:"predictions,omitempty"`
}

// Sequence is a run of detections from one camera.
type Sequence struct {
	ID         string      `yaml:"id"`
	Camera     string      `yaml:"camera,omitempty"`
	StartedAt  time.Time   `yaml:"started_at,omitempty"`
	Detections []Detection `yaml:"detections"`
}

// Location addresses a detection by sequence and detection index.
type Location struct {
	Sequence  int
	Detection int
}

// Manifest is the parsed dataset index.
type Manifest struct {
	Root      string     `yaml:"-"`
	Sequences []Sequence `yaml:"sequences"`

	index map[string]Location
}

// Load reads manifest.yaml from the dataset directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "manifest.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	m.Root = dir
	return m, nil
}

// Parse decodes and validates a manifest. Ids must be unique across the
// whole dataset; invalid prediction boxes are dropped.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	m.index = make(map[string]Location)
	for si := range m.Sequences {
		seq := &m.Sequences[si]
		if seq.ID == "" {
			return nil, fmt.Errorf("sequence %d has no id", si)
		}
		for di := range seq.Detections {
			det := &seq.Detections[di]
			if det.ID == "" {
				return nil, fmt.Errorf("sequence %s: detection %d has no id", seq.ID, di)
			}
			if _, dup := m.index[det.ID]; dup {
				return nil, fmt.Errorf("duplicate detection id %s", det.ID)
			}
			m.index[det.ID] = Location{Sequence: si, Detection: di}
			det.Predictions = validBoxes(det.Predictions)
		}
	}
	return &m, nil
}

func validBoxes(in []geometry.NormalizedBox) []geometry.NormalizedBox {
	out := in[:0:0]
	for _, b := range in {
		if b.Valid() {
			out = append(out, b)
		}
	}
	return out
}

// Locate returns where a detection lives.
func (m *Manifest) Locate(id string) (Location, bool) {
	loc, ok := m.index[id]
	return loc, ok
}

// Detection returns a detection by id.
func (m *Manifest) Detection(id string) (Detection, error) {
	loc, ok := m.index[id]
	if !ok {
		return Detection{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return m.Sequences[loc.Sequence].Detections[loc.Detection], nil
}

// At returns the detection at a location.
func (m *Manifest) At(loc Location) (Detection, bool) {
	if loc.Sequence < 0 || loc.Sequence >= len(m.Sequences) {
		return Detection{}, false
	}
	dets := m.Sequences[loc.Sequence].Detections
	if loc.Detection < 0 || loc.Detection >= len(dets) {
		return Detection{}, false
	}
	return dets[loc.Detection], true
}

// ImagePath resolves a detection's image relative to the dataset root.
func (m *Manifest) ImagePath(id string) (string, error) {
	det, err := m.Detection(id)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(det.Image) {
		return det.Image, nil
	}
	return filepath.Join(m.Root, det.Image), nil
}

// Predictions implements the prediction source for the review workspace.
func (m *Manifest) Predictions(_ context.Context, id string) ([]geometry.NormalizedBox, error) {
	det, err := m.Detection(id)
	if err != nil {
		return nil, err
	}
	return append([]geometry.NormalizedBox(nil), det.Predictions...), nil
}

// DetectionCount returns the number of detections across all sequences.
func (m *Manifest) DetectionCount() int {
	return len(m.index)
}
