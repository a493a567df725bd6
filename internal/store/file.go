package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/annotation"
)

// FileStore keeps one JSON document per detection and per sequence under a
// directory.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	logger *logrus.Logger
	now    func() time.Time
}

// NewFileStore creates the annotations and labels directories under dir.
func NewFileStore(dir string, logger *logrus.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	for _, sub := range []string{"annotations", "labels"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", sub, err)
		}
	}
	return &FileStore{dir: dir, logger: logger, now: time.Now}, nil
}

func (s *FileStore) annotationPath(id string) string {
	return filepath.Join(s.dir, "annotations", id+".json")
}

func (s *FileStore) labelsPath(id string) string {
	return filepath.Join(s.dir, "labels", id+".json")
}

// LoadAnnotation returns ErrNotFound when the detection was never saved.
func (s *FileStore) LoadAnnotation(ctx context.Context, detectionID string) (*Annotation, error) {
	if err := validateID(detectionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var a Annotation
	if err := s.readJSON(ctx, s.annotationPath(detectionID), &a); err != nil {
		return nil, fmt.Errorf("annotation %s: %w", detectionID, err)
	}
	return &a, nil
}

// SaveAnnotation replaces the saved boxes and bumps the revision.
func (s *FileStore) SaveAnnotation(ctx context.Context, detectionID string, items []annotation.Item) (*Annotation, error) {
	if err := validateID(detectionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.annotationPath(detectionID)
	var prev Annotation
	if err := s.readJSON(ctx, path, &prev); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("annotation %s: %w", detectionID, err)
	}

	a := &Annotation{
		DetectionID: detectionID,
		Items:       copyItems(items),
		Revision:    prev.Revision + 1,
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.writeJSON(ctx, path, a); err != nil {
		return nil, fmt.Errorf("annotation %s: %w", detectionID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"detection_id": detectionID,
		"boxes":        len(items),
		"revision":     a.Revision,
	}).Info("Annotation saved")
	return a, nil
}

// LoadLabels returns ErrNotFound when the sequence was never saved.
func (s *FileStore) LoadLabels(ctx context.Context, sequenceID string) (*SequenceLabels, error) {
	if err := validateID(sequenceID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var l SequenceLabels
	if err := s.readJSON(ctx, s.labelsPath(sequenceID), &l); err != nil {
		return nil, fmt.Errorf("labels %s: %w", sequenceID, err)
	}
	return &l, nil
}

// SaveLabels replaces the saved labels of a sequence.
func (s *FileStore) SaveLabels(ctx context.Context, labels SequenceLabels) error {
	if err := validateID(labels.SequenceID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	labels.UpdatedAt = s.now().UTC()
	if err := s.writeJSON(ctx, s.labelsPath(labels.SequenceID), labels); err != nil {
		return fmt.Errorf("labels %s: %w", labels.SequenceID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"sequence_id": labels.SequenceID,
		"detections":  len(labels.Detections),
	}).Info("Sequence labels saved")
	return nil
}

// Close is a no-op for files.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) readJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.WithError(err).WithField("path", path).Error("Corrupt store document")
		return err
	}
	return nil
}

// writeJSON replaces path atomically through a temporary file in the same
// directory.
func (s *FileStore) writeJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
