// Persistence for submitted annotations and sequence review labels
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/annotation"
)

var (
	// ErrNotFound is returned when nothing has been saved under an id yet.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned for ids that cannot be used as a key.
	ErrInvalidID = errors.New("invalid id")
)

// Annotation is the saved box list of one detection.
type Annotation struct {
	DetectionID string            `json:"detection_id"`
	Items       []annotation.Item `json:"boxes"`
	Revision    int64             `json:"revision"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// DetectionLabel is the review verdict for one detection of a sequence.
type DetectionLabel struct {
	Smoke          bool                           `json:"smoke"`
	FalsePositive  bool                           `json:"false_positive"`
	FalsePositives []annotation.FalsePositiveType `json:"false_positive_types,omitempty"`
}

// SequenceLabels holds the verdicts of every reviewed detection of a sequence.
type SequenceLabels struct {
	SequenceID string                    `json:"sequence_id"`
	Detections map[string]DetectionLabel `json:"detections"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// AnnotationStore loads and saves detection annotations.
type AnnotationStore interface {
	LoadAnnotation(ctx context.Context, detectionID string) (*Annotation, error)
	SaveAnnotation(ctx context.Context, detectionID string, items []annotation.Item) (*Annotation, error)
}

// LabelStore loads and saves sequence review labels.
type LabelStore interface {
	LoadLabels(ctx context.Context, sequenceID string) (*SequenceLabels, error)
	SaveLabels(ctx context.Context, labels SequenceLabels) error
}

// Store is a complete persistence backend.
type Store interface {
	AnnotationStore
	LabelStore
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisOptions
}

// Open creates the configured backend. The Redis backend is pinged before
// it is returned.
func Open(ctx context.Context, opts Options, logger *logrus.Logger) (Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Dir, logger)
	case BackendRedis:
		s := NewRedisStore(opts.Redis, logger)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Redis.Addr, err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\:`) {
		return fmt.Errorf("%q: %w", id, ErrInvalidID)
	}
	return nil
}

func copyItems(items []annotation.Item) []annotation.Item {
	out := make([]annotation.Item, len(items))
	copy(out, items)
	return out
}
