package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"smoke-annotator/internal/annotation"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps annotations and labels as JSON strings. Keys are
// annotation:<detection id>, labels:<sequence id> and the revision counter
// annotation:rev:<detection id>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
	now    func() time.Time
}

// NewRedisStore creates a client; it does not connect until first use.
func NewRedisStore(opts RedisOptions, logger *logrus.Logger) *RedisStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{client: client, ttl: opts.TTL, logger: logger, now: time.Now}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func annotationKey(id string) string { return "annotation:" + id }
func revisionKey(id string) string   { return "annotation:rev:" + id }
func labelsKey(id string) string     { return "labels:" + id }

// LoadAnnotation returns ErrNotFound on a cache miss.
func (s *RedisStore) LoadAnnotation(ctx context.Context, detectionID string) (*Annotation, error) {
	if err := validateID(detectionID); err != nil {
		return nil, err
	}
	var a Annotation
	if err := s.getJSON(ctx, annotationKey(detectionID), &a); err != nil {
		return nil, fmt.Errorf("annotation %s: %w", detectionID, err)
	}
	return &a, nil
}

// SaveAnnotation stores the boxes under a new revision.
func (s *RedisStore) SaveAnnotation(ctx context.Context, detectionID string, items []annotation.Item) (*Annotation, error) {
	if err := validateID(detectionID); err != nil {
		return nil, err
	}
	rev, err := s.client.Incr(ctx, revisionKey(detectionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("annotation %s: failed to bump revision: %w", detectionID, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, revisionKey(detectionID), s.ttl).Err(); err != nil {
			return nil, fmt.Errorf("annotation %s: failed to expire revision: %w", detectionID, err)
		}
	}

	a := &Annotation{
		DetectionID: detectionID,
		Items:       copyItems(items),
		Revision:    rev,
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.setJSON(ctx, annotationKey(detectionID), a); err != nil {
		return nil, fmt.Errorf("annotation %s: %w", detectionID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"detection_id": detectionID,
		"boxes":        len(items),
		"revision":     rev,
	}).Info("Annotation saved")
	return a, nil
}

// LoadLabels returns ErrNotFound on a cache miss.
func (s *RedisStore) LoadLabels(ctx context.Context, sequenceID string) (*SequenceLabels, error) {
	if err := validateID(sequenceID); err != nil {
		return nil, err
	}
	var l SequenceLabels
	if err := s.getJSON(ctx, labelsKey(sequenceID), &l); err != nil {
		return nil, fmt.Errorf("labels %s: %w", sequenceID, err)
	}
	return &l, nil
}

// SaveLabels replaces the labels of a sequence.
func (s *RedisStore) SaveLabels(ctx context.Context, labels SequenceLabels) error {
	if err := validateID(labels.SequenceID); err != nil {
		return err
	}
	labels.UpdatedAt = s.now().UTC()
	if err := s.setJSON(ctx, labelsKey(labels.SequenceID), labels); err != nil {
		return fmt.Errorf("labels %s: %w", labels.SequenceID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"sequence_id": labels.SequenceID,
		"detections":  len(labels.Detections),
	}).Info("Sequence labels saved")
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Corrupt store document")
		return err
	}
	return nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}
