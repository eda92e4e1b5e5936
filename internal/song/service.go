package song

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/melodia/service/internal/metrics"
	"github.com/melodia/service/internal/storage"
)

const (
	audioNamespace = storage.NamespaceAudio
	imageNamespace = storage.NamespaceImage

	defaultListLimit = 50
	maxListLimit     = 100
)

// Metrics receives publish outcomes. outcome is "published" or the failing Stage.
type Metrics interface {
	ObservePublish(outcome string, durationSeconds float64)
	IncCompensation(namespace, outcome string)
}

// Service contains the publish flow and song queries.
type Service struct {
	store       Store
	objects     storage.Storage
	newID       func() string
	metrics     Metrics
	logger      *log.Logger
	stepTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces NewAttemptID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger used for compensation diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithStepTimeout bounds every individual store call. Zero means no bound.
func WithStepTimeout(d time.Duration) Option {
	return func(s *Service) { s.stepTimeout = d }
}

// NewService creates a new song Service.
func NewService(store Store, objects storage.Storage, opts ...Option) *Service {
	s := &Service{
		store:   store,
		objects: objects,
		newID:   NewAttemptID,
		metrics: metrics.Noop{},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish uploads the audio file, then the cover image, then inserts the song record.
// Either all three land or none do: when a later step fails, the objects written by
// earlier steps are deleted (newest first) before the error is returned. A failed
// delete is logged and otherwise ignored; the returned *PublishError always names the
// step that failed first.
//
// Once the request is valid the sequence runs to completion regardless of ctx
// cancellation, so a caller never observes a half-written attempt.
func (s *Service) Publish(ctx context.Context, req PublishRequest) (*Song, error) {
	start := time.Now()
	song, err := s.publish(ctx, req)

	outcome := "published"
	if stage, ok := StageOf(err); ok {
		outcome = string(stage)
	}
	s.metrics.ObservePublish(outcome, time.Since(start).Seconds())

	return song, err
}

func (s *Service) publish(ctx context.Context, req PublishRequest) (*Song, error) {
	req = req.normalized()
	if err := req.validate(); err != nil {
		return nil, &PublishError{Stage: StageInvalidRequest, Err: err}
	}

	ctx = context.WithoutCancel(ctx)
	a := newAttempt(s.newID())
	audioKey := objectKey("audio", req.Title, a.id, req.Audio.Filename)
	imageKey := objectKey("image", req.Title, a.id, req.Image.Filename)

	if err := s.put(ctx, audioNamespace, audioKey, req.Audio); err != nil {
		return nil, a.fail(StageAudioWrite, err)
	}
	a.audioWritten(audioKey)

	if err := s.put(ctx, imageNamespace, imageKey, req.Image); err != nil {
		s.compensate(ctx, a)
		return nil, a.fail(StageImageWrite, err)
	}
	a.imageWritten(imageKey)

	created, err := s.insert(ctx, &Song{
		OwnerID:   req.OwnerID,
		AttemptID: a.id,
		Title:     req.Title,
		Author:    req.Author,
		AudioKey:  audioKey,
		ImageKey:  imageKey,
	})
	if err != nil {
		s.compensate(ctx, a)
		return nil, a.fail(StageRecordInsert, err)
	}
	a.recordInserted()

	s.decorate(created)
	return created, nil
}

func (s *Service) put(ctx context.Context, namespace, key string, b Blob) error {
	ctx, cancel := s.step(ctx)
	defer cancel()

	_, err := s.objects.Put(ctx, namespace, key, storage.Object{
		Body:        bytes.NewReader(b.Data),
		Size:        int64(len(b.Data)),
		ContentType: b.ContentType,
	}, storage.PutOptions{Overwrite: false})
	return err
}

func (s *Service) insert(ctx context.Context, song *Song) (*Song, error) {
	ctx, cancel := s.step(ctx)
	defer cancel()
	return s.store.Insert(ctx, song)
}

// compensate deletes every object the attempt wrote, newest first. Each delete is
// attempted even if an earlier one failed.
func (s *Service) compensate(ctx context.Context, a *attempt) {
	a.state = stateCompensating
	for _, obj := range a.written() {
		if err := s.remove(ctx, obj); err != nil {
			s.metrics.IncCompensation(obj.namespace, "failed")
			s.logger.Printf("[PUBLISH] ERROR compensation failed attempt=%s namespace=%s key=%s err=%v (orphaned object)",
				a.id, obj.namespace, obj.key, err)
			continue
		}
		s.metrics.IncCompensation(obj.namespace, "deleted")
	}
}

func (s *Service) remove(ctx context.Context, obj writtenObject) error {
	ctx, cancel := s.step(ctx)
	defer cancel()
	return s.objects.Delete(ctx, obj.namespace, obj.key)
}

func (s *Service) step(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.stepTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.stepTimeout)
}

// GetByID returns a published song.
func (s *Service) GetByID(ctx context.Context, id string) (*Song, error) {
	song, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(song)
	return song, nil
}

// ListByOwner returns the owner's songs, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Song, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("list songs: %w", ErrInvalidRequest)
	}
	songs, err := s.store.ListByOwner(ctx, ownerID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	for i := range songs {
		s.decorate(&songs[i])
	}
	return songs, nil
}

// ListRecent returns the latest published songs.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Song, error) {
	songs, err := s.store.ListRecent(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	for i := range songs {
		s.decorate(&songs[i])
	}
	return songs, nil
}

// IsNotFound returns true when the error indicates a song was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (s *Service) decorate(song *Song) {
	song.AudioURL = s.objects.PublicURL(audioNamespace, song.AudioKey)
	song.ImageURL = s.objects.PublicURL(imageNamespace, song.ImageKey)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
