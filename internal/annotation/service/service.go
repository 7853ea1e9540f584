package service

import (
	"context"
	"errors"

	annotationdomain "pinboard/internal/annotation/domain"
	"pinboard/internal/annotation/events"
	"pinboard/internal/common/clock"
	commoncrypto "pinboard/internal/common/crypto"
	commonerrors "pinboard/internal/common/errors"
	"pinboard/internal/common/logger"
	"pinboard/internal/observability/metrics"
	"pinboard/internal/session"
	"pinboard/internal/storage"
	userdomain "pinboard/internal/user/domain"
)

// EventPublisher pushes change events to live feed connections. A nil
// publisher disables the feed.
type EventPublisher interface {
	Publish(userID userdomain.ID, event events.Event)
}

type Service struct {
	store     *storage.Store
	ids       commoncrypto.IDGenerator
	clock     clock.Clock
	publisher EventPublisher
	log       *logger.Logger
}

func NewService(
	store *storage.Store,
	ids commoncrypto.IDGenerator,
	clk clock.Clock,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		store:     store,
		ids:       ids,
		clock:     clk,
		publisher: publisher,
		log:       log,
	}
}

// List returns the caller's annotations only, in document order.
func (s *Service) List(ctx context.Context, caller session.Identity) []annotationdomain.Annotation {
	return s.store.AnnotationsByUser(caller.UserID)
}

type CreateInput struct {
	Text string
	X    float64
	Y    float64
}

// Create stores a new annotation owned by the caller. Text longer than the
// cap is truncated, not rejected.
func (s *Service) Create(ctx context.Context, caller session.Identity, input CreateInput) (annotationdomain.Annotation, error) {
	if input.Text == "" {
		return annotationdomain.Annotation{}, commonerrors.ErrEmptyText
	}

	text := input.Text
	if runes := []rune(text); len(runes) > annotationdomain.MaxTextLength {
		text = string(runes[:annotationdomain.MaxTextLength])
	}

	id, err := s.ids.NewID()
	if err != nil {
		return annotationdomain.Annotation{}, commonerrors.ErrStoreFailure.WithCause(err)
	}

	annotation := annotationdomain.Annotation{
		ID:        annotationdomain.ID(id),
		Text:      text,
		X:         input.X,
		Y:         input.Y,
		UserID:    caller.UserID,
		CreatedAt: s.clock.Now(),
	}

	if err := s.store.CreateAnnotation(annotation); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(caller.UserID),
			"action":  "annotation_create_flush_failed",
		}).Errorf("annotation create failed: %v", err)
		return annotationdomain.Annotation{}, commonerrors.ErrStoreFailure.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"annotation_id": id,
		"user_id":       string(caller.UserID),
		"action":        "annotation_created",
	}).Info("annotation created")
	metrics.AnnotationsCreated.Inc()

	if s.publisher != nil {
		s.publisher.Publish(caller.UserID, events.Event{
			Type:       events.TypeAnnotationCreated,
			Annotation: &annotation,
		})
	}

	return annotation, nil
}

// Delete removes the annotation with the given id. Ownership of the target
// is deliberately not checked against the caller; cross-user deletes are
// counted so they stay visible.
func (s *Service) Delete(ctx context.Context, caller session.Identity, id annotationdomain.ID) error {
	removed, err := s.store.DeleteAnnotation(id)
	if err != nil {
		if errors.Is(err, storage.ErrAnnotationNotFound) {
			return commonerrors.ErrAnnotationNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"annotation_id": string(id),
			"action":        "annotation_delete_flush_failed",
		}).Errorf("annotation delete failed: %v", err)
		return commonerrors.ErrStoreFailure.WithCause(err)
	}

	if removed.UserID != caller.UserID {
		s.log.WithFields(ctx, logger.Fields{
			"annotation_id": string(id),
			"owner_id":      string(removed.UserID),
			"caller_id":     string(caller.UserID),
			"action":        "annotation_cross_user_delete",
		}).Warn("annotation deleted by non-owner")
		metrics.AnnotationsCrossUserDeletes.Inc()
	}

	s.log.WithFields(ctx, logger.Fields{
		"annotation_id": string(id),
		"action":        "annotation_deleted",
	}).Info("annotation deleted")
	metrics.AnnotationsDeleted.Inc()

	if s.publisher != nil {
		s.publisher.Publish(removed.UserID, events.Event{
			Type: events.TypeAnnotationDeleted,
			ID:   removed.ID,
		})
	}

	return nil
}
