package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	annotationdomain "pinboard/internal/annotation/domain"
	"pinboard/internal/annotation/events"
	"pinboard/internal/common/clock"
	commoncrypto "pinboard/internal/common/crypto"
	commonerrors "pinboard/internal/common/errors"
	"pinboard/internal/common/logger"
	"pinboard/internal/session"
	"pinboard/internal/storage"
	userdomain "pinboard/internal/user/domain"
)

type recordingPublisher struct {
	published []events.Event
	owners    []userdomain.ID
}

func (p *recordingPublisher) Publish(userID userdomain.ID, event events.Event) {
	p.owners = append(p.owners, userID)
	p.published = append(p.published, event)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func setupService(t *testing.T) (*Service, *storage.Store, *recordingPublisher) {
	t.Helper()
	log := testLogger(t)

	store, err := storage.Open(filepath.Join(t.TempDir(), "db.json"), clock.NewRealClock(), log)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	publisher := &recordingPublisher{}
	svc := NewService(store, commoncrypto.NewUUIDGenerator(), clock.NewRealClock(), publisher, log)
	return svc, store, publisher
}

func TestCreate_EmptyText(t *testing.T) {
	svc, store, _ := setupService(t)
	caller := session.Identity{UserID: "user-1", Username: "alice"}

	_, err := svc.Create(context.Background(), caller, CreateInput{Text: "", X: 1, Y: 2})
	if !errors.Is(err, commonerrors.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if store.AnnotationCount() != 0 {
		t.Errorf("expected no annotations stored, got %d", store.AnnotationCount())
	}
}

func TestCreate_TruncatesMultibyteText(t *testing.T) {
	svc, _, _ := setupService(t)
	caller := session.Identity{UserID: "user-1", Username: "alice"}

	text := strings.Repeat("я", annotationdomain.MaxTextLength+10)
	created, err := svc.Create(context.Background(), caller, CreateInput{Text: text, X: 0, Y: 0})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if got := len([]rune(created.Text)); got != annotationdomain.MaxTextLength {
		t.Errorf("expected %d runes, got %d", annotationdomain.MaxTextLength, got)
	}
}

func TestCreate_PublishesToOwner(t *testing.T) {
	svc, _, publisher := setupService(t)
	caller := session.Identity{UserID: "user-1", Username: "alice"}

	created, err := svc.Create(context.Background(), caller, CreateInput{Text: "hello", X: 1, Y: 2})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.published))
	}
	event := publisher.published[0]
	if event.Type != events.TypeAnnotationCreated {
		t.Errorf("expected created event, got %s", event.Type)
	}
	if event.Annotation == nil || event.Annotation.ID != created.ID {
		t.Errorf("expected event for %s, got %+v", created.ID, event.Annotation)
	}
	if publisher.owners[0] != caller.UserID {
		t.Errorf("expected event routed to %s, got %s", caller.UserID, publisher.owners[0])
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := setupService(t)
	caller := session.Identity{UserID: "user-1", Username: "alice"}

	err := svc.Delete(context.Background(), caller, "missing")
	if !errors.Is(err, commonerrors.ErrAnnotationNotFound) {
		t.Errorf("expected ErrAnnotationNotFound, got %v", err)
	}
}

func TestDelete_NotifiesOwnerNotCaller(t *testing.T) {
	svc, _, publisher := setupService(t)
	owner := session.Identity{UserID: "user-1", Username: "alice"}
	caller := session.Identity{UserID: "user-2", Username: "bob"}

	created, err := svc.Create(context.Background(), owner, CreateInput{Text: "hello", X: 1, Y: 2})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), caller, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	last := publisher.published[len(publisher.published)-1]
	if last.Type != events.TypeAnnotationDeleted {
		t.Errorf("expected deleted event, got %s", last.Type)
	}
	if last.ID != created.ID {
		t.Errorf("expected event id %s, got %s", created.ID, last.ID)
	}
	if got := publisher.owners[len(publisher.owners)-1]; got != owner.UserID {
		t.Errorf("expected delete event routed to owner %s, got %s", owner.UserID, got)
	}
}

func TestService_NilPublisher(t *testing.T) {
	log := testLogger(t)
	store, err := storage.Open(filepath.Join(t.TempDir(), "db.json"), clock.NewRealClock(), log)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	svc := NewService(store, commoncrypto.NewUUIDGenerator(), clock.NewRealClock(), nil, log)
	caller := session.Identity{UserID: "user-1", Username: "alice"}

	created, err := svc.Create(context.Background(), caller, CreateInput{Text: "hello", X: 1, Y: 2})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), caller, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}
