package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	annotationdomain "pinboard/internal/annotation/domain"
	"pinboard/internal/common/clock"
	commoncrypto "pinboard/internal/common/crypto"
	"pinboard/internal/common/logger"
	userdomain "pinboard/internal/user/domain"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	store, err := Open(path, clock.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)), testLogger(t))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return store, path
}

func TestStore_Open_CreatesEmptyDocument(t *testing.T) {
	_, path := openTestStore(t)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read store file: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("store file is not valid json: %v", err)
	}
	if doc.Users == nil || len(doc.Users) != 0 {
		t.Errorf("expected empty users collection, got %v", doc.Users)
	}
	if doc.Annotations == nil || len(doc.Annotations) != 0 {
		t.Errorf("expected empty annotations collection, got %v", doc.Annotations)
	}
}

func TestStore_Open_RepairsMissingCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(`{"users": [{"id": "u1", "username": "admin", "password": "x", "createdAt": "2024-06-01T12:00:00Z"}]}`), 0o644); err != nil {
		t.Fatalf("failed to seed store file: %v", err)
	}

	store, err := Open(path, clock.NewRealClock(), testLogger(t))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	if got := store.AnnotationCount(); got != 0 {
		t.Errorf("expected 0 annotations after repair, got %d", got)
	}
	if _, err := store.UserByUsername("admin"); err != nil {
		t.Errorf("expected seeded user to survive repair: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read store file: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("repaired file is not valid json: %v", err)
	}
	if doc.Annotations == nil {
		t.Error("expected repaired file to contain annotations collection")
	}
}

func TestStore_Open_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(`{"users": [`), 0o644); err != nil {
		t.Fatalf("failed to seed store file: %v", err)
	}

	if _, err := Open(path, clock.NewRealClock(), testLogger(t)); err == nil {
		t.Fatal("expected open to fail on corrupt file")
	}
}

func TestStore_EnsureAdmin_Idempotent(t *testing.T) {
	store, path := openTestStore(t)
	hasher := &commoncrypto.BcryptHasher{}
	idGen := commoncrypto.NewUUIDGenerator()

	if err := store.EnsureAdmin("admin", "admin", hasher, idGen); err != nil {
		t.Fatalf("first EnsureAdmin failed: %v", err)
	}
	first, err := store.UserByUsername("admin")
	if err != nil {
		t.Fatalf("admin not found after bootstrap: %v", err)
	}

	if err := store.EnsureAdmin("admin", "admin", hasher, idGen); err != nil {
		t.Fatalf("second EnsureAdmin failed: %v", err)
	}
	second, err := store.UserByUsername("admin")
	if err != nil {
		t.Fatalf("admin not found after second bootstrap: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected bootstrap to be idempotent, ids differ: %s vs %s", first.ID, second.ID)
	}

	data, _ := os.ReadFile(path)
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("store file is not valid json: %v", err)
	}
	if len(doc.Users) != 1 {
		t.Errorf("expected exactly one user on disk, got %d", len(doc.Users))
	}

	if err := hasher.Compare(first.PasswordHash, "admin"); err != nil {
		t.Errorf("expected stored hash to verify against bootstrap password: %v", err)
	}
}

func TestStore_CreateUser_DuplicateUsername(t *testing.T) {
	store, _ := openTestStore(t)

	user := userdomain.User{ID: "u1", Username: "admin", PasswordHash: "x", CreatedAt: time.Now()}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	dup := userdomain.User{ID: "u2", Username: "admin", PasswordHash: "y", CreatedAt: time.Now()}
	if err := store.CreateUser(dup); !errors.Is(err, ErrUsernameAlreadyExists) {
		t.Errorf("expected ErrUsernameAlreadyExists, got %v", err)
	}
}

func TestStore_RoundTrip_PreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	log := testLogger(t)

	store, err := Open(path, clock.NewRealClock(), log)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := store.CreateUser(userdomain.User{ID: "u1", Username: "admin", PasswordHash: "x", CreatedAt: created}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	for i, id := range []string{"a1", "a2", "a3"} {
		annotation := annotationdomain.Annotation{
			ID:        annotationdomain.ID(id),
			Text:      "note",
			X:         float64(i),
			Y:         float64(i * 2),
			UserID:    "u1",
			CreatedAt: created,
		}
		if err := store.CreateAnnotation(annotation); err != nil {
			t.Fatalf("create annotation %s failed: %v", id, err)
		}
	}

	reopened, err := Open(path, clock.NewRealClock(), log)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}

	got := reopened.AnnotationsByUser("u1")
	if len(got) != 3 {
		t.Fatalf("expected 3 annotations after reload, got %d", len(got))
	}
	for i, id := range []string{"a1", "a2", "a3"} {
		if string(got[i].ID) != id {
			t.Errorf("expected annotation %d to be %s, got %s", i, id, got[i].ID)
		}
	}

	user, err := reopened.UserByUsername("admin")
	if err != nil {
		t.Fatalf("user lost on reload: %v", err)
	}
	if user.ID != "u1" || !user.CreatedAt.Equal(created) {
		t.Errorf("user changed on reload: %+v", user)
	}
}

func TestStore_DeleteAnnotation_UnknownID(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.CreateAnnotation(annotationdomain.Annotation{ID: "a1", Text: "note", UserID: "u1"}); err != nil {
		t.Fatalf("create annotation failed: %v", err)
	}

	if _, err := store.DeleteAnnotation("missing"); !errors.Is(err, ErrAnnotationNotFound) {
		t.Errorf("expected ErrAnnotationNotFound, got %v", err)
	}
	if got := store.AnnotationCount(); got != 1 {
		t.Errorf("expected collection unchanged, got %d annotations", got)
	}
}

func TestStore_DeleteAnnotation_RemovesAnyOwner(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.CreateAnnotation(annotationdomain.Annotation{ID: "a1", Text: "note", UserID: "u1"}); err != nil {
		t.Fatalf("create annotation failed: %v", err)
	}

	removed, err := store.DeleteAnnotation("a1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed.UserID != "u1" {
		t.Errorf("expected removed record to keep its owner, got %s", removed.UserID)
	}
	if got := store.AnnotationCount(); got != 0 {
		t.Errorf("expected empty collection, got %d annotations", got)
	}
}
