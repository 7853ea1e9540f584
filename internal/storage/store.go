package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	annotationdomain "pinboard/internal/annotation/domain"
	"pinboard/internal/common/clock"
	commoncrypto "pinboard/internal/common/crypto"
	"pinboard/internal/common/logger"
	"pinboard/internal/observability/metrics"
	userdomain "pinboard/internal/user/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrAnnotationNotFound    = errors.New("annotation not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

// Store is the single source of truth for users and annotations. The whole
// document lives in memory behind one mutex; the file on disk is a
// durability mirror rewritten in full after every mutation.
type Store struct {
	mu    sync.Mutex
	path  string
	doc   Document
	clock clock.Clock
	log   *logger.Logger
}

// Open ensures the containing directory and file exist, reads the document
// and repairs missing collections. Any failure here is terminal for the
// caller; there is no recovery path for an unreadable store.
func Open(path string, clk clock.Clock, log *logger.Logger) (*Store, error) {
	s := &Store{
		path:  path,
		clock: clk,
		log:   log,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.doc = emptyDocument()
		if err := s.flushLocked(); err != nil {
			return nil, fmt.Errorf("failed to create store file: %w", err)
		}
		log.WithFields(nil, logger.Fields{
			"path":   path,
			"action": "store_created",
		}).Info("store file created")
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	default:
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("failed to parse store file: %w", err)
		}
		if s.doc.repair() {
			log.WithFields(nil, logger.Fields{
				"path":   path,
				"action": "store_repaired",
			}).Warn("store file missing collections, repaired")
			if err := s.flushLocked(); err != nil {
				return nil, fmt.Errorf("failed to persist repaired store: %w", err)
			}
		}
	}

	s.observeSizes()

	log.WithFields(nil, logger.Fields{
		"path":        path,
		"users":       len(s.doc.Users),
		"annotations": len(s.doc.Annotations),
		"action":      "store_opened",
	}).Info("store opened")

	return s, nil
}

// EnsureAdmin creates the bootstrap account when no user with the given
// username exists. Idempotent across restarts.
func (s *Store) EnsureAdmin(
	username, password string,
	hasher commoncrypto.PasswordHasher,
	idGen commoncrypto.IDGenerator,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.doc.Users {
		if u.Username == username {
			return nil
		}
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	id, err := idGen.NewID()
	if err != nil {
		return fmt.Errorf("failed to generate bootstrap user id: %w", err)
	}

	s.doc.Users = append(s.doc.Users, userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	})

	if err := s.flushLocked(); err != nil {
		return fmt.Errorf("failed to persist bootstrap user: %w", err)
	}

	s.log.WithFields(nil, logger.Fields{
		"username": username,
		"action":   "bootstrap_admin_created",
	}).Info("bootstrap admin account created")

	return nil
}

func (s *Store) UserByUsername(username string) (userdomain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.doc.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return userdomain.User{}, ErrUserNotFound
}

func (s *Store) CreateUser(user userdomain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.doc.Users {
		if u.Username == user.Username {
			return ErrUsernameAlreadyExists
		}
	}

	s.doc.Users = append(s.doc.Users, user)
	return s.flushLocked()
}

// AnnotationsByUser returns a copy of the caller-owned records, preserving
// document order.
func (s *Store) AnnotationsByUser(userID userdomain.ID) []annotationdomain.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]annotationdomain.Annotation, 0)
	for _, a := range s.doc.Annotations {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) AnnotationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Annotations)
}

// CreateAnnotation appends the record and flushes. The in-memory append is
// not rolled back on a flush failure; memory and disk stay inconsistent
// until the next successful flush.
func (s *Store) CreateAnnotation(a annotationdomain.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Annotations = append(s.doc.Annotations, a)
	return s.flushLocked()
}

// DeleteAnnotation removes the record with the given id regardless of owner
// and returns it.
func (s *Store) DeleteAnnotation(id annotationdomain.ID) (annotationdomain.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.doc.Annotations {
		if a.ID == id {
			s.doc.Annotations = append(s.doc.Annotations[:i], s.doc.Annotations[i+1:]...)
			if err := s.flushLocked(); err != nil {
				return annotationdomain.Annotation{}, err
			}
			return a, nil
		}
	}
	return annotationdomain.Annotation{}, ErrAnnotationNotFound
}

// Flush forces a write of the current document, for shutdown hooks.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// flushLocked serializes the whole document pretty-printed and renames a
// temp file over the store path so a crash mid-write never leaves a torn
// document behind. Callers must hold s.mu.
func (s *Store) flushLocked() error {
	timer := s.clock.Now()

	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		metrics.StoreFlushErrors.Inc()
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".db-*.json")
	if err != nil {
		metrics.StoreFlushErrors.Inc()
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		metrics.StoreFlushErrors.Inc()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		metrics.StoreFlushErrors.Inc()
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		metrics.StoreFlushErrors.Inc()
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	metrics.StoreFlushesTotal.Inc()
	metrics.StoreFlushDurationSeconds.Observe(s.clock.Since(timer).Seconds())
	s.observeSizes()

	return nil
}

func (s *Store) observeSizes() {
	metrics.StoreDocumentUsers.Set(float64(len(s.doc.Users)))
	metrics.StoreDocumentAnnotations.Set(float64(len(s.doc.Annotations)))
}
