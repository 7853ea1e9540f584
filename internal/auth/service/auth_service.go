package service

import (
	"context"
	"errors"

	commoncrypto "pinboard/internal/common/crypto"
	commonerrors "pinboard/internal/common/errors"
	"pinboard/internal/common/logger"
	"pinboard/internal/observability/metrics"
	"pinboard/internal/session"
	"pinboard/internal/storage"
)

// AuthService checks credentials against the store and turns successful
// logins into registry sessions.
type AuthService struct {
	store    *storage.Store
	registry *session.Registry
	hasher   commoncrypto.PasswordHasher
	tokens   commoncrypto.IDGenerator
	log      *logger.Logger
}

func NewAuthService(
	store *storage.Store,
	registry *session.Registry,
	hasher commoncrypto.PasswordHasher,
	tokens commoncrypto.IDGenerator,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		store:    store,
		registry: registry,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Token    string
	Identity session.Identity
}

// Login verifies the password with a constant-time hash comparison and
// issues a fresh opaque session token. Unknown user and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	user, err := s.store.UserByUsername(input.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_unknown_user",
			}).Warn("login failed: unknown user")
			metrics.LoginsFailed.Inc()
			return LoginResult{}, commonerrors.ErrInvalidCredentials
		}
		return LoginResult{}, commonerrors.ErrStoreFailure.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_bad_password",
		}).Warn("login failed: password mismatch")
		metrics.LoginsFailed.Inc()
		return LoginResult{}, commonerrors.ErrInvalidCredentials
	}

	token, err := s.tokens.NewID()
	if err != nil {
		return LoginResult{}, commonerrors.ErrStoreFailure.WithCause(err)
	}

	identity := session.Identity{
		UserID:   user.ID,
		Username: user.Username,
	}
	s.registry.Create(token, identity)

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_ok",
	}).Info("login succeeded")
	metrics.LoginsTotal.Inc()

	return LoginResult{Token: token, Identity: identity}, nil
}

// Logout destroys the session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) {
	s.registry.Destroy(token)
	s.log.WithFields(ctx, logger.Fields{
		"action": "logout",
	}).Debug("session destroyed")
}
