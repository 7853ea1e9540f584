package session

import (
	"context"
	"net/http"

	"pinboard/internal/common/constants"
	commonerrors "pinboard/internal/common/errors"
	commonhttp "pinboard/internal/common/http"
	"pinboard/internal/common/logger"
)

type contextKey string

const identityKey contextKey = "session_identity"

// Middleware is the authentication gate for protected routes: it reads the
// session cookie, resolves it against the registry and attaches the identity
// to the request context. Anything else is a 401 and the request stops here.
func Middleware(registry *Registry, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				log.Warnf("auth failed path=%s: missing session cookie", r.URL.Path)
				commonhttp.HandleError(w, r, commonerrors.ErrUnauthorized, log)
				return
			}

			identity, ok := registry.Resolve(cookie.Value)
			if !ok {
				log.Warnf("auth failed path=%s: unknown session token", r.URL.Path)
				commonhttp.HandleError(w, r, commonerrors.ErrUnauthorized, log)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
