package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"pinboard/internal/common/clock"
	"pinboard/internal/common/constants"
)

func protectedHandler(t *testing.T, called *bool, want Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		identity, ok := FromContext(r.Context())
		if !ok {
			t.Error("expected identity in request context")
		}
		if identity != want {
			t.Errorf("expected %+v, got %+v", want, identity)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_MissingCookie(t *testing.T) {
	registry := NewRegistry(context.Background(), clock.NewRealClock(), 0, testLogger(t))
	defer registry.Close()

	called := false
	h := Middleware(registry, testLogger(t))(protectedHandler(t, &called, Identity{}))

	req := httptest.NewRequest(http.MethodGet, "/api/annotations", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if called {
		t.Error("expected handler not to run")
	}
}

func TestMiddleware_UnknownToken(t *testing.T) {
	registry := NewRegistry(context.Background(), clock.NewRealClock(), 0, testLogger(t))
	defer registry.Close()

	called := false
	h := Middleware(registry, testLogger(t))(protectedHandler(t, &called, Identity{}))

	req := httptest.NewRequest(http.MethodGet, "/api/annotations", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "bogus"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if called {
		t.Error("expected handler not to run")
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	registry := NewRegistry(context.Background(), clock.NewRealClock(), 0, testLogger(t))
	defer registry.Close()

	identity := Identity{UserID: "u1", Username: "admin"}
	registry.Create("tok-1", identity)

	called := false
	h := Middleware(registry, testLogger(t))(protectedHandler(t, &called, identity))

	req := httptest.NewRequest(http.MethodGet, "/api/annotations", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if !called {
		t.Error("expected handler to run")
	}
}
