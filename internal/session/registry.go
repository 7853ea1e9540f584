package session

import (
	"context"
	"sync"
	"time"

	"pinboard/internal/common/clock"
	"pinboard/internal/common/constants"
	"pinboard/internal/common/logger"
	"pinboard/internal/observability/metrics"
	userdomain "pinboard/internal/user/domain"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   userdomain.ID
	Username string
}

type entry struct {
	identity  Identity
	expiresAt time.Time
}

// Registry maps opaque bearer tokens to identities for the lifetime of the
// process. Nothing is persisted; a restart invalidates every session.
type Registry struct {
	sessions sync.Map
	clock    clock.Clock
	ttl      time.Duration
	log      *logger.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewRegistry starts the expiry sweeper when ttl > 0. A zero ttl disables
// expiry entirely and sessions live until logout or process exit.
func NewRegistry(ctx context.Context, clk clock.Clock, ttl time.Duration, log *logger.Logger) *Registry {
	registryCtx, cancel := context.WithCancel(ctx)
	r := &Registry{
		clock:  clk,
		ttl:    ttl,
		log:    log,
		ctx:    registryCtx,
		cancel: cancel,
	}

	if ttl > 0 {
		go r.sweep()
	}

	return r
}

// Create stores the identity under the given fresh token.
func (r *Registry) Create(token string, identity Identity) {
	e := &entry{identity: identity}
	if r.ttl > 0 {
		e.expiresAt = r.clock.Now().Add(r.ttl)
	}
	r.sessions.Store(token, e)
	metrics.SessionsActive.Inc()
}

// Resolve is a pure lookup. Expired entries are treated as absent and
// dropped on the spot.
func (r *Registry) Resolve(token string) (Identity, bool) {
	v, ok := r.sessions.Load(token)
	if !ok {
		return Identity{}, false
	}

	e := v.(*entry)
	if !e.expiresAt.IsZero() && !r.clock.Now().Before(e.expiresAt) {
		r.sessions.Delete(token)
		metrics.SessionsActive.Dec()
		metrics.SessionsExpired.Inc()
		return Identity{}, false
	}

	return e.identity, true
}

// Destroy removes the entry. Removing an absent token is not an error.
func (r *Registry) Destroy(token string) {
	if _, ok := r.sessions.LoadAndDelete(token); ok {
		metrics.SessionsActive.Dec()
	}
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(constants.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			now := r.clock.Now()
			removed := 0
			r.sessions.Range(func(key, value interface{}) bool {
				e := value.(*entry)
				if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
					r.sessions.Delete(key)
					metrics.SessionsActive.Dec()
					metrics.SessionsExpired.Inc()
					removed++
				}
				return true
			})
			if removed > 0 {
				r.log.Debugf("session registry swept %d expired sessions", removed)
			}
		}
	}
}

func (r *Registry) Close() {
	r.cancel()
}
