package guard

import (
	"context"
	"sync"
	"time"

	"resumegenius/internal/errors"
	"resumegenius/internal/session"
)

type entry struct {
	ac       *AuthContext
	lastSeen time.Time
}

// Registry holds the AuthContext of every issued session id. Only ids handed
// out by Issue, or found in the session store, are ever registered.
type Registry struct {
	auth     Authenticator
	sessions Sessions
	logger   *errors.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates an empty Registry.
func NewRegistry(auth Authenticator, sessions Sessions, logger *errors.Logger) *Registry {
	return &Registry{
		auth:     auth,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[string]*entry),
	}
}

// Resolve returns the AuthContext for sid. A registered sid is returned as
// is. An unregistered sid is registered only when the session store still
// holds a session for it, in which case restored is true. Anything else gets
// a signed-out context that is not registered, so anonymous traffic leaves
// no state behind.
func (r *Registry) Resolve(ctx context.Context, sid string) (ac *AuthContext, restored bool) {
	if sid == "" {
		return r.anonymous(), false
	}
	if known, ok := r.lookup(sid); ok {
		return known, false
	}

	candidate := NewAuthContext(sid, r.auth, r.sessions, r.logger)
	if err := candidate.Init(ctx); err != nil {
		r.logger.Warn("Session restore failed, continuing signed out", "error", err.Error())
	}
	if !candidate.Restored() {
		return r.anonymous(), false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sid]; ok {
		e.lastSeen = r.now()
		return e.ac, false
	}
	r.entries[sid] = &entry{ac: candidate, lastSeen: r.now()}
	return candidate, true
}

// Issue registers a signed-out context under a fresh session id.
func (r *Registry) Issue() *AuthContext {
	ac := NewAuthContext(session.NewID(), r.auth, r.sessions, r.logger)
	ac.markSignedOut()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[ac.SessionID()] = &entry{ac: ac, lastSeen: r.now()}
	return ac
}

// Registered reports whether sid has a live context.
func (r *Registry) Registered(sid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[sid]
	return ok
}

// Forget drops the AuthContext for sid. The persisted session is untouched.
func (r *Registry) Forget(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sid)
}

// EvictIdle drops every context not seen since before cutoff and returns
// their session ids.
func (r *Registry) EvictIdle(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for sid, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, sid)
			evicted = append(evicted, sid)
		}
	}
	return evicted
}

// Len returns the number of live contexts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) lookup(sid string) (*AuthContext, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.ac, true
}

func (r *Registry) anonymous() *AuthContext {
	ac := NewAuthContext(session.NewID(), r.auth, r.sessions, r.logger)
	ac.markSignedOut()
	return ac
}
