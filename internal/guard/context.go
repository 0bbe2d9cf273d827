// Package guard tracks the sign-in state of one browser client and decides
// what each client route shows for that state.
package guard

import (
	"context"
	"sync"
	"time"

	"resumegenius/internal/errors"
	"resumegenius/internal/session"
	"resumegenius/internal/users"
)

// Status is the state of an AuthContext.
type Status int

const (
	StatusInitializing Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// AuthState is the view of an AuthContext handed to the UI layer.
type AuthState struct {
	User            *users.PublicUser `json:"user"`
	IsAuthenticated bool              `json:"isAuthenticated"`
	IsLoading       bool              `json:"isLoading"`
}

// Authenticator is the part of the auth service an AuthContext drives.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (users.PublicUser, error)
	EmergencyBypass(ctx context.Context) (users.PublicUser, error)
}

// Sessions is the part of the session manager an AuthContext drives.
type Sessions interface {
	Save(ctx context.Context, sid string, user users.PublicUser, token string) error
	Restore(ctx context.Context, sid string) (*session.Session, error)
	Clear(ctx context.Context, sid string) error
}

// AuthContext is the sign-in state machine of one client, identified by its
// session id. It starts Initializing, leaves that state exactly once through
// Init, and then moves between Authenticated and Unauthenticated.
type AuthContext struct {
	sid      string
	auth     Authenticator
	sessions Sessions
	logger   *errors.Logger
	now      func() time.Time

	once    sync.Once
	initErr error

	mu       sync.RWMutex
	status   Status
	user     *users.PublicUser
	token    string
	restored bool
}

// NewAuthContext creates an AuthContext in the Initializing state.
func NewAuthContext(sid string, auth Authenticator, sessions Sessions, logger *errors.Logger) *AuthContext {
	return &AuthContext{
		sid:      sid,
		auth:     auth,
		sessions: sessions,
		logger:   logger.With("session_id", sid),
		now:      time.Now,
		status:   StatusInitializing,
	}
}

// SessionID returns the client's session id.
func (a *AuthContext) SessionID() string {
	return a.sid
}

// Init restores the persisted session. Only the first call does any work;
// later calls return the first call's result. A store failure leaves the
// context Unauthenticated.
func (a *AuthContext) Init(ctx context.Context) error {
	a.once.Do(func() {
		s, err := a.sessions.Restore(ctx, a.sid)
		if err != nil {
			a.logger.LogError(err, "Failed to restore session")
			a.initErr = err
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		if err == nil && s != nil {
			u := s.User
			a.user, a.token, a.status, a.restored = &u, s.Token, StatusAuthenticated, true
			return
		}
		a.status = StatusUnauthenticated
	})
	return a.initErr
}

// markSignedOut completes Init without reading the store. Used for ids that
// were just minted and cannot have a persisted session.
func (a *AuthContext) markSignedOut() {
	a.once.Do(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.status = StatusUnauthenticated
	})
}

// Restored reports whether Init found a persisted session.
func (a *AuthContext) Restored() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.restored
}

// Login checks the credentials and persists the session. Errors from the auth
// service are returned unchanged and leave the state untouched.
func (a *AuthContext) Login(ctx context.Context, email, password string) (users.PublicUser, error) {
	_ = a.Init(ctx)

	u, err := a.auth.Authenticate(ctx, email, password)
	if err != nil {
		return users.PublicUser{}, err
	}
	if err := a.signIn(ctx, u); err != nil {
		return users.PublicUser{}, err
	}
	a.logger.Info("User logged in", "user_id", u.ID)
	return u, nil
}

// EmergencyBypass signs in as the first admin without credentials. Failures
// are logged and returned, and nothing is written to the session store.
func (a *AuthContext) EmergencyBypass(ctx context.Context) (users.PublicUser, error) {
	_ = a.Init(ctx)

	u, err := a.auth.EmergencyBypass(ctx)
	if err != nil {
		a.logger.LogError(err, "Emergency authentication failed")
		return users.PublicUser{}, err
	}
	if err := a.signIn(ctx, u); err != nil {
		a.logger.LogError(err, "Emergency authentication failed")
		return users.PublicUser{}, err
	}
	a.logger.Warn("Emergency authentication granted", "user_id", u.ID)
	return u, nil
}

func (a *AuthContext) signIn(ctx context.Context, u users.PublicUser) error {
	token := session.NewToken(u, a.now())
	if err := a.sessions.Save(ctx, a.sid, u, token); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.user, a.token, a.status = &u, token, StatusAuthenticated
	return nil
}

// Logout clears the persisted session and moves to Unauthenticated.
func (a *AuthContext) Logout(ctx context.Context) error {
	_ = a.Init(ctx)

	if err := a.sessions.Clear(ctx, a.sid); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.user, a.token, a.status = nil, "", StatusUnauthenticated
	return nil
}

// Refresh replaces the cached user after an admin changed the record.
func (a *AuthContext) Refresh(ctx context.Context, u users.PublicUser) error {
	a.mu.RLock()
	token, status := a.token, a.status
	a.mu.RUnlock()
	if status != StatusAuthenticated {
		return nil
	}
	if err := a.sessions.Save(ctx, a.sid, u, token); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = &u
	return nil
}

// Status returns the current state.
func (a *AuthContext) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// State returns a snapshot of the current state.
func (a *AuthContext) State() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := AuthState{
		IsAuthenticated: a.status == StatusAuthenticated,
		IsLoading:       a.status == StatusInitializing,
	}
	if a.user != nil {
		u := *a.user
		st.User = &u
	}
	return st
}

// Token returns the opaque session token, empty when signed out.
func (a *AuthContext) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}
