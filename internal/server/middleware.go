package server

import (
	"context"
	"net/http"

	"resumegenius/internal/errors"
	"resumegenius/internal/guard"
	"resumegenius/internal/users"
)

type ctxKey int

const (
	authContextKey ctxKey = iota
	userKey
)

// sessionMiddleware resolves the session cookie to an AuthContext. Only ids
// this server issued, or that the session store still holds, are honoured.
// Requests without one get a transient signed-out context and no cookie; a
// cookie naming an unknown id is expired.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			sid = c.Value
		}

		ac, restored := s.registry.Resolve(r.Context(), sid)
		if restored {
			s.metrics.RecordSessionRestored(r.Context())
		}
		if sid != "" && ac.SessionID() != sid {
			s.expireSessionCookie(w)
		}

		ctx := context.WithValue(r.Context(), authContextKey, ac)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(s.cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) expireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// endSession signs ac out and drops everything held for its session id.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request, ac *guard.AuthContext) error {
	err := ac.Logout(r.Context())
	s.registry.Forget(ac.SessionID())
	s.wizards.Reset(ac.SessionID())
	s.expireSessionCookie(w)
	return err
}

// startSession moves the client from prev to next, a context freshly issued
// for a successful sign-in, and points the cookie at it. A wizard run follows
// only when the same account signs in again.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, prev, next *guard.AuthContext) {
	prevUser := prev.State().User
	if prevUser != nil {
		if err := prev.Logout(r.Context()); err != nil {
			s.logger.LogError(err, "Failed to clear replaced session")
		}
	}
	if nextUser := next.State().User; prevUser != nil && nextUser != nil && prevUser.ID == nextUser.ID {
		s.wizards.Move(prev.SessionID(), next.SessionID())
	} else {
		s.wizards.Reset(prev.SessionID())
	}
	s.registry.Forget(prev.SessionID())
	s.setSessionCookie(w, next.SessionID())
}

func authContextFrom(ctx context.Context) *guard.AuthContext {
	ac, _ := ctx.Value(authContextKey).(*guard.AuthContext)
	return ac
}

func userFrom(ctx context.Context) users.PublicUser {
	u, _ := ctx.Value(userKey).(users.PublicUser)
	return u
}

// verifySession re-reads the signed-in account from the store. A session
// whose account is gone or no longer approved is ended, and a changed
// account replaces the session copy. It returns nil when the client is not
// signed in once this is done.
func (s *Server) verifySession(w http.ResponseWriter, r *http.Request, ac *guard.AuthContext) (*users.PublicUser, error) {
	state := ac.State()
	if !state.IsAuthenticated || state.User == nil {
		return nil, nil
	}

	u, err := s.auth.GetUser(r.Context(), state.User.ID)
	if errors.Is(err, errors.ErrNotFound) || (err == nil && !u.IsApproved) {
		s.logger.Warn("Session account is gone or unapproved, signing out", "user_id", state.User.ID)
		if err := s.endSession(w, r, ac); err != nil {
			s.logger.LogError(err, "Failed to clear session")
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !sameAccount(u, *state.User) {
		if err := ac.Refresh(r.Context(), u); err != nil {
			s.logger.LogError(err, "Failed to refresh session user")
		}
	}
	return &u, nil
}

// requireAuth rejects requests without a verified signed-in session.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.verifySession(w, r, authContextFrom(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if u == nil {
			s.writeError(w, r, errors.ErrUnauthenticated)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, *u)
		next(w, r.WithContext(ctx))
	}
}

func sameAccount(a, b users.PublicUser) bool {
	return a.ID == b.ID && a.Username == b.Username && a.Email == b.Email &&
		a.Role == b.Role && a.IsApproved == b.IsApproved
}

// adminOnly requires the admin role on the account requireAuth just read
// from the store.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		u := userFrom(r.Context())
		if !u.IsAdmin() {
			s.logger.Warn("Admin route refused", "user_id", u.ID, "path", r.URL.Path)
			s.writeError(w, r, errors.ErrForbidden)
			return
		}
		next(w, r)
	})
}

// requestSizeLimit limits request bodies to limit bytes.
func requestSizeLimit(limit int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next(w, r)
	}
}
