package server

import (
	"net/http"

	"resumegenius/internal/auth"
	"resumegenius/internal/errors"
	"resumegenius/internal/forms"
	"resumegenius/internal/guard"
	"resumegenius/internal/observability"
)

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.RegisterForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.metrics.RecordRegistration(r.Context(), false)
		s.writeError(w, r, err)
		return
	}

	u, err := s.auth.Register(r.Context(), form.Username, form.Email, form.Password)
	s.metrics.RecordRegistration(r.Context(), err == nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    u,
		"title":   "Registration successful",
		"message": "Your account is pending admin approval. You will be notified when your account is approved.",
	})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.LoginForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}

	// A successful sign-in always gets a session id minted here, never the
	// one the client arrived with.
	next := s.registry.Issue()
	if _, err := next.Login(r.Context(), form.Email, form.Password); err != nil {
		s.registry.Forget(next.SessionID())
		s.metrics.RecordLogin(r.Context(), loginOutcome(err))
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, r, authContextFrom(r.Context()), next)
	s.metrics.RecordLogin(r.Context(), observability.LoginSucceeded)
	writeJSON(w, http.StatusOK, next.State())
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, errors.ErrInvalidCredentials):
		return observability.LoginRejected
	case errors.Is(err, errors.ErrPendingApproval):
		return observability.LoginPending
	default:
		return observability.LoginFailed
	}
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	ac := authContextFrom(r.Context())
	if err := s.endSession(w, r, ac); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac.State())
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	ac := authContextFrom(r.Context())
	if _, err := s.verifySession(w, r, ac); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac.State())
}

func (s *Server) emergencyHandler(w http.ResponseWriter, r *http.Request) {
	next := s.registry.Issue()
	if _, err := next.EmergencyBypass(r.Context()); err != nil {
		s.registry.Forget(next.SessionID())
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, r, authContextFrom(r.Context()), next)
	s.metrics.RecordLogin(r.Context(), observability.LoginEmergency)
	writeJSON(w, http.StatusOK, next.State())
}

func (s *Server) navHandler(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"items": guard.Navigation(&u)})
}

// profileHandler returns one account and its document storage prefix. Users
// may only read their own profile; admins may read any.
func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !auth.CanAccess(userFrom(r.Context()), id) {
		s.writeError(w, r, errors.ErrForbidden)
		return
	}
	u, err := s.auth.GetUser(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "dataPath": auth.UserDataPath(u.ID)})
}

// viewHandler answers what the client should do for a client route.
func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	ac := authContextFrom(r.Context())
	if _, err := s.verifySession(w, r, ac); err != nil {
		s.writeError(w, r, err)
		return
	}
	decision := guard.Decide(ac.State(), "/"+r.PathValue("path"))
	writeJSON(w, http.StatusOK, decision)
}
