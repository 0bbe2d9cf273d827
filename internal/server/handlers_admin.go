package server

import (
	"context"
	"net/http"

	"resumegenius/internal/errors"
	"resumegenius/internal/forms"
	"resumegenius/internal/users"
)

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pending := 0
	for _, u := range list {
		if !u.IsApproved {
			pending++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": list, "pending": pending})
}

func (s *Server) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.CreateUserForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.auth.CreateByAdmin(r.Context(), form.Username, form.Email, form.Password, users.Role(form.Role), form.Approved())
	s.recordAdmin(r, "create", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (s *Server) approveUserHandler(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.Approve(r.Context(), r.PathValue("id"))
	s.recordAdmin(r, "approve", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) rejectUserHandler(w http.ResponseWriter, r *http.Request) {
	s.removeUser(w, r, "reject", s.auth.Reject)
}

func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	if id := r.PathValue("id"); id == userFrom(r.Context()).ID {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeValidation, "You cannot delete your own account", nil).
			WithContext("user_id", id))
		return
	}
	s.removeUser(w, r, "delete", s.auth.Delete)
}

func (s *Server) removeUser(w http.ResponseWriter, r *http.Request, action string, remove func(ctx context.Context, id string) (bool, error)) {
	id := r.PathValue("id")
	removed, err := remove(r.Context(), id)
	if err == nil && !removed {
		err = errors.NewNotFoundError(errors.ErrCodeNotFound, errors.ErrNotFound.Message, nil).WithContext("user_id", id)
	}
	s.recordAdmin(r, action, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "removed": true})
}

func (s *Server) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.ResetPasswordForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.auth.ResetPassword(r.Context(), r.PathValue("id"), form.Password)
	s.recordAdmin(r, "reset_password", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) recordAdmin(r *http.Request, action string, err error) {
	s.metrics.RecordAdminAction(r.Context(), action, err == nil)
	if err == nil {
		s.logger.Info("Admin action", "action", action, "admin_id", userFrom(r.Context()).ID, "target_id", r.PathValue("id"))
	}
}
