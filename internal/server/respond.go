package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"resumegenius/internal/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case errors.ErrCodeDuplicateEmail, errors.ErrCodeDuplicateID:
		return http.StatusConflict
	case errors.ErrCodeInvalidCredentials, errors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case errors.ErrCodePendingApproval, errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeNotFound, errors.ErrCodeNoAdminFound, errors.ErrCodeBypassDisabled:
		return http.StatusNotFound
	case errors.ErrCodeValidation, errors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case errors.ErrCodeStoreUnavailable, errors.ErrCodeSessionStoreFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse. Server side failures are logged
// and their message is not echoed to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError("INTERNAL_ERROR", "Internal server error", err)
	}

	status := statusFor(appErr.Code)
	resp := ErrorResponse{Error: appErr.Code, Message: appErr.Message}
	if status >= http.StatusInternalServerError {
		s.logger.LogError(err, "Request failed", "method", r.Method, "path", r.URL.Path)
		if status == http.StatusInternalServerError {
			resp.Message = "Internal server error"
		}
	} else {
		for _, key := range []string{"fields", "description"} {
			if v, ok := appErr.Context[key]; ok {
				if resp.Details == nil {
					resp.Details = make(map[string]any)
				}
				resp.Details[key] = v
			}
		}
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, so an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

// parseJSONRequest decodes the request body into v.
func parseJSONRequest(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return invalidRequest("Content-Type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return invalidRequest(fmt.Sprintf("Request body too large (limit is %d bytes)", maxBytesErr.Limit))
		}
		return invalidRequest("Failed to read request body")
	}
	defer func() { _ = r.Body.Close() }()

	if err := json.Unmarshal(body, v); err != nil {
		return invalidRequest("Request body is not valid JSON")
	}
	return nil
}

func invalidRequest(message string) error {
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, message, nil)
}
