package server

import (
	"net/http"
	"time"

	"resumegenius/internal/auth"
)

// healthHandler reports liveness plus store and certificate state.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumegenius",
		"version": s.version,
	}

	healthy := true
	if s.stats != nil {
		stats, ok := s.stats()
		response["store"] = stats
		healthy = ok
	}
	if s.certManager != nil {
		response["certificates"] = s.certManager.Stats()
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler reports server settings and live counts.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	storage := map[string]any{"driver": s.cfg.Storage.Driver}
	if s.stats != nil {
		storage["breaker"], _ = s.stats()
	}

	response := map[string]any{
		"service": "resumegenius",
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
		"server": map[string]any{
			"max_request_size_bytes": s.cfg.Server.MaxRequestSize,
			"max_upload_size_bytes":  s.cfg.App.MaxUploadSize,
			"tls_mode":               s.cfg.Server.TLS.Mode,
		},
		"sessions": map[string]any{
			"store":          s.cfg.Session.Store,
			"auth_contexts":  s.registry.Len(),
			"wizard_runs":    s.wizards.Len(),
			"emergency_auth": auth.BypassEnabled,
		},
		"storage": storage,
	}
	writeJSON(w, http.StatusOK, response)
}
