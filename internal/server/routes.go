package server

import (
	"net/http"
)

// Handler returns the full route table. Health and stats are served without
// touching sessions; everything else runs behind the session middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.Handle("/", s.sessionMiddleware(s.routes()))
	return mux
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	limit := func(h http.HandlerFunc) http.HandlerFunc {
		return requestSizeLimit(s.cfg.Server.MaxRequestSize, h)
	}

	mux.HandleFunc("POST /api/auth/register", limit(s.registerHandler))
	mux.HandleFunc("POST /api/auth/login", limit(s.loginHandler))
	mux.HandleFunc("POST /api/auth/logout", s.logoutHandler)
	mux.HandleFunc("GET /api/auth/session", s.sessionHandler)
	mux.HandleFunc("POST /api/auth/emergency", s.emergencyHandler)

	mux.HandleFunc("GET /api/nav", s.requireAuth(s.navHandler))
	mux.HandleFunc("GET /view/{path...}", s.viewHandler)
	mux.HandleFunc("GET /api/users/{id}", s.requireAuth(s.profileHandler))

	mux.HandleFunc("GET /api/resumes", s.requireAuth(s.listResumesHandler))
	mux.HandleFunc("GET /api/resumes/{id}", s.requireAuth(s.getResumeHandler))
	mux.HandleFunc("GET /api/jobs", s.requireAuth(s.listJobsHandler))
	mux.HandleFunc("GET /api/jobs/{id}", s.requireAuth(s.getJobHandler))
	mux.HandleFunc("GET /api/tailored", s.requireAuth(s.listTailoredHandler))
	mux.HandleFunc("GET /api/coverletters", s.requireAuth(s.listCoverLettersHandler))
	mux.HandleFunc("GET /api/dashboard", s.requireAuth(s.dashboardHandler))

	mux.HandleFunc("GET /api/admin/metrics", s.adminOnly(s.adminMetricsHandler))
	mux.HandleFunc("GET /api/admin/logs", s.adminOnly(s.adminLogsHandler))
	mux.HandleFunc("GET /api/admin/users", s.adminOnly(s.listUsersHandler))
	mux.HandleFunc("POST /api/admin/users", s.adminOnly(limit(s.createUserHandler)))
	mux.HandleFunc("POST /api/admin/users/{id}/approve", s.adminOnly(s.approveUserHandler))
	mux.HandleFunc("POST /api/admin/users/{id}/reject", s.adminOnly(s.rejectUserHandler))
	mux.HandleFunc("POST /api/admin/users/{id}/reset-password", s.adminOnly(limit(s.resetPasswordHandler)))
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.adminOnly(s.deleteUserHandler))

	mux.HandleFunc("GET /api/wizard", s.requireAuth(s.wizardHandler))
	mux.HandleFunc("POST /api/wizard/next", s.requireAuth(s.wizardNextHandler))
	mux.HandleFunc("POST /api/wizard/back", s.requireAuth(s.wizardBackHandler))
	mux.HandleFunc("POST /api/wizard/intake", s.requireAuth(requestSizeLimit(s.uploadLimit(), s.wizardIntakeHandler)))
	mux.HandleFunc("POST /api/wizard/job", s.requireAuth(limit(s.wizardJobHandler)))
	mux.HandleFunc("POST /api/wizard/options", s.requireAuth(limit(s.wizardOptionsHandler)))
	mux.HandleFunc("POST /api/wizard/saved", s.requireAuth(limit(s.wizardSavedHandler)))

	mux.HandleFunc("POST /api/forms/job-description", s.requireAuth(limit(s.jobDescriptionFormHandler)))
	mux.HandleFunc("POST /api/forms/tailoring", s.requireAuth(limit(s.tailoringFormHandler)))
	mux.HandleFunc("GET /api/settings/llm", s.requireAuth(s.getLLMSettingsHandler))
	mux.HandleFunc("PUT /api/settings/llm", s.requireAuth(limit(s.putLLMSettingsHandler)))

	return mux
}

// uploadLimit leaves room above the intake's own file size check so that an
// oversized file is reported as such rather than as a truncated body.
func (s *Server) uploadLimit() int64 {
	return 2*s.cfg.App.MaxUploadSize + 1<<20
}
