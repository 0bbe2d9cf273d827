package server

import (
	"fmt"

	"resumegenius/internal/auth"
)

// displayServerInfo prints the endpoint table and the security relevant settings.
func (s *Server) displayServerInfo(addr string) {
	scheme := "http"
	if s.certManager != nil {
		scheme = "https"
	}
	fmt.Printf("Resume Genius listening on %s://%s\n", scheme, addr)

	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health                         - Health check")
	fmt.Println("  GET  /stats                          - Server statistics")
	fmt.Println("  POST /api/auth/{register,login,logout} - Account and session")
	fmt.Println("  GET  /api/auth/session               - Current sign-in state")
	fmt.Println("  GET  /view/{path}                    - Route guard decision")
	fmt.Println("  *    /api/admin/users...             - User management (admin only)")
	fmt.Println("  *    /api/wizard...                  - Tailoring wizard")

	fmt.Printf("Credential store: %s\n", s.cfg.Storage.Driver)
	fmt.Printf("Session store: %s (cookie %q, secure=%t)\n", s.cfg.Session.Store, s.cfg.Session.CookieName, s.cfg.Session.CookieSecure)
	fmt.Printf("Request size limit: %d bytes, upload limit: %.1f MB\n", s.cfg.Server.MaxRequestSize, float64(s.cfg.App.MaxUploadSize)/(1024*1024))

	if auth.BypassEnabled {
		fmt.Println("WARNING: emergency authentication is compiled in (devbypass build)")
	}
	if s.certManager == nil {
		fmt.Println("TLS: DISABLED")
		return
	}
	fmt.Printf("TLS: ENABLED (auto-reload=%t)\n", s.cfg.Server.TLS.AutoReload)
}
