package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"resumegenius/internal/observability"
)

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, om *observability.ObservabilityManager) error {
	httpServer := s.setupHTTPServer(om)

	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to listen: %w", err)
	}
	go s.runSessionJanitor(ctx)
	return s.serve(ctx, httpServer, ln)
}

// runSessionJanitor evicts idle sessions until ctx is done.
func (s *Server) runSessionJanitor(ctx context.Context) {
	interval := s.cfg.Session.TTL / 4
	if interval <= 0 || interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.evictIdleSessions(now)
		}
	}
}

// evictIdleSessions drops the contexts and wizard runs of sessions not seen
// for a full session TTL. The persisted session expires on its own.
func (s *Server) evictIdleSessions(now time.Time) int {
	ttl := s.cfg.Session.TTL
	if ttl <= 0 {
		return 0
	}
	evicted := s.registry.EvictIdle(now.Add(-ttl))
	for _, sid := range evicted {
		s.wizards.Reset(sid)
	}
	if len(evicted) > 0 {
		s.logger.Debug("Evicted idle sessions", "count", len(evicted))
	}
	return len(evicted)
}

func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:           om.HTTPMiddleware()(s.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}
}

// serve runs httpServer on ln and shuts it down when ctx is done.
func (s *Server) serve(ctx context.Context, httpServer *http.Server, ln net.Listener) error {
	s.displayServerInfo(ln.Addr().String())

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server",
			"address", ln.Addr().String(),
			"tls_enabled", httpServer.TLSConfig != nil)

		var err error
		if httpServer.TLSConfig != nil {
			// Certificates come from TLSConfig.GetCertificate.
			err = httpServer.ServeTLS(ln, "", "")
		} else {
			err = httpServer.Serve(ln)
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		s.stopCertificateManager()
		if !ok {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutdown requested, starting graceful shutdown")
		return s.performGracefulShutdown(httpServer)
	}
}

func (s *Server) performGracefulShutdown(httpServer *http.Server) error {
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.stopCertificateManager()

	s.logger.Info("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return httpServer.Close()
	}

	s.logger.Info("Server shutdown completed successfully")
	return nil
}

func (s *Server) stopCertificateManager() {
	if s.certManager == nil {
		return
	}
	if err := s.certManager.Stop(); err != nil {
		s.logger.LogError(err, "Failed to stop certificate manager")
	}
}
