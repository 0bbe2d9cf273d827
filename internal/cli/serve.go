package cli

import (
	"context"
	"fmt"
	"time"

	"resumegenius/internal/auth"
	"resumegenius/internal/catalog"
	"resumegenius/internal/config"
	"resumegenius/internal/observability"
	"resumegenius/internal/server"
	"resumegenius/internal/session"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Resume Genius HTTP server",
		Long: `Start the HTTP server that provides the account, session, admin and wizard API.

Available endpoints:
- POST /api/auth/register, /api/auth/login, /api/auth/logout
- GET  /api/auth/session: Restore the sign-in of this browser session
- GET  /api/nav, /view/{path}: Navigation and route guard
- /api/admin/users: Admin user directory (admin role required)
- GET  /api/resumes, /api/jobs, /api/tailored, /api/coverletters, /api/dashboard
- GET  /api/admin/metrics, /api/admin/logs: Admin dashboard and activity log
- /api/wizard: Five-step tailoring wizard
- GET  /health, /stats: Health and server statistics

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
		RunE: runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Host to bind to (default from config)")
	cmd.Flags().String("tls-mode", "", "TLS mode: disabled, server (overrides config)")
	cmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	return cmd
}

// applyServeFlags copies the flags that were set on the command line into cfg.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	override := func(name string, dst *string) {
		if !cmd.Flags().Changed(name) {
			return
		}
		if v, err := cmd.Flags().GetString(name); err == nil {
			*dst = v
		}
	}

	override("port", &cfg.Server.Port)
	override("host", &cfg.Server.Host)
	override("tls-mode", &cfg.Server.TLS.Mode)
	override("cert-file", &cfg.Server.TLS.CertFile)
	override("key-file", &cfg.Server.TLS.KeyFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeFlags(cmd, cfg)
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	store, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.LogError(err, "Failed to close credential store")
		}
	}()

	authService := newAuthService(cfg, store.repo, logger)
	if cfg.Auth.SeedDemoUsers {
		if err := seedDemoUsers(ctx, authService, store.repo, logger); err != nil {
			return err
		}
	}

	sessionStore, closeSessions, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSessions(); err != nil {
			logger.LogError(err, "Failed to close session store")
		}
	}()

	docs, err := catalog.Sample()
	if err != nil {
		return err
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	srv := server.NewServer(cfg, Version, server.Dependencies{
		Auth:       authService,
		Sessions:   session.NewManager(sessionStore, logger),
		Metrics:    om.GetMetrics(),
		StoreStats: store.stats,
		Catalog:    docs,
	}, logger)

	logger.Info("Starting resumegenius server",
		"version", Version,
		"storage_driver", cfg.Storage.Driver,
		"session_store", cfg.Session.Store,
		"emergency_bypass", auth.BypassEnabled)
	return srv.Start(ctx, om)
}
