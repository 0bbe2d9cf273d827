// Package server exposes the account, session, admin and wizard operations
// over an HTTP JSON API.
package server

import (
	"context"
	"sync"
	"time"

	"resumegenius/internal/auth"
	"resumegenius/internal/catalog"
	"resumegenius/internal/config"
	"resumegenius/internal/errors"
	"resumegenius/internal/forms"
	"resumegenius/internal/guard"
	"resumegenius/internal/observability"
	"resumegenius/internal/wizard"
)

// StatsFunc reports store health for /health and /stats. healthy is false
// when the store is tripped.
type StatsFunc func() (stats map[string]any, healthy bool)

// Dependencies are the services a Server is built from.
type Dependencies struct {
	Auth     *auth.Service
	Sessions guard.Sessions
	Metrics  *observability.Metrics
	// StoreStats is optional.
	StoreStats StatsFunc
	// Catalog defaults to the sample catalog.
	Catalog *catalog.Catalog
}

// Server holds the HTTP layer state.
type Server struct {
	cfg     *config.Config
	version string
	logger  *errors.Logger

	auth     *auth.Service
	registry *guard.Registry
	wizards  *wizard.Store
	forms    *forms.Validator
	settings *settingsStore
	catalog  *catalog.Catalog
	metrics  *observability.Metrics
	stats    StatsFunc

	certManager *CertificateManager
	startTime   time.Time
}

// NewServer wires a Server from cfg and deps.
func NewServer(cfg *config.Config, version string, deps Dependencies, logger *errors.Logger) *Server {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = &observability.Metrics{}
	}
	docs := deps.Catalog
	if docs == nil {
		var err error
		if docs, err = catalog.Sample(); err != nil {
			logger.LogError(err, "Failed to load sample catalog, serving an empty one")
			docs = &catalog.Catalog{}
		}
	}

	return &Server{
		cfg:      cfg,
		version:  version,
		logger:   logger,
		auth:     deps.Auth,
		registry: guard.NewRegistry(deps.Auth, deps.Sessions, logger),
		wizards: wizard.NewStore(wizard.IntakeLimits{
			MaxSize:    cfg.App.MaxUploadSize,
			Extensions: cfg.App.ResumeExtensions,
		}),
		forms:     forms.New(),
		settings:  newSettingsStore(),
		catalog:   docs,
		metrics:   metrics,
		stats:     deps.StoreStats,
		startTime: time.Now(),
	}
}

// LLMSettings are a user's default generation settings.
type LLMSettings struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Fallback    bool    `json:"fallback"`
}

var defaultLLMSettings = LLMSettings{
	Provider:    "openai",
	Model:       "gpt-4o",
	Temperature: 0.7,
	Fallback:    true,
}

// settingsStore keeps LLM settings per user id for the life of the process.
type settingsStore struct {
	mu     sync.RWMutex
	byUser map[string]LLMSettings
}

func newSettingsStore() *settingsStore {
	return &settingsStore{byUser: make(map[string]LLMSettings)}
}

func (s *settingsStore) get(_ context.Context, userID string) LLMSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.byUser[userID]; ok {
		return v
	}
	return defaultLLMSettings
}

func (s *settingsStore) put(_ context.Context, userID string, v LLMSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = v
}
