package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"resumegenius/internal/config"
	"resumegenius/internal/errors"
	"resumegenius/internal/observability"
)

// CertificateManager holds the server key pair and swaps it when the files change.
type CertificateManager struct {
	mu sync.RWMutex

	cert           *tls.Certificate
	expiry         time.Time
	lastReloadTime time.Time

	watcher *CertWatcher
	config  config.TLSConfig
	metrics *observability.Metrics
	logger  *errors.Logger
	now     func() time.Time

	reloadCount        int64
	reloadFailureCount int64
	lastReloadError    string

	stopMonitor chan struct{}
	stopOnce    sync.Once
}

// CertificateStats describes the reload history.
type CertificateStats struct {
	ReloadCount        int64     `json:"reloadCount"`
	ReloadFailureCount int64     `json:"reloadFailureCount"`
	LastReloadTime     time.Time `json:"lastReloadTime"`
	LastReloadError    string    `json:"lastReloadError,omitempty"`
	Expiry             time.Time `json:"expiry"`
	Watching           bool      `json:"watching"`
	WatchedFiles       []string  `json:"watchedFiles,omitempty"`
}

// NewCertificateManager creates a manager for the key pair in tlsConfig.
func NewCertificateManager(tlsConfig config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) *CertificateManager {
	if metrics == nil {
		metrics = &observability.Metrics{}
	}
	return &CertificateManager{
		config:      tlsConfig,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
		stopMonitor: make(chan struct{}),
	}
}

// Start loads the key pair and, when auto reload is on, starts watching it.
func (cm *CertificateManager) Start() error {
	if err := cm.Reload(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	go cm.monitorExpiry(time.Minute)

	if !cm.config.AutoReload {
		return nil
	}
	cm.watcher = NewCertWatcher(cm.config.CertFile, cm.config.KeyFile, cm.config.DebounceDelay, cm.triggerReload, cm.logger)
	return cm.watcher.Start()
}

// Stop stops the watcher and the expiry monitor.
func (cm *CertificateManager) Stop() error {
	cm.stopOnce.Do(func() { close(cm.stopMonitor) })
	if cm.watcher != nil {
		if err := cm.watcher.Stop(); err != nil {
			return err
		}
	}
	cm.logger.Info("Certificate manager stopped")
	return nil
}

// GetCertificate serves tls.Config.GetCertificate.
func (cm *CertificateManager) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.cert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}
	if !cm.expiry.IsZero() && cm.now().After(cm.expiry) {
		serverName := ""
		if hello != nil {
			serverName = hello.ServerName
		}
		cm.logger.Warn("Serving expired server certificate",
			"expiry", cm.expiry,
			"server_name", serverName)
	}
	return cm.cert, nil
}

// Reload reads the key pair from disk. On failure the previous pair stays in use.
func (cm *CertificateManager) Reload() error {
	cert, err := tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
	if err == nil && len(cert.Certificate) > 0 {
		var leaf *x509.Certificate
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err == nil {
			cert.Leaf = leaf
		}
	}

	cm.mu.Lock()
	cm.reloadCount++
	if err != nil {
		cm.reloadFailureCount++
		cm.lastReloadError = err.Error()
		cm.mu.Unlock()
		cm.metrics.RecordCertReload(context.Background(), false)
		return fmt.Errorf("failed to load key pair: %w", err)
	}
	cm.cert = &cert
	if cert.Leaf != nil {
		cm.expiry = cert.Leaf.NotAfter
	}
	cm.lastReloadTime = cm.now()
	cm.lastReloadError = ""
	expiry := cm.expiry
	cm.mu.Unlock()

	cm.metrics.RecordCertReload(context.Background(), true)
	cm.recordExpiry()
	cm.logger.Info("Certificates reloaded successfully", "server_cert_expiry", expiry)
	return nil
}

func (cm *CertificateManager) triggerReload() {
	if err := cm.Reload(); err != nil {
		cm.logger.LogError(err, "Failed to reload certificates")
	}
}

// Stats returns the reload history.
func (cm *CertificateManager) Stats() CertificateStats {
	cm.mu.RLock()
	stats := CertificateStats{
		ReloadCount:        cm.reloadCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadError:    cm.lastReloadError,
		Expiry:             cm.expiry,
	}
	watcher := cm.watcher
	cm.mu.RUnlock()

	if watcher != nil {
		stats.Watching = watcher.IsRunning()
		stats.WatchedFiles = watcher.WatchedFiles()
	}
	return stats
}

func (cm *CertificateManager) recordExpiry() {
	cm.mu.RLock()
	expiry := cm.expiry
	cm.mu.RUnlock()
	if expiry.IsZero() {
		return
	}
	cm.metrics.RecordCertExpiry(context.Background(), expiry.Sub(cm.now()).Seconds())
}

func (cm *CertificateManager) monitorExpiry(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cm.recordExpiry()
		case <-cm.stopMonitor:
			return
		}
	}
}
