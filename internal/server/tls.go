package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS installs a reloading certificate on httpServer when TLS is on.
func (s *Server) configureTLS(httpServer *http.Server) error {
	if s.cfg.Server.TLS.Mode != "server" {
		return nil
	}

	cm := NewCertificateManager(s.cfg.Server.TLS, s.metrics, s.logger)
	if err := cm.Start(); err != nil {
		return fmt.Errorf("failed to start certificate manager: %w", err)
	}
	s.certManager = cm

	httpServer.TLSConfig = s.buildTLSConfig(cm)
	return nil
}

func (s *Server) buildTLSConfig(cm *CertificateManager) *tls.Config {
	tlsConfig := &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: cm.GetCertificate,
		ClientAuth:     tls.NoClientCert,
	}
	if s.cfg.Server.TLS.MinVersion == "1.3" {
		tlsConfig.MinVersion = tls.VersionTLS13
	}
	return tlsConfig
}
