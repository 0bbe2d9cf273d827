package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumegenius/internal/config"
	"resumegenius/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeyPair writes a self-signed pair for cn that expires after validFor.
func writeKeyPair(t *testing.T, dir, cn string, validFor time.Duration) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(validFor),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func servedCN(t *testing.T, cm *CertificateManager) string {
	t.Helper()
	cert, err := cm.GetCertificate(&tls.ClientHelloInfo{ServerName: "localhost"})
	require.NoError(t, err)
	require.NotNil(t, cert.Leaf)
	return cert.Leaf.Subject.CommonName
}

func TestCertificateManager_LoadAndReload(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "first", 24*time.Hour)

	cm := NewCertificateManager(config.TLSConfig{Mode: "server", CertFile: certFile, KeyFile: keyFile}, nil, errors.NewNopLogger())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()

	assert.Equal(t, "first", servedCN(t, cm))

	writeKeyPair(t, dir, "second", 24*time.Hour)
	require.NoError(t, cm.Reload())
	assert.Equal(t, "second", servedCN(t, cm))

	stats := cm.Stats()
	assert.Equal(t, int64(2), stats.ReloadCount)
	assert.Zero(t, stats.ReloadFailureCount)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), stats.Expiry, time.Minute)
}

func TestCertificateManager_FailedReloadKeepsPair(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "good", time.Hour)

	cm := NewCertificateManager(config.TLSConfig{CertFile: certFile, KeyFile: keyFile}, nil, errors.NewNopLogger())
	require.NoError(t, cm.Reload())

	require.NoError(t, os.WriteFile(certFile, []byte("garbage"), 0o600))
	require.Error(t, cm.Reload())

	assert.Equal(t, "good", servedCN(t, cm))
	stats := cm.Stats()
	assert.Equal(t, int64(1), stats.ReloadFailureCount)
	assert.NotEmpty(t, stats.LastReloadError)
}

func TestCertificateManager_StartFailsWithoutFiles(t *testing.T) {
	cm := NewCertificateManager(config.TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}, nil, errors.NewNopLogger())
	assert.Error(t, cm.Start())

	_, err := cm.GetCertificate(&tls.ClientHelloInfo{})
	assert.Error(t, err)
}

func TestCertificateManager_AutoReloadOnFileChange(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "before", time.Hour)

	cm := NewCertificateManager(config.TLSConfig{
		Mode:          "server",
		CertFile:      certFile,
		KeyFile:       keyFile,
		AutoReload:    true,
		DebounceDelay: 50 * time.Millisecond,
	}, nil, errors.NewNopLogger())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()
	stats := cm.Stats()
	require.True(t, stats.Watching)
	assert.ElementsMatch(t, []string{certFile, keyFile}, stats.WatchedFiles)

	writeKeyPair(t, dir, "after", time.Hour)

	require.Eventually(t, func() bool {
		cert, err := cm.GetCertificate(nil)
		return err == nil && cert.Leaf != nil && cert.Leaf.Subject.CommonName == "after"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, cm.Stop())
	assert.False(t, cm.Stats().Watching)
}
