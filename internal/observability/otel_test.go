package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumegenius/internal/config"
	"resumegenius/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func quietConfig() ObservabilityConfig {
	return ObservabilityConfig{
		ServiceName:        "resumegenius-test",
		ServiceVersion:     "test",
		Enabled:            true,
		SampleRate:         1.0,
		CollectionInterval: time.Second,
	}
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestGetObservabilityConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.ServiceName = "resumegenius"
	cfg.Observability.Enabled = true
	cfg.Observability.Prometheus.Enabled = true
	cfg.Observability.Prometheus.Endpoint = "/metrics"
	cfg.Observability.Prometheus.Port = "9100"

	obs := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.Equal(t, 15*time.Second, obs.CollectionInterval)
	assert.Equal(t, "9100", obs.Prometheus.Port)

	cfg.Observability.ServiceVersion = "override"
	assert.Equal(t, "override", GetObservabilityConfig(cfg, "1.2.3").ServiceVersion)

	def := GetObservabilityConfig(nil, "dev")
	assert.Equal(t, "resumegenius", def.ServiceName)
	assert.Equal(t, "/metrics", def.Prometheus.Endpoint)
}

func TestDisabledManagerIsNoop(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{}, errors.NewNopLogger())
	require.NoError(t, err)

	m := om.GetMetrics()
	require.NotNil(t, m)
	ctx := context.Background()
	m.RecordLogin(ctx, LoginSucceeded)
	m.RecordWizardTransition(ctx, "next", 1)
	m.RecordCertExpiry(ctx, 10)

	called := false
	h := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)

	assert.NotNil(t, om.Tracer("test"))
	assert.NoError(t, om.Shutdown(ctx))
}

func TestManagerRecordsDomainCounters(t *testing.T) {
	om, err := NewObservabilityManager(quietConfig(), errors.NewNopLogger())
	require.NoError(t, err)
	defer func() { _ = om.Shutdown(context.Background()) }()
	require.NotNil(t, om.manualReader)

	ctx := context.Background()
	m := om.GetMetrics()
	m.RecordLogin(ctx, LoginSucceeded)
	m.RecordLogin(ctx, LoginRejected)
	m.RecordRegistration(ctx, true)
	m.RecordAdminAction(ctx, "approve", true)
	m.RecordWizardTransition(ctx, "next", 1)
	m.RecordWizardTransition(ctx, "back", 2)
	m.RecordSessionRestored(ctx)

	assert.Equal(t, int64(2), counterTotal(t, om.manualReader, "resumegenius_logins_total"))
	assert.Equal(t, int64(1), counterTotal(t, om.manualReader, "resumegenius_registrations_total"))
	assert.Equal(t, int64(1), counterTotal(t, om.manualReader, "resumegenius_admin_actions_total"))
	assert.Equal(t, int64(2), counterTotal(t, om.manualReader, "resumegenius_wizard_transitions_total"))
	assert.Equal(t, int64(1), counterTotal(t, om.manualReader, "resumegenius_sessions_restored_total"))
}

func TestSetupPrometheusExporter(t *testing.T) {
	reader, mux, err := SetupPrometheusExporter(PrometheusConfig{})
	require.NoError(t, err)
	assert.Nil(t, reader)
	assert.Nil(t, mux)

	reader, mux, err = SetupPrometheusExporter(PrometheusConfig{Enabled: true, Endpoint: "/metrics"})
	require.NoError(t, err)
	require.NotNil(t, mux)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	m, err := newMetrics(mp.Meter("test"))
	require.NoError(t, err)
	m.RecordRegistration(context.Background(), true)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "resumegenius_registrations_total"))
}
