package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Login outcomes recorded on resumegenius_logins_total.
const (
	LoginSucceeded = "success"
	LoginRejected  = "invalid_credentials"
	LoginPending   = "pending_approval"
	LoginFailed    = "error"
	LoginEmergency = "emergency"
)

// Metrics holds the service's custom instruments. A zero Metrics records nothing.
type Metrics struct {
	Logins            metric.Int64Counter
	Registrations     metric.Int64Counter
	SessionsRestored  metric.Int64Counter
	WizardTransitions metric.Int64Counter
	AdminActions      metric.Int64Counter

	// Certificate metrics
	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.Logins, "resumegenius_logins_total", "Login attempts by outcome"},
		{&m.Registrations, "resumegenius_registrations_total", "Account registrations"},
		{&m.SessionsRestored, "resumegenius_sessions_restored_total", "Sessions restored from the session store"},
		{&m.WizardTransitions, "resumegenius_wizard_transitions_total", "Wizard step transitions by direction"},
		{&m.AdminActions, "resumegenius_admin_actions_total", "Admin user management actions"},
		{&m.CertReloadCount, "resumegenius_cert_reloads_total", "Total number of certificate reloads"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
		*c.target = counter
	}

	var err error
	m.CertExpiryTime, err = meter.Float64Gauge(
		"resumegenius_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate expiry time metric: %w", err)
	}

	return m, nil
}

func add(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(ctx context.Context, outcome string) {
	add(ctx, m.Logins, attribute.String("outcome", outcome))
}

// RecordRegistration counts a registration attempt.
func (m *Metrics) RecordRegistration(ctx context.Context, success bool) {
	add(ctx, m.Registrations, attribute.Bool("success", success))
}

// RecordSessionRestored counts a session found in the store at startup of a client.
func (m *Metrics) RecordSessionRestored(ctx context.Context) {
	add(ctx, m.SessionsRestored)
}

// RecordWizardTransition counts a wizard move. direction is next, back or leave.
func (m *Metrics) RecordWizardTransition(ctx context.Context, direction string, step int) {
	add(ctx, m.WizardTransitions,
		attribute.String("direction", direction),
		attribute.Int("step", step))
}

// RecordAdminAction counts an admin operation.
func (m *Metrics) RecordAdminAction(ctx context.Context, action string, success bool) {
	add(ctx, m.AdminActions,
		attribute.String("action", action),
		attribute.Bool("success", success))
}

// RecordCertReload counts a certificate reload.
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	add(ctx, m.CertReloadCount, attribute.Bool("success", success))
}

// RecordCertExpiry records the seconds left before the certificate expires.
func (m *Metrics) RecordCertExpiry(ctx context.Context, seconds float64) {
	if m.CertExpiryTime == nil {
		return
	}
	m.CertExpiryTime.Record(ctx, seconds)
}
