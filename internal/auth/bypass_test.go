//go:build devbypass

package auth

import (
	"context"
	"testing"

	"resumegenius/internal/errors"
	"resumegenius/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmergencyBypass_ReturnsFirstAdmin(t *testing.T) {
	f := newFixture(t)
	seedDemo(t, f)

	u, err := f.svc.EmergencyBypass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, users.RoleAdmin, u.Role)
}

func TestEmergencyBypass_NoAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Register(ctx, "alice", "alice@x.com", "password1")
	require.NoError(t, err)

	_, err = f.svc.EmergencyBypass(ctx)
	assert.True(t, errors.Is(err, errors.ErrNoAdminFound))
}
