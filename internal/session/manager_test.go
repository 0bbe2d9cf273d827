package session

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"resumegenius/internal/errors"
	"resumegenius/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jane = users.PublicUser{
	ID:         "3",
	Username:   "jane_standard",
	Email:      "jane.standard@example.com",
	Role:       users.RoleStandard,
	IsApproved: true,
	CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore(0)
	return NewManager(store, errors.NewNopLogger()), store
}

func TestManager_SaveRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	require.NoError(t, m.Save(ctx, "sid", jane, "tok"))

	s, err := m.Restore(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, jane, s.User)
	assert.Equal(t, "tok", s.Token)
}

func TestManager_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	require.NoError(t, m.Save(ctx, "sid", jane, "first"))
	admin := users.PublicUser{ID: "1", Email: "admin@example.com", Role: users.RoleAdmin}
	require.NoError(t, m.Save(ctx, "sid", admin, "second"))

	s, err := m.Restore(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "1", s.User.ID)
	assert.Equal(t, "second", s.Token)
}

func TestManager_RestoreRejectsPartialSessions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"absent", nil},
		{"only user", map[string]string{FieldUser: `{"id":"3"}`}},
		{"only token", map[string]string{FieldToken: "tok"}},
		{"empty token", map[string]string{FieldUser: `{"id":"3"}`, FieldToken: ""}},
		{"unparsable user", map[string]string{FieldUser: "{not json", FieldToken: "tok"}},
		{"user without id", map[string]string{FieldUser: `{}`, FieldToken: "tok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestManager()
			if tt.fields != nil {
				require.NoError(t, store.Set(ctx, "sid", tt.fields))
			}

			s, err := m.Restore(ctx, "sid")
			require.NoError(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()

	require.NoError(t, m.Save(ctx, "sid", jane, "tok"))
	require.NoError(t, m.Clear(ctx, "sid"))

	s, err := m.Restore(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 0, store.Len())
}

func TestNewToken(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	tok := NewToken(jane, now)

	raw, err := base64.StdEncoding.DecodeString(tok)
	require.NoError(t, err)
	assert.Equal(t, "3:jane.standard@example.com:1700000000123", string(raw))
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
