package formatters

import (
	"encoding/json"
	"testing"
	"time"

	"resumegenius/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUsers() []users.PublicUser {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []users.PublicUser{
		{ID: "1", Username: "admin", Email: "admin@example.com", Role: users.RoleAdmin, IsApproved: true, CreatedAt: created},
		{ID: "2", Username: "john_pending", Email: "john.pending@example.com", Role: users.RoleStandard, CreatedAt: created},
	}
}

func TestFormat_UserListText(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleUsers(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "john.pending@example.com")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "2024-03-01T12:00:00Z")
	assert.Contains(t, out, "2 users, 1 pending approval")
}

func TestFormat_UserListMarkdown(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleUsers(), "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# Users")
	assert.Contains(t, out, "| 1 | admin | admin@example.com | admin | approved |")
	assert.Contains(t, out, "**Pending approval:** 1")
}

func TestFormat_SingleUser(t *testing.T) {
	u := sampleUsers()[0]

	text, err := NewFormatterRegistry().Format(u, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Username: admin")
	assert.Contains(t, text, "Status:   approved")

	md, err := NewFormatterRegistry().Format(u, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "## admin")
}

func TestFormat_JSONFallsBackForAnyType(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleUsers(), "json")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "john_pending", decoded[1]["username"])
	assert.NotContains(t, out, "passwordHash")
}

func TestFormat_Unsupported(t *testing.T) {
	_, err := NewFormatterRegistry().Format(map[string]int{"a": 1}, "text")
	assert.Error(t, err)

	_, err = NewFormatterRegistry().Format(sampleUsers(), "yaml")
	assert.Error(t, err)
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}
