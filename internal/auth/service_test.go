package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"resumegenius/internal/errors"
	"resumegenius/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc  *Service
	repo *users.MemoryRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := users.NewMemoryRepository()
	seq := 0
	svc := NewService(repo, NewBcryptHasher(bcrypt.MinCost),
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("u%d", seq)
		}),
	)
	return fixture{svc: svc, repo: repo}
}

func seedDemo(t *testing.T, f fixture) {
	t.Helper()
	_, err := users.Seed(context.Background(), f.repo, f.svc.Hasher(), time.Now())
	require.NoError(t, err)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.svc.Register(ctx, "alice", "alice@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, users.RoleStandard, u.Role)
	assert.False(t, u.IsApproved)

	stored, err := f.repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", stored.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := f.svc.Register(ctx, "first", email, "password1")
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, "second", email, "otherpassword")
		assert.True(t, errors.Is(err, errors.ErrDuplicateEmail), "email %s", email)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedDemo(t, f)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
		wantID   string
	}{
		{name: "admin", email: "admin@example.com", password: "admin123", wantID: "1"},
		{name: "approved standard", email: "jane.standard@example.com", password: "password123", wantID: "3"},
		{name: "pending with correct password", email: "john.pending@example.com", password: "password123", wantErr: errors.ErrPendingApproval},
		{name: "pending with wrong password", email: "john.pending@example.com", password: "nope", wantErr: errors.ErrInvalidCredentials},
		{name: "wrong password", email: "admin@example.com", password: "admin124", wantErr: errors.ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "admin123", wantErr: errors.ErrInvalidCredentials},
		{name: "email case differs", email: "Admin@example.com", password: "admin123", wantErr: errors.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := f.svc.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestAuthenticate_RehashesOnCostChange(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepository()
	_, err := users.Seed(ctx, repo, NewBcryptHasher(bcrypt.MinCost), time.Now())
	require.NoError(t, err)

	svc := NewService(repo, NewBcryptHasher(bcrypt.MinCost+1))
	_, err = svc.Authenticate(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestRegisterApproveAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice, err := f.svc.Register(ctx, "alice", "alice@x.com", "password1")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "alice@x.com", "password1")
	require.True(t, errors.Is(err, errors.ErrPendingApproval))

	approved, err := f.svc.Approve(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	u, err := f.svc.Authenticate(ctx, "alice@x.com", "password1")
	require.NoError(t, err)
	assert.True(t, u.IsApproved)
	assert.Equal(t, alice.ID, u.ID)
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice, err := f.svc.Register(ctx, "alice", "alice@x.com", "password1")
	require.NoError(t, err)

	removed, err := f.svc.Reject(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = f.repo.FindByID(ctx, alice.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = f.svc.Authenticate(ctx, "alice@x.com", "password1")
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	removed, err = f.svc.Reject(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestApprove_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Approve(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedDemo(t, f)

	_, err := f.svc.ResetPassword(ctx, "3", "brand-new-pass")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "jane.standard@example.com", "password123")
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	_, err = f.svc.Authenticate(ctx, "jane.standard@example.com", "brand-new-pass")
	assert.NoError(t, err)

	_, err = f.svc.ResetPassword(ctx, "missing", "whatever1")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCreateByAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.svc.CreateByAdmin(ctx, "bob", "bob@x.com", "password1", "", true)
	require.NoError(t, err)
	assert.Equal(t, users.RoleStandard, u.Role)
	assert.True(t, u.IsApproved)

	_, err = f.svc.Authenticate(ctx, "bob@x.com", "password1")
	assert.NoError(t, err)

	admin, err := f.svc.CreateByAdmin(ctx, "root", "root@x.com", "password1", users.RoleAdmin, false)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsApproved)

	_, err = f.svc.CreateByAdmin(ctx, "eve", "eve@x.com", "password1", "owner", true)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = f.svc.CreateByAdmin(ctx, "bob2", "bob@x.com", "password1", users.RoleStandard, true)
	assert.True(t, errors.Is(err, errors.ErrDuplicateEmail))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedDemo(t, f)

	removed, err := f.svc.Delete(ctx, "3")
	require.NoError(t, err)
	assert.True(t, removed)

	list, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	removed, err = f.svc.Delete(ctx, "3")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCanAccess(t *testing.T) {
	admin := users.PublicUser{ID: "1", Role: users.RoleAdmin}
	jane := users.PublicUser{ID: "3", Role: users.RoleStandard}

	assert.True(t, CanAccess(admin, "3"))
	assert.True(t, CanAccess(jane, "3"))
	assert.False(t, CanAccess(jane, "1"))
}

func TestUserDataPath(t *testing.T) {
	assert.Equal(t, "user_data/42/", UserDataPath("42"))
}
