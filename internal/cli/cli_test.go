package cli

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"resumegenius/internal/config"
	"resumegenius/internal/errors"
	"resumegenius/internal/users"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "8080",
			TLS:  config.TLSConfig{Mode: "disabled"},
		},
		Auth:    config.AuthConfig{BcryptCost: 4},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		Session: config.SessionConfig{
			Store: config.SessionStoreMemory,
			TTL:   time.Hour,
		},
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := executeWith(context.Background(), cmd, cfg, errors.NewNopLogger())
	return out.String(), err
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := errors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, testConfig(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "resumegenius version "+Version)
	assert.Contains(t, out, "Git commit:")
}

func TestUsersCommand_RequiresPersistentStore(t *testing.T) {
	_, err := run(t, testConfig(), "users", "list")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errorCode(t, err))
}

func TestUsersCommand_RejectsUnknownFormat(t *testing.T) {
	_, err := run(t, testConfig(), "users", "list", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errorCode(t, err))
}

func TestMigrateCommand_RequiresPostgres(t *testing.T) {
	_, err := run(t, testConfig(), "migrate")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errorCode(t, err))
}

func TestApplyServeFlags(t *testing.T) {
	cfg := testConfig()
	cmd := newServeCmd()
	require.NoError(t, cmd.Flags().Set("port", "9090"))
	require.NoError(t, cmd.Flags().Set("tls-mode", "server"))

	applyServeFlags(cmd, cfg)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "server", cfg.Server.TLS.Mode)
	assert.Equal(t, "localhost", cfg.Server.Host, "unset flags keep the configured value")
	assert.Error(t, cfg.ValidateTLSConfig(), "server mode without a key pair is invalid")
}

func TestOpenUserStore_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	logger := errors.NewNopLogger()

	store, err := openUserStore(ctx, cfg, logger)
	require.NoError(t, err)
	defer func() { _ = store.close() }()

	stats, healthy := store.stats()
	assert.True(t, healthy)
	assert.Equal(t, config.StorageDriverMemory, stats["driver"])

	svc := newAuthService(cfg, store.repo, logger)
	require.NoError(t, seedDemoUsers(ctx, svc, store.repo, logger))
	require.NoError(t, seedDemoUsers(ctx, svc, store.repo, logger))

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(users.DemoUsers))

	u, err := svc.Authenticate(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}

func TestBreakerStats_ReportsBreakerState(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      5,
		FailureThreshold: 0.5,
	}
	repo := users.NewBreakerRepository(users.NewMemoryRepository(), cfg.Storage.CircuitBreaker, errors.NewNopLogger())

	stats, healthy := breakerStats(repo, config.StorageDriverPostgres)()
	assert.True(t, healthy)
	assert.Equal(t, config.StorageDriverPostgres, stats["driver"])
	assert.Contains(t, stats, "circuitBreaker")
}

func TestOpenSessionStore(t *testing.T) {
	ctx := context.Background()
	logger := errors.NewNopLogger()

	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := openSessionStore(ctx, testConfig(), logger)
		require.NoError(t, err)
		assert.NotNil(t, store)
		assert.NoError(t, closeFn())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.Session.Store = config.SessionStoreRedis
		cfg.Session.Redis = config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "test:"}

		store, closeFn, err := openSessionStore(ctx, cfg, logger)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "sid", map[string]string{"user": "{}"}))
		assert.True(t, mr.Exists("test:sid"))
		assert.NoError(t, closeFn())
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := testConfig()
		cfg.Session.Store = config.SessionStoreRedis
		cfg.Session.Redis = config.RedisConfig{Addr: addr}

		_, _, err := openSessionStore(ctx, cfg, logger)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeSessionStoreFailed, errorCode(t, err))
	})
}

func TestRemoved(t *testing.T) {
	msg, err := removed(true, nil)
	require.NoError(t, err)
	assert.Equal(t, "User removed", msg)

	_, err = removed(false, nil)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
