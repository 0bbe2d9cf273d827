package cli

import (
	"context"
	"database/sql"
	"time"

	"resumegenius/internal/auth"
	"resumegenius/internal/config"
	"resumegenius/internal/errors"
	"resumegenius/internal/session"
	"resumegenius/internal/users"
)

// userStore is an opened credential store.
type userStore struct {
	repo  users.Repository
	stats func() (map[string]any, bool)
	close func() error
}

func openUserStore(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*userStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.MigrateOnStart {
			if err := users.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
			logger.Info("Database migrations applied")
		}

		repo := users.NewBreakerRepository(users.NewPostgresRepository(db), cfg.Storage.CircuitBreaker, logger)
		return &userStore{
			repo:  repo,
			stats: breakerStats(repo, config.StorageDriverPostgres),
			close: db.Close,
		}, nil

	default:
		repo := users.NewMemoryRepository()
		return &userStore{
			repo:  repo,
			stats: breakerStats(repo, config.StorageDriverMemory),
			close: func() error { return nil },
		}, nil
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return users.OpenPostgres(ctx, cfg.Storage.DSN, users.PoolOptions{
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
	})
}

func breakerStats(repo users.Repository, driver string) func() (map[string]any, bool) {
	return func() (map[string]any, bool) {
		stats := map[string]any{"driver": driver}
		br, ok := repo.(*users.BreakerRepository)
		if !ok {
			return stats, true
		}
		stats["circuitBreaker"] = br.Stats()
		return stats, br.IsHealthy()
	}
}

// openSessionStore returns the configured session store and its closer.
func openSessionStore(ctx context.Context, cfg *config.Config, logger *errors.Logger) (session.Store, func() error, error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return session.NewMemoryStore(cfg.Session.TTL), func() error { return nil }, nil
	}

	store := session.NewRedisStore(session.RedisOptions{
		Addr:      cfg.Session.Redis.Addr,
		Password:  cfg.Session.Redis.Password,
		DB:        cfg.Session.Redis.DB,
		KeyPrefix: cfg.Session.Redis.KeyPrefix,
		TTL:       cfg.Session.TTL,
	})
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	logger.Info("Connected to session store", "addr", cfg.Session.Redis.Addr)
	return store, store.Close, nil
}

func newAuthService(cfg *config.Config, repo users.Repository, logger *errors.Logger) *auth.Service {
	return auth.NewService(repo, auth.NewBcryptHasher(cfg.Auth.BcryptCost), auth.WithLogger(logger))
}

func seedDemoUsers(ctx context.Context, svc *auth.Service, repo users.Repository, logger *errors.Logger) error {
	n, err := users.Seed(ctx, repo, svc.Hasher(), time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Seeded demo users", "count", n)
	}
	return nil
}
