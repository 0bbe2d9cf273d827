package session

import (
	"context"
	"time"

	"resumegenius/internal/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session in a Redis hash. Writes go through MULTI/EXEC
// so the hash is replaced as a whole.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	// Client is an existing client. When set, Addr, Password and DB are ignored.
	Client    redis.UniversalClient
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := opts.Client
	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
	}
	return &RedisStore{client: client, prefix: opts.KeyPrefix, ttl: opts.TTL}
}

// Ping verifies the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.NewNetworkError(errors.ErrCodeSessionStoreFailed, "Session store is unreachable", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(sid string) string {
	return s.prefix + sid
}

func (s *RedisStore) Get(ctx context.Context, sid string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sid)).Result()
	if err != nil {
		return nil, storeError("read", err)
	}
	return fields, nil
}

func (s *RedisStore) Set(ctx context.Context, sid string, fields map[string]string) error {
	key := s.key(sid)
	values := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		values = append(values, k, v)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return storeError("write", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return storeError("delete", err)
	}
	return nil
}

func storeError(op string, err error) error {
	return errors.NewNetworkError(errors.ErrCodeSessionStoreFailed, "Session store "+op+" failed", err)
}
