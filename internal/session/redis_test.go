package session

import (
	"context"
	"testing"
	"time"

	"resumegenius/internal/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(RedisOptions{Client: client, KeyPrefix: "rg:session:", TTL: ttl}), mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	require.NoError(t, store.Set(ctx, "abc", map[string]string{FieldUser: `{"id":"1"}`, FieldToken: "tok"}))

	assert.Equal(t, "tok", mr.HGet("rg:session:abc", FieldToken))
	assert.Equal(t, time.Hour, mr.TTL("rg:session:abc"))

	fields, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{FieldUser: `{"id":"1"}`, FieldToken: "tok"}, fields)

	require.NoError(t, store.Delete(ctx, "abc"))
	assert.False(t, mr.Exists("rg:session:abc"))

	fields, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestRedisStore_SetReplacesWholeHash(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 0)

	mr.HSet("rg:session:abc", "stale", "x")
	require.NoError(t, store.Set(ctx, "abc", map[string]string{FieldUser: "u", FieldToken: "t"}))

	fields, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.NotContains(t, fields, "stale")
	assert.Len(t, fields, 2)
}

func TestRedisStore_Expires(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	require.NoError(t, store.Set(ctx, "abc", map[string]string{FieldUser: "u", FieldToken: "t"}))
	mr.FastForward(2 * time.Minute)

	fields, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestRedisStore_ManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t, time.Hour)
	m := NewManager(store, errors.NewNopLogger())

	require.NoError(t, m.Save(ctx, "abc", jane, "tok"))
	s, err := m.Restore(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, jane, s.User)
}

func TestRedisStore_Unreachable(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 0)
	mr.Close()

	_, err := store.Get(ctx, "abc")
	assert.True(t, errors.Is(err, errors.NewNetworkError(errors.ErrCodeSessionStoreFailed, "", nil)))
	assert.Error(t, store.Ping(ctx))
}
