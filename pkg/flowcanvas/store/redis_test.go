package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreContract(t *testing.T) {
	storeContractTest(t, "Redis", func(t *testing.T) store.Store {
		mr := miniredis.RunT(t)
		return store.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	})
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	s := store.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer s.Close()
	require.NoError(t, s.Put(ctx, "flow-key", []byte(`{"nodes":[]}`)))

	raw, err := mr.Get(store.DefaultRedisPrefix + "flow-key")
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[]}`, raw)
	assert.False(t, mr.Exists("flow-key"))
}

func TestDialRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	s, err := store.Open(ctx, "redis", store.Params{RedisURL: "redis://" + mr.Addr() + "/0", RedisPrefix: "dial:"})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &store.RedisStore{}, s)

	require.NoError(t, s.Put(ctx, "flow-key", []byte("v")))
	got, err := s.Get(ctx, "flow-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.True(t, mr.Exists("dial:flow-key"))
}

// unreachableClient points at a port nothing listens on.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s := store.NewRedisStore(unreachableClient(), "")
	defer s.Close()

	err := s.Put(ctx, "flow-key", []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis SET")

	_, err = s.Get(ctx, "flow-key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	assert.Error(t, s.Delete(ctx, "flow-key"))
}

func TestRedisStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := store.NewRedisStore(unreachableClient(), "test:")

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), store.ErrStoreClosed)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrStoreClosed)
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := store.DialRedis(context.Background(), "not-a-url", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestDialRedis_NoServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := store.DialRedis(ctx, "redis://127.0.0.1:1/0?dial_timeout=200ms&max_retries=-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis PING")
}
