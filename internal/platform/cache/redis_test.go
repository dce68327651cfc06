package cache

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisStore(client)
}

func TestRedisStore_SetGet(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 10*time.Second))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 10*time.Second, mr.TTL("k"))
}

func TestRedisStore_Miss(t *testing.T) {
	_, store := setupTestRedis(t)

	got, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisStore_Expires(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Second))

	mr.FastForward(2 * time.Second)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_DeletePrefix(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		key := ResponseKey("/api/patients", url.Values{"page": {strconv.Itoa(i)}})
		require.NoError(t, store.Set(ctx, key, []byte("x"), time.Minute))
	}
	require.NoError(t, store.Set(ctx, "other:key", []byte("keep"), time.Minute))

	require.NoError(t, store.DeletePrefix(ctx, KeyPrefix+"/api/patients"))

	assert.Equal(t, []string{"other:key"}, mr.Keys())
}

func TestRedisStore_DeleteNoKeys(t *testing.T) {
	_, store := setupTestRedis(t)
	assert.NoError(t, store.Delete(context.Background()))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
