package redis

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/blog-api/internal/core/domain"
)

// fakeRedis overrides the commands FeedCache uses. Any other call panics on
// the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	data    map[string][]byte
	ttls    map[string]time.Duration
	failAll error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	switch v, ok := f.data[key]; {
	case f.failAll != nil:
		cmd.SetErr(f.failAll)
	case !ok:
		cmd.SetErr(redis.Nil)
	default:
		cmd.SetVal(string(v))
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	if f.failAll != nil {
		cmd.SetErr(f.failAll)
		return cmd
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incr", key)
	if f.failAll != nil {
		cmd.SetErr(f.failAll)
		return cmd
	}
	n, _ := strconv.ParseInt(string(f.data[key]), 10, 64)
	n++
	f.data[key] = []byte(strconv.FormatInt(n, 10))
	cmd.SetVal(n)
	return cmd
}

func TestFeedCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	cache := NewFeedCache(rdb, 30*time.Second)

	_, gen, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must miss")
	assert.Zero(t, gen)

	posts := []domain.Post{{ID: "p1", Title: "Hi", Author: domain.Author{ID: "u1", Name: "A"}}}
	require.NoError(t, cache.Set(ctx, gen, posts))
	assert.Equal(t, 30*time.Second, rdb.ttls[feedKey(0)])

	got, _, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, posts, got)

	require.NoError(t, cache.Invalidate(ctx))
	_, gen, ok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "invalidated cache must miss")
	assert.Equal(t, int64(1), gen)
}

func TestFeedCache_SetAfterInvalidateStaysHidden(t *testing.T) {
	ctx := context.Background()
	cache := NewFeedCache(newFakeRedis(), time.Minute)

	// A reader misses and loads the list from storage...
	_, gen, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	stale := []domain.Post{{ID: "p1"}}

	// ...a write lands and invalidates before the reader stores its copy.
	require.NoError(t, cache.Invalidate(ctx))
	require.NoError(t, cache.Set(ctx, gen, stale))

	_, _, ok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "a list read before the write must not be served after it")
}

func TestFeedCache_EmptyListIsAHit(t *testing.T) {
	ctx := context.Background()
	cache := NewFeedCache(newFakeRedis(), 0)

	require.NoError(t, cache.Set(ctx, 0, nil))
	got, _, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestFeedCache_BackendErrors(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	rdb.failAll = errors.New("connection refused")
	cache := NewFeedCache(rdb, time.Minute)

	_, _, _, err := cache.Get(ctx)
	assert.Error(t, err)
	assert.Error(t, cache.Set(ctx, 0, []domain.Post{}))
	assert.Error(t, cache.Invalidate(ctx))
}
