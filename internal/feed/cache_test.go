package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx, "lines")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "lines", []byte("payload"), 30*time.Second))

	v, ok, err := c.Get(ctx, "lines")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", string(v))

	now = now.Add(29 * time.Second)
	_, ok, _ = c.Get(ctx, "lines")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = c.Get(ctx, "lines")
	assert.False(t, ok, "entry should expire at its ttl")
}

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	_, ok, err := c.Get(ctx, "lines")
	require.NoError(t, err, "a missing key is a miss, not an error")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "lines", []byte("payload"), 30*time.Second))

	stored, err := mr.Get("feed:lines")
	require.NoError(t, err)
	assert.Equal(t, "payload", stored)
	assert.Equal(t, 30*time.Second, mr.TTL("feed:lines"))

	v, ok, err := c.Get(ctx, "lines")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", string(v))

	mr.FastForward(30 * time.Second)
	_, ok, err = c.Get(ctx, "lines")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire at its ttl")
}

func TestRedisCacheServerErrors(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	mr.SetError("LOADING redis is loading")
	_, ok, err := c.Get(ctx, "lines")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "lines", []byte("x"), time.Minute))
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), addr)
	assert.ErrorContains(t, err, "connecting to redis")
}

func TestLinesThroughRedisCache(t *testing.T) {
	c, _ := newTestRedisCache(t)

	getter := new(mockGetter)
	getter.On("Get", mock.Anything, "http://feed/lines", mock.Anything).Return([]byte(payload), nil).Once()

	client := NewClient("http://feed/lines", "", getter, c, time.Minute, nil)
	for i := 0; i < 2; i++ {
		lines, err := client.Lines(context.Background())
		require.NoError(t, err)
		assert.Len(t, lines, 2)
	}
	getter.AssertExpectations(t)
}
