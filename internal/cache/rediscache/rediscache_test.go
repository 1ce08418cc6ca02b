package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(NewClient(mr.Addr(), "", 0))

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	b, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), b)

	require.NoError(t, c.Del(ctx, "k", "missing"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Del(ctx))
}

func TestRedisCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(NewClient(mr.Addr(), "", 0))

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_ErrorWhenDown(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(NewClient(mr.Addr(), "", 0))
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	require.Error(t, err)
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(NewClient(mr.Addr(), "", 0), "rl:", 2, time.Minute)

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "test")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "test")
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "test")
	require.False(t, ok)
	require.Equal(t, int64(3), n)

	require.True(t, mr.Exists("rl:test"))

	// окно закончилось -> счётчик заново
	mr.FastForward(61 * time.Second)
	ok, n, err = rl.Allow(ctx, "test")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}
