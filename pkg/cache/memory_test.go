package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemoryCacheTTL(t *testing.T) {
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryClock(clock.now))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.SetBytes(ctx, "ecowatt", []byte("payload"), 15*time.Minute))
	got, err := mc.GetBytes(ctx, "ecowatt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	clock.advance(16 * time.Minute)
	_, err = mc.GetBytes(ctx, "ecowatt")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheZeroTTLIsNotStored(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.SetBytes(context.Background(), "k", []byte("v"), 0))
	_, err := mc.GetBytes(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clock.now))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.SetBytes(ctx, "a", []byte("1"), time.Hour))
	clock.advance(time.Second)
	require.NoError(t, mc.SetBytes(ctx, "b", []byte("2"), time.Hour))
	clock.advance(time.Second)
	_, err := mc.GetBytes(ctx, "a")
	require.NoError(t, err)
	clock.advance(time.Second)
	require.NoError(t, mc.SetBytes(ctx, "c", []byte("3"), time.Hour))

	_, err = mc.GetBytes(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.GetBytes(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, mc.SetBytes(ctx, "k", buf, time.Hour))
	buf[0] = 'x'

	got, err := mc.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryCacheCleanupDropsExpired(t *testing.T) {
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryCleanup(5*time.Millisecond), WithMemoryClock(clock.now))
	defer mc.Close()

	require.NoError(t, mc.SetBytes(context.Background(), "ecogaz", []byte("payload"), time.Minute))
	clock.advance(2 * time.Minute)

	require.Eventually(t, func() bool {
		mc.mu.Lock()
		defer mc.mu.Unlock()
		return len(mc.data) == 0
	}, time.Second, 5*time.Millisecond)
}
