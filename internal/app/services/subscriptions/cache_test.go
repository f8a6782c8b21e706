package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitreon-labs/bitreon/internal/app/domain/subscription"
)

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Unix(1_000, 0)
	cache := NewMemoryCache(15 * time.Second).WithClock(func() time.Time { return now })

	cache.Set(context.Background(), "STSUB", 1, Status{Subscribed: true})

	st, ok := cache.Get(context.Background(), "STSUB", 1)
	require.True(t, ok)
	assert.True(t, st.Subscribed)

	now = now.Add(16 * time.Second)
	_, ok = cache.Get(context.Background(), "STSUB", 1)
	assert.False(t, ok, "entry past its TTL must be a miss")
}

func TestMemoryCacheInvalidate(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	cache.Set(context.Background(), "STSUB", 1, Status{Subscribed: true})
	cache.Set(context.Background(), "STSUB", 2, Status{Subscribed: true})

	cache.Invalidate(context.Background(), "STSUB", 1)

	_, ok := cache.Get(context.Background(), "STSUB", 1)
	assert.False(t, ok)
	_, ok = cache.Get(context.Background(), "STSUB", 2)
	assert.True(t, ok, "other pairs must be untouched")
}

func TestMemoryCacheKeysArePerPair(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	cache.Set(context.Background(), "STSUB", 1, Status{Subscribed: true})

	_, ok := cache.Get(context.Background(), "STOTHER", 1)
	assert.False(t, ok)
	_, ok = cache.Get(context.Background(), "STSUB", 2)
	assert.False(t, ok)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)

	cache, err := NewRedisCache("redis://"+srv.Addr(), time.Minute, nil)
	require.NoError(t, err)
	defer cache.Close()

	sub := &subscription.Subscription{
		Subscriber: "STSUB",
		CreatorID:  1,
		Active:     true,
		ExpiresAt:  9_999_999,
	}
	cache.Set(context.Background(), "STSUB", 1, Status{
		Subscribed:   true,
		Subscription: sub,
		ResolvedAt:   time.Unix(1_000, 0).UTC(),
	})

	st, ok := cache.Get(context.Background(), "STSUB", 1)
	require.True(t, ok)
	assert.True(t, st.Subscribed)
	require.NotNil(t, st.Subscription)
	assert.Equal(t, uint64(1), st.Subscription.CreatorID)

	cache.Invalidate(context.Background(), "STSUB", 1)
	_, ok = cache.Get(context.Background(), "STSUB", 1)
	assert.False(t, ok)
}

func TestRedisCacheExpiry(t *testing.T) {
	srv := miniredis.RunT(t)

	cache, err := NewRedisCache("redis://"+srv.Addr(), time.Second, nil)
	require.NoError(t, err)
	defer cache.Close()

	cache.Set(context.Background(), "STSUB", 1, Status{Subscribed: true})
	srv.FastForward(2 * time.Second)

	_, ok := cache.Get(context.Background(), "STSUB", 1)
	assert.False(t, ok)
}

func TestRedisCacheUnreachableIsMiss(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	cache, err := NewRedisCache("redis://"+addr, time.Minute, nil)
	require.NoError(t, err)

	cache.Set(context.Background(), "STSUB", 1, Status{Subscribed: true})
	_, ok := cache.Get(context.Background(), "STSUB", 1)
	assert.False(t, ok, "a degraded cache must report a miss, not fail")
}
