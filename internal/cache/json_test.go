package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barber-billing/internal/cache"
	"github.com/noah-isme/barber-billing/internal/resilience"
)

type payload struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

func TestJSONRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewJSON(client, "test:", time.Minute)
	ctx := context.Background()

	var out payload
	hit, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", payload{Name: "a", Total: 35000}))
	require.True(t, mr.Exists("test:k"))

	hit, err = c.Get(ctx, "k", &out)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, payload{Name: "a", Total: 35000}, out)

	mr.FastForward(2 * time.Minute)
	hit, err = c.Get(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestJSONDisabled(t *testing.T) {
	c := cache.NewJSON(nil, "x:", time.Minute)
	require.False(t, c.Enabled())
	require.NoError(t, c.Set(context.Background(), "k", 1))
	var v int
	hit, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestKey(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	require.Equal(t, "an:7:2024-05-01T06:30:00Z:-:-", cache.Key("an", uint64(7), at, time.Time{}, ""))
}

func TestJSONBreakerSkipsRedisWhenOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	breaker := resilience.NewBreaker("report_cache", 1, 0.5, time.Hour)
	c := cache.NewJSON(client, "test:", time.Minute).WithBreaker(breaker)
	ctx := context.Background()

	var out payload
	hit, err := c.Get(ctx, "absent", &out)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, resilience.Closed, breaker.State())

	mr.Close()
	_, err = c.Get(ctx, "k", &out)
	require.Error(t, err)
	require.Equal(t, resilience.Open, breaker.State())

	hit, err = c.Get(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, c.Set(ctx, "k", payload{Name: "a"}))
}
