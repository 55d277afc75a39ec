package seen_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/seen"
)

// redisURL skips the test unless a live server is configured:
// REDIS_URL=redis://localhost:6379/15 go test ./internal/seen
func redisURL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	return url
}

func TestRedisStore_RoundTrip(t *testing.T) {
	url := redisURL(t)
	ctx := context.Background()
	key := "jobalert:test:" + t.Name()

	s, err := seen.OpenRedis(ctx, url, key, nil)
	require.NoError(t, err)

	c := seen.New()
	c.Record("Acme:1", time.Unix(1700000000, 0))
	require.NoError(t, s.Save(ctx, c))

	// The lock is held until Close.
	_, err = seen.OpenRedis(ctx, url, key, nil)
	assert.ErrorIs(t, err, seen.ErrCacheLocked)
	require.NoError(t, s.Close())

	s2, err := seen.OpenRedis(ctx, url, key, nil)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Contains("Acme:1"))
	require.NoError(t, s2.Save(ctx, seen.New()))
}

func TestRedisStore_LockOutlivesTTL(t *testing.T) {
	url := redisURL(t)
	ctx := context.Background()
	key := "jobalert:test:" + t.Name()

	s, err := seen.OpenRedisTTL(ctx, url, key, 300*time.Millisecond, nil)
	require.NoError(t, err)
	defer s.Close()

	time.Sleep(time.Second)

	_, err = seen.OpenRedisTTL(ctx, url, key, 300*time.Millisecond, nil)
	assert.ErrorIs(t, err, seen.ErrCacheLocked, "a long-lived store keeps its lock")
	require.NoError(t, s.Save(ctx, seen.New()))
}

func TestRedisStore_SaveRefusedAfterLockLost(t *testing.T) {
	url := redisURL(t)
	ctx := context.Background()
	key := "jobalert:test:" + t.Name()

	s, err := seen.OpenRedisTTL(ctx, url, key, 300*time.Millisecond, nil)
	require.NoError(t, err)
	defer s.Close()

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	other := redis.NewClient(opts)
	defer other.Close()
	require.NoError(t, other.Set(ctx, key+":lock", "someone-else", time.Minute).Err())
	defer other.Del(ctx, key+":lock")

	assert.Eventually(t, func() bool {
		return errors.Is(s.Save(ctx, seen.New()), seen.ErrLockLost)
	}, 2*time.Second, 50*time.Millisecond)
}

func TestOpenRedis_EmptyURL(t *testing.T) {
	_, err := seen.OpenRedis(context.Background(), "", "k", nil)
	assert.ErrorIs(t, err, seen.ErrEmptyRedisURL)
}
