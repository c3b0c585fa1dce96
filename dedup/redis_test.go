package dedup_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Sathursan-S/Ticketer/dedup"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a running redis, e.g. REDIS_ADDR=localhost:6379.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		_ = client.Close()
	})

	ctx := context.Background()
	store := dedup.NewRedisStore(client, time.Minute)
	key := "reserve-tickets:" + uuid.NewString()

	first, err := store.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.Claim(ctx, key)
	require.NoError(t, err)
	assert.False(t, second)

	require.NoError(t, store.Release(ctx, key))

	again, err := store.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, again)
}
