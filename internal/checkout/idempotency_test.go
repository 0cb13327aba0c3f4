package checkout

import (
	"context"
	"os"
	"testing"
	"time"

	redisdriver "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redisdriver.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redisdriver.NewClient(&redisdriver.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	return client
}

func TestIdempotencyGuard_FirstClaimWins(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	guard := NewIdempotencyGuard(client, time.Minute)
	key := "test-" + t.Name()
	defer guard.Clear(context.Background(), key)

	first, err := guard.Begin(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := guard.Begin(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, second)
}

func TestIdempotencyGuard_ClearAllowsRetry(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	guard := NewIdempotencyGuard(client, time.Minute)
	key := "test-" + t.Name()

	first, err := guard.Begin(context.Background(), key)
	require.NoError(t, err)
	require.True(t, first)

	require.NoError(t, guard.Clear(context.Background(), key))

	again, err := guard.Begin(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, again)
	guard.Clear(context.Background(), key)
}

func TestIdempotencyGuard_KeyExpires(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	guard := NewIdempotencyGuard(client, 50*time.Millisecond)
	key := "test-" + t.Name()

	first, err := guard.Begin(context.Background(), key)
	require.NoError(t, err)
	require.True(t, first)

	time.Sleep(80 * time.Millisecond)

	again, err := guard.Begin(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, again)
	guard.Clear(context.Background(), key)
}
