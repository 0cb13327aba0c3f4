package checkout

import (
	"context"
	"time"

	redisdriver "github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "checkout:idem:"

// IdempotencyGuard remembers checkout attempts so a retried request cannot
// open a second payment session.
type IdempotencyGuard struct {
	client *redisdriver.Client
	ttl    time.Duration
}

func NewIdempotencyGuard(client *redisdriver.Client, ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// Begin claims the key. The first caller wins; every later caller within the
// TTL gets false.
func (g *IdempotencyGuard) Begin(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, idempotencyKeyPrefix+key, "1", g.ttl).Result()
}

// Clear releases the key so a failed attempt can be retried immediately.
func (g *IdempotencyGuard) Clear(ctx context.Context, key string) error {
	return g.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
