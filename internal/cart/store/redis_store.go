package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cartwright/internal/domain"
)

const cartKeyPrefix = "cart:"

// RedisStore keeps cart state in Redis with a TTL refreshed on every write,
// so active carts survive and abandoned ones expire.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	cartID := uuid.NewString()
	if err := s.Set(ctx, cartID, domain.CartState{}); err != nil {
		return "", err
	}
	return cartID, nil
}

func (s *RedisStore) Get(ctx context.Context, cartID string) (domain.CartState, error) {
	raw, err := s.client.Get(ctx, cartKeyPrefix+cartID).Result()
	if err == redis.Nil {
		return domain.CartState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart %s: %w", cartID, err)
	}

	var state domain.CartState
	if err := json.Unmarshal([]byte(raw), &state); err != nil || state == nil {
		// Corrupted value; treat like an expired cart.
		return domain.CartState{}, nil
	}
	return state, nil
}

func (s *RedisStore) Set(ctx context.Context, cartID string, state domain.CartState) error {
	if state == nil {
		state = domain.CartState{}
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding cart %s: %w", cartID, err)
	}

	if err := s.client.Set(ctx, cartKeyPrefix+cartID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing cart %s: %w", cartID, err)
	}
	return nil
}
