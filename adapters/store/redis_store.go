package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/sigil/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the NonceLedger interface.
// It lets several instances share one replay window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis nonce ledger
func NewRedisStore(client *redis.Client) ports.NonceLedger {
	return &RedisStore{
		client: client,
		prefix: "sigil:nonce:",
	}
}

// Consume marks a nonce as used in Redis
func (s *RedisStore) Consume(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, s.prefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}

	return fresh, nil
}
