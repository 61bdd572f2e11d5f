package store

import (
	"context"
	"time"

	"github.com/layer-3/sigil/ports"
	"github.com/patrickmn/go-cache"
)

// MemoryStore is an in-memory implementation of the NonceLedger interface.
// Nonces are only remembered by the process that consumed them.
type MemoryStore struct {
	used *cache.Cache
}

// NewMemoryStore creates a new in-memory nonce ledger that sweeps expired
// entries every cleanupInterval
func NewMemoryStore(cleanupInterval time.Duration) ports.NonceLedger {
	return &MemoryStore{
		used: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// Consume marks a nonce as used
func (s *MemoryStore) Consume(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	// Add fails while an unexpired entry exists, which makes it a set-if-absent
	if err := s.used.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}
