package ports

import (
	"context"
	"time"
)

// NonceLedger records challenge nonces that have already been redeemed
type NonceLedger interface {
	// Consume marks key as used for ttl and reports whether it was unused before the call
	Consume(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
