package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client supplied request keys so a retried
// mutation is rejected instead of applied twice.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key, used when the guarded operation failed.
	Forget(ctx context.Context, key string) error

	Close() error
}

// DefaultIdempotencyTTL is how long a payment request key is remembered.
const DefaultIdempotencyTTL = 24 * time.Hour
