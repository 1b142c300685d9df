package cache

import (
	"context"
	"time"
)

// TTLs for the cached read paths. Role changes rarely and only upward, so
// it tolerates the longest staleness of the hot paths. Habit lists change on
// every tracking action and get the shortest window. Wallet addresses never
// change once provisioned.
const (
	RoleTTL   = 10 * time.Minute
	HabitsTTL = time.Minute
	WalletTTL = 24 * time.Hour
)

// Cache is a byte-oriented TTL cache with prefix invalidation. Callers
// serialize their own values; pkg/client wraps this with typed JSON helpers.
//
// Implementations must swap entries atomically so concurrent readers see
// either the previous value or the new one, never a torn record, and must
// treat an entry whose age has reached its TTL as absent.
type Cache interface {
	// Get returns the value stored under key, or false when the key is
	// missing or its entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl. A non-positive ttl stores nothing:
	// an entry that would be born expired is not worth a slot.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Invalidate removes the entry with the given key and every entry whose
	// key starts with it. Mutating operations call this before returning so
	// the next read is guaranteed fresh.
	Invalidate(ctx context.Context, prefixOrKey string)
}
