// Package cache implements the three-tier TTL cache used by the
// discovery pipeline: search results, channel signals, and buyer
// scores. One generic Tier abstraction is instantiated per tier on top
// of a pluggable byte Store (Redis, Postgres, or in-memory).
package cache

import (
	"context"
	"time"
)

// Store is the byte-level cache contract. An expired entry is
// logically absent: implementations evict it before reporting a miss
// (lazy eviction, no stale reads). Puts replace existing entries
// atomically. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Stats describes the state of a durable store, for the cache hygiene
// endpoints.
type Stats struct {
	TotalEntries   int64 `json:"totalEntries"`
	ExpiredEntries int64 `json:"expiredEntries"`
	ActiveEntries  int64 `json:"activeEntries"`
}

// Sweeper is implemented by stores that retain expired rows until
// swept (the Postgres store). Lazy eviction keeps reads correct
// without it; sweeping is memory hygiene only.
type Sweeper interface {
	PurgeExpired(ctx context.Context) (int64, error)
	CacheStats(ctx context.Context) (Stats, error)
}
