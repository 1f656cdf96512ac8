package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Tier names. Part of every cache key, so two tiers never collide even
// when sharing one Store.
const (
	TierSearch = "search"
	TierSignal = "signal"
	TierScore  = "score"
)

// Tier is a typed view over a byte Store: one logical cache (search
// results, channel signals, or scores) with a fixed TTL and JSON
// payloads. An unparseable payload is treated as corruption: the entry
// is evicted and reported as a miss.
type Tier[T any] struct {
	name  string
	store Store
	ttl   time.Duration
}

// NewTier creates a typed tier over the given store.
func NewTier[T any](name string, store Store, ttl time.Duration) *Tier[T] {
	return &Tier[T]{name: name, store: store, ttl: ttl}
}

// Key composes the deterministic cache key for this tier from a
// normalized query and a filter/context fingerprint.
func (t *Tier[T]) Key(normalizedQuery, fingerprint string) string {
	return fmt.Sprintf("dw:%s:%s:%s", t.name, normalizedQuery, fingerprint)
}

// Get returns the cached value, or ok=false on miss, expiry, or
// corruption.
func (t *Tier[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	payload, ok, err := t.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		log.Warn().Str("tier", t.name).Str("key", key).Err(err).Msg("cache: corrupt payload, evicting")
		if evictErr := t.store.Invalidate(ctx, key); evictErr != nil {
			return zero, false, evictErr
		}
		return zero, false, nil
	}
	return v, true, nil
}

// Put stores the value under the tier's TTL, replacing any existing
// entry.
func (t *Tier[T]) Put(ctx context.Context, key string, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: marshal %s entry: %w", t.name, err)
	}
	return t.store.Put(ctx, key, payload, t.ttl)
}

// Invalidate removes the entry, if any.
func (t *Tier[T]) Invalidate(ctx context.Context, key string) error {
	return t.store.Invalidate(ctx, key)
}
