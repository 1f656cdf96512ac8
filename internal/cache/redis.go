package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis is the primary Store backend. Expiry is delegated to Redis
// TTLs, so lazy eviction is native. A nil client degrades every
// operation to a no-op miss, matching how the service runs without a
// cache configured.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects to Redis by URL. If the URL is empty or the
// connection fails, caching is disabled rather than fatal.
func NewRedis(redisURL string) *Redis {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &Redis{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Str("url", redisURL).Msg("redis: invalid URL, caching disabled")
		return &Redis{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &Redis{}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &Redis{rdb: rdb}
}

// Client returns the underlying Redis client for health checks. May be nil.
func (r *Redis) Client() *redis.Client {
	return r.rdb
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.rdb == nil {
		return nil, false, nil
	}
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *Redis) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Set(ctx, key, payload, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, key string) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, key).Err()
}
