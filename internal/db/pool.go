package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	maxRetries    = 5
	retryInterval = 2 * time.Second
)

// NewPool connects to Postgres with bounded retry, so the service
// survives a database that comes up slower than it does.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				log.Info().Msg("database connected")
				return pool, nil
			} else {
				pool.Close()
				err = pingErr
			}
		}

		log.Warn().Int("attempt", attempt).Int("max", maxRetries).Err(err).Msg("database connection failed")
		if attempt < maxRetries {
			time.Sleep(retryInterval)
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", maxRetries, err)
}

// EnsureSchema creates the discovery tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS channels (
			channel_id       TEXT PRIMARY KEY,
			title            TEXT NOT NULL DEFAULT '',
			description      TEXT NOT NULL DEFAULT '',
			country          TEXT NOT NULL DEFAULT '',
			subscribers      BIGINT,
			view_count       BIGINT NOT NULL DEFAULT 0,
			video_count      BIGINT NOT NULL DEFAULT 0,
			uploads_playlist TEXT NOT NULL DEFAULT '',
			keyword          TEXT NOT NULL DEFAULT '',
			first_seen       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_updated     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS channel_snapshots (
			channel_id       TEXT PRIMARY KEY REFERENCES channels(channel_id),
			avg_recent_views DOUBLE PRECISION NOT NULL DEFAULT 0,
			engagement_rate  DOUBLE PRECISION NOT NULL DEFAULT 0,
			videos_sampled   INT NOT NULL DEFAULT 0,
			niche            TEXT NOT NULL DEFAULT 'default',
			cpm_min          DOUBLE PRECISION NOT NULL DEFAULT 0,
			cpm_max          DOUBLE PRECISION NOT NULL DEFAULT 0,
			rpm_min          DOUBLE PRECISION NOT NULL DEFAULT 0,
			rpm_max          DOUBLE PRECISION NOT NULL DEFAULT 0,
			price_min        DOUBLE PRECISION NOT NULL DEFAULT 0,
			price_max        DOUBLE PRECISION NOT NULL DEFAULT 0,
			profit_min       DOUBLE PRECISION NOT NULL DEFAULT 0,
			profit_max       DOUBLE PRECISION NOT NULL DEFAULT 0,
			computed_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_channels_keyword ON channels(keyword);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
