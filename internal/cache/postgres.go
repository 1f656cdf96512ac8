package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the durable Store backend, for deployments where cached
// search results must survive restarts. Rows carry their own expiry;
// reads evict lazily and a periodic sweep keeps the table small.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates the store and ensures the cache_entries table
// exists.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			payload    BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("create cache_entries: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	var expiresAt time.Time
	err := p.pool.QueryRow(ctx,
		`SELECT payload, expires_at FROM cache_entries WHERE key = $1`, key).
		Scan(&payload, &expiresAt)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if time.Now().After(expiresAt) {
		// Expired rows are logically absent; evict before reporting the miss.
		if _, err := p.pool.Exec(ctx, `DELETE FROM cache_entries WHERE key = $1`, key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return payload, true, nil
}

func (p *Postgres) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO cache_entries (key, payload, created_at, expires_at)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at`,
		key, payload, time.Now().Add(ttl))
	return err
}

func (p *Postgres) Invalidate(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM cache_entries WHERE key = $1`, key)
	return err
}

// PurgeExpired removes every expired row and reports how many were
// deleted.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM cache_entries WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CacheStats reports entry counts for the hygiene endpoint.
func (p *Postgres) CacheStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE expires_at < NOW())
		FROM cache_entries`).
		Scan(&s.TotalEntries, &s.ExpiredEntries)
	if err != nil {
		return Stats{}, err
	}
	s.ActiveEntries = s.TotalEntries - s.ExpiredEntries
	return s, nil
}
