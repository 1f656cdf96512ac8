// Package repository is the Postgres persistence layer for discovered
// channels and their latest estimation snapshots.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WhyILived/Dreamwell/internal/model"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

// UpsertChannel inserts or refreshes a channel record. FirstSeen is
// kept from the original row; everything else is overwritten.
func (r *ChannelRepo) UpsertChannel(ctx context.Context, ch model.Channel) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channels (channel_id, title, description, country, subscribers,
		                      view_count, video_count, uploads_playlist, keyword,
		                      first_seen, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (channel_id) DO UPDATE SET
			title            = EXCLUDED.title,
			description      = EXCLUDED.description,
			country          = EXCLUDED.country,
			subscribers      = EXCLUDED.subscribers,
			view_count       = EXCLUDED.view_count,
			video_count      = EXCLUDED.video_count,
			uploads_playlist = EXCLUDED.uploads_playlist,
			keyword          = EXCLUDED.keyword,
			last_updated     = NOW()`,
		ch.ID, ch.Title, ch.Description, ch.Country, ch.Subscribers,
		ch.ViewCount, ch.VideoCount, ch.UploadsPlaylist, ch.Keyword)
	return err
}

// UpsertSnapshot replaces a channel's estimation snapshot. Later
// passes overwrite earlier ones.
func (r *ChannelRepo) UpsertSnapshot(ctx context.Context, snap model.Snapshot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channel_snapshots (channel_id, avg_recent_views, engagement_rate,
		                               videos_sampled, niche, cpm_min, cpm_max,
		                               rpm_min, rpm_max, price_min, price_max,
		                               profit_min, profit_max, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (channel_id) DO UPDATE SET
			avg_recent_views = EXCLUDED.avg_recent_views,
			engagement_rate  = EXCLUDED.engagement_rate,
			videos_sampled   = EXCLUDED.videos_sampled,
			niche            = EXCLUDED.niche,
			cpm_min          = EXCLUDED.cpm_min,
			cpm_max          = EXCLUDED.cpm_max,
			rpm_min          = EXCLUDED.rpm_min,
			rpm_max          = EXCLUDED.rpm_max,
			price_min        = EXCLUDED.price_min,
			price_max        = EXCLUDED.price_max,
			profit_min       = EXCLUDED.profit_min,
			profit_max       = EXCLUDED.profit_max,
			computed_at      = EXCLUDED.computed_at`,
		snap.ChannelID, snap.AvgRecentViews, snap.EngagementRate,
		snap.VideosSampled, snap.Niche, snap.CPMMin, snap.CPMMax,
		snap.RPMMin, snap.RPMMax, snap.PriceMin, snap.PriceMax,
		snap.ProfitMin, snap.ProfitMax, snap.ComputedAt)
	return err
}

// FindByID returns one channel joined with its snapshot.
func (r *ChannelRepo) FindByID(ctx context.Context, channelID string) (ChannelRow, error) {
	var row ChannelRow
	err := r.pool.QueryRow(ctx, `
		SELECT c.channel_id, c.title, c.description, c.country, c.subscribers,
		       c.view_count, c.video_count, c.uploads_playlist, c.keyword,
		       c.first_seen, c.last_updated,
		       COALESCE(s.avg_recent_views, 0), COALESCE(s.engagement_rate, 0),
		       COALESCE(s.videos_sampled, 0), COALESCE(s.niche, 'default'),
		       COALESCE(s.cpm_min, 0), COALESCE(s.cpm_max, 0),
		       COALESCE(s.rpm_min, 0), COALESCE(s.rpm_max, 0),
		       COALESCE(s.price_min, 0), COALESCE(s.price_max, 0),
		       COALESCE(s.profit_min, 0), COALESCE(s.profit_max, 0),
		       COALESCE(s.computed_at, c.last_updated)
		FROM channels c
		LEFT JOIN channel_snapshots s ON s.channel_id = c.channel_id
		WHERE c.channel_id = $1`, channelID).Scan(
		&row.Channel.ID, &row.Channel.Title, &row.Channel.Description,
		&row.Channel.Country, &row.Channel.Subscribers,
		&row.Channel.ViewCount, &row.Channel.VideoCount,
		&row.Channel.UploadsPlaylist, &row.Channel.Keyword,
		&row.Channel.FirstSeen, &row.Channel.LastUpdated,
		&row.Snapshot.AvgRecentViews, &row.Snapshot.EngagementRate,
		&row.Snapshot.VideosSampled, &row.Snapshot.Niche,
		&row.Snapshot.CPMMin, &row.Snapshot.CPMMax,
		&row.Snapshot.RPMMin, &row.Snapshot.RPMMax,
		&row.Snapshot.PriceMin, &row.Snapshot.PriceMax,
		&row.Snapshot.ProfitMin, &row.Snapshot.ProfitMax,
		&row.Snapshot.ComputedAt,
	)
	if err != nil {
		return ChannelRow{}, err
	}
	row.Snapshot.ChannelID = row.Channel.ID
	return row, nil
}

// ChannelRow joins a channel with its latest snapshot for listing and
// export.
type ChannelRow struct {
	Channel  model.Channel
	Snapshot model.Snapshot
}

// ListChannels returns stored channels newest-first, joined with their
// snapshots when present.
func (r *ChannelRepo) ListChannels(ctx context.Context, limit int) ([]ChannelRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.channel_id, c.title, c.description, c.country, c.subscribers,
		       c.view_count, c.video_count, c.uploads_playlist, c.keyword,
		       c.first_seen, c.last_updated,
		       COALESCE(s.avg_recent_views, 0), COALESCE(s.engagement_rate, 0),
		       COALESCE(s.videos_sampled, 0), COALESCE(s.niche, 'default'),
		       COALESCE(s.cpm_min, 0), COALESCE(s.cpm_max, 0),
		       COALESCE(s.rpm_min, 0), COALESCE(s.rpm_max, 0),
		       COALESCE(s.price_min, 0), COALESCE(s.price_max, 0),
		       COALESCE(s.profit_min, 0), COALESCE(s.profit_max, 0),
		       COALESCE(s.computed_at, c.last_updated)
		FROM channels c
		LEFT JOIN channel_snapshots s ON s.channel_id = c.channel_id
		ORDER BY c.last_updated DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChannelRow
	for rows.Next() {
		var row ChannelRow
		if err := rows.Scan(
			&row.Channel.ID, &row.Channel.Title, &row.Channel.Description,
			&row.Channel.Country, &row.Channel.Subscribers,
			&row.Channel.ViewCount, &row.Channel.VideoCount,
			&row.Channel.UploadsPlaylist, &row.Channel.Keyword,
			&row.Channel.FirstSeen, &row.Channel.LastUpdated,
			&row.Snapshot.AvgRecentViews, &row.Snapshot.EngagementRate,
			&row.Snapshot.VideosSampled, &row.Snapshot.Niche,
			&row.Snapshot.CPMMin, &row.Snapshot.CPMMax,
			&row.Snapshot.RPMMin, &row.Snapshot.RPMMax,
			&row.Snapshot.PriceMin, &row.Snapshot.PriceMax,
			&row.Snapshot.ProfitMin, &row.Snapshot.ProfitMax,
			&row.Snapshot.ComputedAt,
		); err != nil {
			return nil, err
		}
		row.Snapshot.ChannelID = row.Channel.ID
		out = append(out, row)
	}
	return out, rows.Err()
}
