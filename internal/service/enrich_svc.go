package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/WhyILived/Dreamwell/internal/cache"
	"github.com/WhyILived/Dreamwell/internal/estimate"
	"github.com/WhyILived/Dreamwell/internal/model"
	"github.com/WhyILived/Dreamwell/internal/youtube"
)

// Signal is the cached per-channel enrichment output: the refreshed
// channel metadata plus the derived engagement signals. Estimation is
// cheap arithmetic and is recomputed per request, so it is not cached
// here.
type Signal struct {
	Channel        model.Channel `json:"channel"`
	AvgRecentViews float64       `json:"avgRecentViews"`
	// EngagementRate is nil when no sampled video had views.
	EngagementRate *float64 `json:"engagementRate"`
	VideosSampled  int      `json:"videosSampled"`
	// Sampled holds the videos behind the aggregates, in sample order.
	Sampled   []model.Video `json:"sampled,omitempty"`
	Niche     string        `json:"niche"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// EnrichService turns bare search hits into signal-rich candidates:
// batched statistics, a recent-video sample, engagement aggregates,
// and a niche guess. Each channel's signal is cached independently.
type EnrichService struct {
	provider  youtube.Provider
	tier      *cache.Tier[Signal]
	sampleCap int

	now func() time.Time
}

// NewEnrichService wires the provider behind the signal cache tier.
// sampleCap bounds the recent-video sample per channel.
func NewEnrichService(provider youtube.Provider, tier *cache.Tier[Signal], sampleCap int) *EnrichService {
	if sampleCap < 1 {
		sampleCap = 10
	}
	return &EnrichService{provider: provider, tier: tier, sampleCap: sampleCap, now: time.Now}
}

func (s *EnrichService) signalKey(channelID string) string {
	return s.tier.Key(channelID, "v1")
}

// EnrichAll resolves signals for every candidate. Channels already in
// the signal cache skip provider work entirely; the rest share one
// batched statistics call, then sample videos individually. A channel
// whose enrichment fails is returned in the error map instead of
// aborting the batch.
func (s *EnrichService) EnrichAll(ctx context.Context, candidates []model.Channel) (map[string]Signal, map[string]error) {
	signals := make(map[string]Signal, len(candidates))
	failures := make(map[string]error)

	var misses []model.Channel
	for _, ch := range candidates {
		if sig, ok, err := s.tier.Get(ctx, s.signalKey(ch.ID)); err != nil {
			log.Warn().Str("channel", ch.ID).Err(err).Msg("enrich: cache get error")
			misses = append(misses, ch)
		} else if ok {
			signals[ch.ID] = sig
		} else {
			misses = append(misses, ch)
		}
	}
	if len(misses) == 0 {
		return signals, failures
	}

	ids := make([]string, len(misses))
	for i, ch := range misses {
		ids[i] = ch.ID
	}
	stats, err := s.provider.ChannelStats(ctx, ids)
	if err != nil {
		for _, ch := range misses {
			failures[ch.ID] = fmt.Errorf("channel stats: %w", err)
		}
		return signals, failures
	}

	for _, ch := range misses {
		st, ok := stats[ch.ID]
		if !ok {
			failures[ch.ID] = fmt.Errorf("channel %s absent from statistics response", ch.ID)
			continue
		}

		sig, err := s.enrichOne(ctx, ch, st)
		if err != nil {
			failures[ch.ID] = err
			continue
		}
		signals[ch.ID] = sig

		if err := s.tier.Put(ctx, s.signalKey(ch.ID), sig); err != nil {
			log.Warn().Str("channel", ch.ID).Err(err).Msg("enrich: cache put error")
		}
	}
	return signals, failures
}

// enrichOne merges fresh statistics into the channel record and samples
// recent videos for engagement aggregates. A channel whose video
// sample is unreachable still yields a neutral, zeroed signal.
func (s *EnrichService) enrichOne(ctx context.Context, ch model.Channel, st youtube.ChannelStats) (Signal, error) {
	ch.Title = st.Title
	ch.Description = st.Description
	ch.Country = st.Country
	ch.Subscribers = st.Subscribers
	ch.ViewCount = st.ViewCount
	ch.VideoCount = st.VideoCount
	ch.UploadsPlaylist = st.UploadsPlaylist
	ch.LastUpdated = s.now().UTC()

	sig := Signal{
		Channel:   ch,
		Niche:     estimate.InferNiche(ch.Title, ch.Description),
		FetchedAt: ch.LastUpdated,
	}

	videoIDs := s.sampleVideoIDs(ctx, ch)
	if len(videoIDs) == 0 {
		return sig, nil
	}

	videos, err := s.provider.VideoStats(ctx, videoIDs)
	if err != nil {
		log.Warn().Str("channel", ch.ID).Err(err).Msg("enrich: video stats failed, neutral signal")
		return sig, nil
	}

	var totalViews, totalLikes, totalComments int64
	sample := make([]model.Video, 0, len(videoIDs))
	for _, id := range videoIDs {
		v, ok := videos[id]
		if !ok {
			continue
		}
		sample = append(sample, model.Video{
			ID:          v.ID,
			ChannelID:   ch.ID,
			Title:       v.Title,
			Views:       v.Views,
			Likes:       v.Likes,
			Comments:    v.Comments,
			PublishedAt: v.PublishedAt,
		})
		totalViews += v.Views
		totalLikes += v.Likes
		totalComments += v.Comments
	}
	if len(sample) == 0 {
		return sig, nil
	}

	sig.Sampled = sample
	sig.VideosSampled = len(sample)
	sig.AvgRecentViews = float64(totalViews) / float64(len(sample))
	if totalViews > 0 {
		er := float64(totalLikes+totalComments) / float64(totalViews)
		sig.EngagementRate = &er
	}
	return sig, nil
}

// sampleVideoIDs tries the uploads playlist first, then falls back to
// a recency-ordered channel search.
func (s *EnrichService) sampleVideoIDs(ctx context.Context, ch model.Channel) []string {
	if ch.UploadsPlaylist != "" {
		ids, err := s.provider.PlaylistVideoIDs(ctx, ch.UploadsPlaylist, s.sampleCap)
		if err == nil && len(ids) > 0 {
			return ids
		}
		if err != nil {
			log.Debug().Str("channel", ch.ID).Err(err).Msg("enrich: uploads playlist unusable, falling back")
		}
	}

	ids, err := s.provider.ChannelVideoIDs(ctx, ch.ID, s.sampleCap)
	if err != nil {
		log.Warn().Str("channel", ch.ID).Err(err).Msg("enrich: video sample unavailable")
		return nil
	}
	return ids
}

// Snapshot runs the pricing model over a signal for the given buyer
// and month, producing the persisted snapshot row.
func (s *EnrichService) Snapshot(sig Signal, productProfit float64, month time.Month) model.Snapshot {
	in := estimate.Inputs{
		Niche:       sig.Niche,
		Country:     sig.Channel.Country,
		Month:       month,
		AvgViews:    sig.AvgRecentViews,
		Engagement:  sig.EngagementRate,
		Subscribers: sig.Channel.Subscribers,
	}
	res := estimate.Estimate(in, productProfit)

	snap := model.Snapshot{
		ChannelID:      sig.Channel.ID,
		AvgRecentViews: sig.AvgRecentViews,
		VideosSampled:  sig.VideosSampled,
		Niche:          res.Niche,
		CPMMin:         res.CPMMin,
		CPMMax:         res.CPMMax,
		RPMMin:         res.RPMMin,
		RPMMax:         res.RPMMax,
		PriceMin:       res.PriceMin,
		PriceMax:       res.PriceMax,
		ProfitMin:      res.ProfitMin,
		ProfitMax:      res.ProfitMax,
		ComputedAt:     s.now().UTC(),
	}
	if sig.EngagementRate != nil {
		snap.EngagementRate = *sig.EngagementRate
	}
	return snap
}
