package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/WhyILived/Dreamwell/internal/cache"
	"github.com/WhyILived/Dreamwell/internal/model"
	"github.com/WhyILived/Dreamwell/internal/youtube"
)

// SearchService resolves one keyword into candidate channels, with a
// cache-aside tier in front of the provider so a repeated query within
// the TTL costs zero provider calls.
type SearchService struct {
	provider youtube.Provider
	tier     *cache.Tier[[]model.Channel]
	pages    int
}

// NewSearchService wires the provider behind the search cache tier.
// pages bounds provider pagination per keyword.
func NewSearchService(provider youtube.Provider, tier *cache.Tier[[]model.Channel], pages int) *SearchService {
	if pages < 1 {
		pages = 1
	}
	return &SearchService{provider: provider, tier: tier, pages: pages}
}

// Candidates returns the deduplicated channels for one query. Cache
// errors degrade to provider calls; they never fail the search.
func (s *SearchService) Candidates(ctx context.Context, query model.ChannelQuery) ([]model.Channel, error) {
	key := s.tier.Key(query.Keywords, query.Filters.Fingerprint())

	if cached, ok, err := s.tier.Get(ctx, key); err != nil {
		log.Warn().Str("keywords", query.Keywords).Err(err).Msg("search: cache get error")
	} else if ok {
		return cached, nil
	}

	channels, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := s.tier.Put(ctx, key, channels); err != nil {
		log.Warn().Str("keywords", query.Keywords).Err(err).Msg("search: cache put error")
	}
	return channels, nil
}

// fetch pages through the provider, deduplicating by channel ID and
// stamping each result with the keyword that found it.
func (s *SearchService) fetch(ctx context.Context, query model.ChannelQuery) ([]model.Channel, error) {
	seen := make(map[string]bool)
	var channels []model.Channel

	pageToken := ""
	for page := 0; page < s.pages; page++ {
		result, err := s.provider.SearchChannels(ctx, query.Keywords, query.Filters, pageToken)
		if err != nil {
			// A failed later page still yields the earlier pages.
			if page > 0 {
				log.Warn().Str("keywords", query.Keywords).Int("page", page).Err(err).
					Msg("search: page fetch failed, returning partial results")
				break
			}
			return nil, err
		}

		for _, ch := range result.Channels {
			if seen[ch.ID] {
				continue
			}
			seen[ch.ID] = true
			ch.Keyword = query.Keywords
			channels = append(channels, ch)
			if query.Filters.MaxResults > 0 && len(channels) >= query.Filters.MaxResults {
				return channels, nil
			}
		}

		pageToken = result.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return channels, nil
}
