package model

import (
	"strconv"
	"time"

	"github.com/WhyILived/Dreamwell/pkg/hash"
)

// SearchFilters narrow a provider search. The zero value means no
// filtering beyond the keyword itself.
type SearchFilters struct {
	Region         string    `json:"region,omitempty"`
	Language       string    `json:"language,omitempty"`
	PublishedAfter time.Time `json:"publishedAfter,omitempty"`
	Order          string    `json:"order,omitempty"`
	MaxResults     int       `json:"maxResults,omitempty"`
}

// Fingerprint returns a deterministic short hash over the filter
// fields. PublishedAfter is truncated to the day so repeated searches
// within the same day share a cache entry.
func (f SearchFilters) Fingerprint() string {
	after := ""
	if !f.PublishedAfter.IsZero() {
		after = f.PublishedAfter.UTC().Format("2006-01-02")
	}
	return hash.Fingerprint(16,
		f.Region,
		f.Language,
		after,
		f.Order,
		strconv.Itoa(f.MaxResults),
	)
}

// ChannelQuery is a normalized keyword plus its filter set. Keywords
// must pass through hash.NormalizeQuery before construction so that
// equivalent queries share a cache key.
type ChannelQuery struct {
	Keywords string        `json:"keywords"`
	Filters  SearchFilters `json:"filters"`
}

// NewChannelQuery normalizes the keyword and pairs it with filters.
func NewChannelQuery(keywords string, filters SearchFilters) ChannelQuery {
	return ChannelQuery{Keywords: hash.NormalizeQuery(keywords), Filters: filters}
}
