// Package youtube is a hand-rolled client for the YouTube Data API v3,
// the external search provider behind the discovery pipeline. Every
// call is wrapped with bounded retry, backoff, and inter-call pacing;
// failures are classified transient or permanent so callers can skip a
// unit of work without aborting a run.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WhyILived/Dreamwell/internal/model"
)

// ChannelPage is one page of a channel keyword search.
type ChannelPage struct {
	Channels      []model.Channel `json:"channels"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

// ChannelStats are the per-channel statistics returned by a batched
// channels.list call. Subscribers is nil when the channel hides it.
type ChannelStats struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Country         string `json:"country"`
	UploadsPlaylist string `json:"uploadsPlaylist"`
	Subscribers     *int64 `json:"subscribers"`
	ViewCount       int64  `json:"viewCount"`
	VideoCount      int64  `json:"videoCount"`
}

// VideoStats are the per-video statistics returned by a batched
// videos.list call.
type VideoStats struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Provider is the narrow interface the pipeline depends on. The real
// implementation is Client; tests substitute fakes.
type Provider interface {
	// SearchChannels runs one page of a keyword search for channels.
	SearchChannels(ctx context.Context, keywords string, filters model.SearchFilters, pageToken string) (ChannelPage, error)
	// PlaylistVideoIDs lists up to max video IDs from a playlist
	// (the primary recent-uploads path).
	PlaylistVideoIDs(ctx context.Context, playlistID string, max int) ([]string, error)
	// ChannelVideoIDs searches a channel's videos in recency order
	// (the fallback path when the uploads playlist is unusable).
	ChannelVideoIDs(ctx context.Context, channelID string, max int) ([]string, error)
	// ChannelStats fetches statistics for up to 50 channels per
	// underlying call, batching internally.
	ChannelStats(ctx context.Context, ids []string) (map[string]ChannelStats, error)
	// VideoStats fetches statistics for up to 50 videos per
	// underlying call, batching internally.
	VideoStats(ctx context.Context, ids []string) (map[string]VideoStats, error)
}

// retryableReasons are the provider error reasons worth retrying, per
// the Data API error catalogue. Everything else is permanent.
var retryableReasons = map[string]bool{
	"quotaExceeded":                true,
	"userRateLimitExceeded":        true,
	"rateLimitExceeded":            true,
	"backendError":                 true,
	"internalError":                true,
	"serviceUnavailable":           true,
	"operationAborted":             true,
	"playlistItemThrottleExceeded": true,
}

// APIError is a structured provider error.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube: %d %s: %s", e.StatusCode, e.Reason, e.Message)
}

// Transient reports whether the error is worth retrying: any 5xx, or a
// quota/rate/backend reason.
func (e *APIError) Transient() bool {
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return true
	}
	return retryableReasons[e.Reason]
}

// IsTransient classifies an arbitrary error from a provider call.
// Non-API failures (timeouts, connection resets) are treated as
// transient; a typed APIError decides for itself.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return true
}
