package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/WhyILived/Dreamwell/internal/model"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// pageSize is the provider's hard cap per page and per stats batch.
const pageSize = 50

// Client talks to the YouTube Data API v3 over plain REST. All methods
// route through the retry wrapper and honor context cancellation.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a provider client. baseURL is overridable for
// tests and proxies.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// --- wire types (the API returns numeric statistics as strings) ---

type apiErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			ChannelID   string `json:"channelId"`
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Country     string `json:"country"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount             string `json:"viewCount"`
			SubscriberCount       string `json:"subscriberCount"`
			HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
			VideoCount            string `json:"videoCount"`
		} `json:"statistics"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// get issues one GET against the API and decodes the payload,
// converting API error envelopes into *APIError.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.apiKey == "" {
		return &APIError{StatusCode: http.StatusUnauthorized, Reason: "keyMissing", Message: "api key is empty"}
	}
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("youtube: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("youtube: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("youtube: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope apiErrorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != 0 {
			apiErr.Message = envelope.Error.Message
			if len(envelope.Error.Errors) > 0 {
				apiErr.Reason = envelope.Error.Errors[0].Reason
			}
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("youtube: decode response: %w", err)
	}
	return nil
}

// SearchChannels runs one page of a channel keyword search.
func (c *Client) SearchChannels(ctx context.Context, keywords string, filters model.SearchFilters, pageToken string) (ChannelPage, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", keywords)
	params.Set("type", "channel")
	params.Set("maxResults", strconv.Itoa(pageSize))
	if filters.Region != "" {
		params.Set("regionCode", filters.Region)
	}
	if filters.Language != "" {
		params.Set("relevanceLanguage", filters.Language)
	}
	if filters.Order != "" {
		params.Set("order", filters.Order)
	}
	if !filters.PublishedAfter.IsZero() {
		params.Set("publishedAfter", filters.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp searchResponse
	err := withRetry(ctx, "search.channels", func() error {
		return c.get(ctx, "/search", params, &resp)
	})
	if err != nil {
		return ChannelPage{}, err
	}

	page := ChannelPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item.Snippet.ChannelID == "" {
			continue
		}
		page.Channels = append(page.Channels, model.Channel{
			ID:          item.Snippet.ChannelID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		})
	}
	return page, nil
}

// PlaylistVideoIDs lists up to max video IDs from the given playlist
// (primary recent-uploads path). A missing or private playlist returns
// whatever was collected before the failure.
func (c *Client) PlaylistVideoIDs(ctx context.Context, playlistID string, max int) ([]string, error) {
	var ids []string
	pageToken := ""
	for len(ids) < max {
		params := url.Values{}
		params.Set("part", "contentDetails")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", strconv.Itoa(min(pageSize, max-len(ids))))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp playlistItemsResponse
		err := withRetry(ctx, "playlistItems.list", func() error {
			return c.get(ctx, "/playlistItems", params, &resp)
		})
		if err != nil {
			return ids, err
		}
		for _, item := range resp.Items {
			if item.ContentDetails.VideoID != "" {
				ids = append(ids, item.ContentDetails.VideoID)
			}
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return ids, nil
}

// ChannelVideoIDs searches a channel's videos newest-first (fallback
// path when the uploads playlist is unusable).
func (c *Client) ChannelVideoIDs(ctx context.Context, channelID string, max int) ([]string, error) {
	var ids []string
	pageToken := ""
	for len(ids) < max {
		params := url.Values{}
		params.Set("part", "id")
		params.Set("channelId", channelID)
		params.Set("type", "video")
		params.Set("order", "date")
		params.Set("maxResults", strconv.Itoa(min(pageSize, max-len(ids))))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp searchResponse
		err := withRetry(ctx, "search.channelVideos", func() error {
			return c.get(ctx, "/search", params, &resp)
		})
		if err != nil {
			return ids, err
		}
		for _, item := range resp.Items {
			if item.ID.VideoID != "" {
				ids = append(ids, item.ID.VideoID)
			}
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return ids, nil
}

// ChannelStats fetches snippet+statistics+contentDetails for the given
// channel IDs, batching 50 per call. A failed batch is skipped; the
// remaining batches still run.
func (c *Client) ChannelStats(ctx context.Context, ids []string) (map[string]ChannelStats, error) {
	out := make(map[string]ChannelStats, len(ids))
	for start := 0; start < len(ids); start += pageSize {
		batch := ids[start:min(start+pageSize, len(ids))]

		params := url.Values{}
		params.Set("part", "snippet,statistics,contentDetails")
		params.Set("id", strings.Join(batch, ","))
		params.Set("maxResults", strconv.Itoa(pageSize))

		var resp channelsResponse
		err := withRetry(ctx, "channels.list", func() error {
			return c.get(ctx, "/channels", params, &resp)
		})
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			continue
		}

		for _, item := range resp.Items {
			stats := ChannelStats{
				ID:              item.ID,
				Title:           item.Snippet.Title,
				Description:     item.Snippet.Description,
				Country:         item.Snippet.Country,
				UploadsPlaylist: item.ContentDetails.RelatedPlaylists.Uploads,
				ViewCount:       parseCount(item.Statistics.ViewCount),
				VideoCount:      parseCount(item.Statistics.VideoCount),
			}
			if !item.Statistics.HiddenSubscriberCount {
				subs := parseCount(item.Statistics.SubscriberCount)
				stats.Subscribers = &subs
			}
			out[item.ID] = stats
		}
	}
	return out, nil
}

// VideoStats fetches snippet+statistics for the given video IDs,
// batching 50 per call. A failed batch is skipped.
func (c *Client) VideoStats(ctx context.Context, ids []string) (map[string]VideoStats, error) {
	out := make(map[string]VideoStats, len(ids))
	for start := 0; start < len(ids); start += pageSize {
		batch := ids[start:min(start+pageSize, len(ids))]

		params := url.Values{}
		params.Set("part", "snippet,statistics")
		params.Set("id", strings.Join(batch, ","))

		var resp videosResponse
		err := withRetry(ctx, "videos.list", func() error {
			return c.get(ctx, "/videos", params, &resp)
		})
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			continue
		}

		for _, item := range resp.Items {
			stats := VideoStats{
				ID:       item.ID,
				Title:    item.Snippet.Title,
				Views:    parseCount(item.Statistics.ViewCount),
				Likes:    parseCount(item.Statistics.LikeCount),
				Comments: parseCount(item.Statistics.CommentCount),
			}
			if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				stats.PublishedAt = ts
			}
			out[item.ID] = stats
		}
	}
	return out, nil
}

// parseCount converts the API's stringly-typed counters, defaulting to
// 0 on anything unparseable.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
