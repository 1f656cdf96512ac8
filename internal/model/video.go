package model

import "time"

// Video is a single content item sampled during enrichment. The sample
// rides along with the channel's cached signal so the aggregates it
// produced stay auditable.
type Video struct {
	ID          string    `json:"videoId"`
	ChannelID   string    `json:"channelId"`
	Title       string    `json:"title,omitempty"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
}
