package model

import "time"

// Channel is a candidate creator channel discovered by a keyword search.
// The ID is the provider-assigned identity; Subscribers is nil when the
// provider hides the count. Records are updated in place on subsequent
// observations, never deleted.
type Channel struct {
	ID              string    `json:"channelId"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Country         string    `json:"country,omitempty"`
	Subscribers     *int64    `json:"subscribers"`
	ViewCount       int64     `json:"viewCount"`
	VideoCount      int64     `json:"videoCount"`
	UploadsPlaylist string    `json:"uploadsPlaylist,omitempty"`
	Keyword         string    `json:"keyword,omitempty"`
	FirstSeen       time.Time `json:"firstSeen,omitempty"`
	LastUpdated     time.Time `json:"lastUpdated,omitempty"`
}

// SubscriberCount returns the subscriber count or 0 when hidden.
func (c *Channel) SubscriberCount() int64 {
	if c.Subscribers == nil {
		return 0
	}
	return *c.Subscribers
}
