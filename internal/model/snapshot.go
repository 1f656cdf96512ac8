package model

import "time"

// Snapshot holds the derived per-channel signals computed by one
// enrichment pass. Later passes overwrite earlier ones; score history,
// if wanted, belongs to the storage layer.
type Snapshot struct {
	ChannelID      string    `json:"channelId"`
	AvgRecentViews float64   `json:"avgRecentViews"`
	EngagementRate float64   `json:"engagementRate"`
	VideosSampled  int       `json:"videosSampled"`
	Niche          string    `json:"niche"`
	CPMMin         float64   `json:"cpmMinUsd"`
	CPMMax         float64   `json:"cpmMaxUsd"`
	RPMMin         float64   `json:"rpmMinUsd"`
	RPMMax         float64   `json:"rpmMaxUsd"`
	PriceMin       float64   `json:"suggestedPriceMinUsd"`
	PriceMax       float64   `json:"suggestedPriceMaxUsd"`
	ProfitMin      float64   `json:"expectedProfitMinUsd"`
	ProfitMax      float64   `json:"expectedProfitMaxUsd"`
	ComputedAt     time.Time `json:"computedAt"`
}
