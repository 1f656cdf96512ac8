package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/WhyILived/Dreamwell/pkg/hash"
)

// Component score names, in the order they are weighted and reported.
const (
	ComponentValues     = "values_alignment"
	ComponentCultural   = "cultural_fit"
	ComponentCost       = "cost_efficiency"
	ComponentRevenue    = "revenue_potential"
	ComponentEngagement = "engagement_quality"
)

// NeutralScore is substituted for every component when the scoring
// collaborator is unavailable, so weighting never sees missing data.
const NeutralScore = 50.0

// ScoreRecord holds the five 0-100 component scores for one channel
// under one buyer context. All five components are always present.
type ScoreRecord struct {
	ChannelID   string  `json:"channelId"`
	ContextHash string  `json:"contextHash"`

	ValuesAlignment   float64 `json:"valuesAlignment"`
	CulturalFit       float64 `json:"culturalFit"`
	CostEfficiency    float64 `json:"costEfficiency"`
	RevenuePotential  float64 `json:"revenuePotential"`
	EngagementQuality float64 `json:"engagementQuality"`

	// Rationale maps component name to the collaborator's free-text
	// justification for that component.
	Rationale map[string]string `json:"rationale,omitempty"`
}

// NeutralScoreRecord returns a record with every component at the
// neutral midpoint, used when the scoring collaborator fails.
func NeutralScoreRecord(channelID, contextHash, reason string) ScoreRecord {
	rationale := make(map[string]string, 5)
	for _, c := range []string{ComponentValues, ComponentCultural, ComponentCost, ComponentRevenue, ComponentEngagement} {
		rationale[c] = reason
	}
	return ScoreRecord{
		ChannelID:         channelID,
		ContextHash:       contextHash,
		ValuesAlignment:   NeutralScore,
		CulturalFit:       NeutralScore,
		CostEfficiency:    NeutralScore,
		RevenuePotential:  NeutralScore,
		EngagementQuality: NeutralScore,
		Rationale:         rationale,
	}
}

// BuyerContext carries the buyer-specific inputs that seed a pipeline
// run. ProductProfit is the per-unit profit in USD (0 disables the
// expected-profit estimate).
type BuyerContext struct {
	Values        []string `json:"values"`
	Country       string   `json:"country"`
	Luxury        bool     `json:"luxury"`
	ProductProfit float64  `json:"productProfit"`
}

// Hash returns a deterministic fingerprint of the buyer context. Two
// buyers with different values, country, or luxury flag never share a
// cached score. ProductProfit is excluded: it feeds estimation, not
// the component scores.
func (b BuyerContext) Hash() string {
	values := make([]string, len(b.Values))
	copy(values, b.Values)
	for i := range values {
		values[i] = strings.ToLower(strings.TrimSpace(values[i]))
	}
	parts := append([]string{strings.ToUpper(b.Country), strconv.FormatBool(b.Luxury)}, values...)
	return hash.Fingerprint(16, parts...)
}

// Weights are the buyer-configurable component weights. They must sum
// to 1.0 within WeightEpsilon and are validated when set, not at
// scoring time.
type Weights struct {
	Values     float64 `json:"values"`
	Cultural   float64 `json:"cultural"`
	Cost       float64 `json:"cost"`
	Revenue    float64 `json:"revenue"`
	Engagement float64 `json:"engagement"`
}

// WeightEpsilon is the allowed deviation of the weight sum from 1.0.
const WeightEpsilon = 0.01

// DefaultWeights spreads weight evenly across the five components.
func DefaultWeights() Weights {
	return Weights{Values: 0.2, Cultural: 0.2, Cost: 0.2, Revenue: 0.2, Engagement: 0.2}
}

// Validate rejects weight sets whose sum deviates from 1.0 by more
// than WeightEpsilon, or that contain a negative weight.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Values, w.Cultural, w.Cost, w.Revenue, w.Engagement} {
		if v < 0 {
			return fmt.Errorf("weights: negative weight %.4f", v)
		}
	}
	sum := w.Values + w.Cultural + w.Cost + w.Revenue + w.Engagement
	if math.Abs(sum-1.0) > WeightEpsilon {
		return fmt.Errorf("weights: sum %.4f outside 1.0±%.2f", sum, WeightEpsilon)
	}
	return nil
}

// Apply computes the weighted final score for a record.
func (w Weights) Apply(r ScoreRecord) float64 {
	return r.ValuesAlignment*w.Values +
		r.CulturalFit*w.Cultural +
		r.CostEfficiency*w.Cost +
		r.RevenuePotential*w.Revenue +
		r.EngagementQuality*w.Engagement
}
