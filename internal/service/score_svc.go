package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/WhyILived/Dreamwell/internal/ai"
	"github.com/WhyILived/Dreamwell/internal/cache"
	"github.com/WhyILived/Dreamwell/internal/model"
)

const scoringSystemPrompt = `You evaluate YouTube creator channels as sponsorship candidates for a product buyer.
Score the channel on five dimensions, each an integer from 0 to 100:
- values_alignment: how well the channel's content aligns with the buyer's stated brand values
- cultural_fit: how well the channel's audience culture and geography fit the buyer's market
- cost_efficiency: estimated sponsorship cost relative to the reach delivered
- revenue_potential: likelihood the audience converts into product revenue
- engagement_quality: depth and authenticity of audience engagement
Respond with a JSON object of the form
{"values_alignment": {"score": N, "rationale": "..."}, "cultural_fit": {...}, "cost_efficiency": {...}, "revenue_potential": {...}, "engagement_quality": {...}}.`

// componentResult is one scored dimension in the collaborator's reply.
type componentResult struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

type scoringReply struct {
	ValuesAlignment   componentResult `json:"values_alignment"`
	CulturalFit       componentResult `json:"cultural_fit"`
	CostEfficiency    componentResult `json:"cost_efficiency"`
	RevenuePotential  componentResult `json:"revenue_potential"`
	EngagementQuality componentResult `json:"engagement_quality"`
}

// ScoreService scores candidates against a buyer context through an
// LLM collaborator, with a long-TTL cache keyed by channel and buyer
// context. Collaborator failure degrades every component to the
// neutral midpoint rather than failing the run.
type ScoreService struct {
	chat      ai.ChatClient
	tier      *cache.Tier[model.ScoreRecord]
	modelName string

	mu      sync.RWMutex
	weights model.Weights
}

// NewScoreService wires the collaborator behind the score cache tier,
// starting from the even default weights.
func NewScoreService(chat ai.ChatClient, tier *cache.Tier[model.ScoreRecord], modelName string) *ScoreService {
	return &ScoreService{
		chat:      chat,
		tier:      tier,
		modelName: modelName,
		weights:   model.DefaultWeights(),
	}
}

// Weights returns the current component weights.
func (s *ScoreService) Weights() model.Weights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

// SetWeights validates and installs new component weights. Invalid
// sets are rejected and the previous weights stay in force.
func (s *ScoreService) SetWeights(w model.Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.weights = w
	s.mu.Unlock()
	return nil
}

// Score returns the component scores for one channel under one buyer
// context, cache-aside. A collaborator failure yields a neutral record
// which is NOT cached, so the next run retries the collaborator.
func (s *ScoreService) Score(ctx context.Context, ch model.Channel, snap model.Snapshot, buyer model.BuyerContext) model.ScoreRecord {
	ctxHash := buyer.Hash()
	key := s.tier.Key(ch.ID, ctxHash)

	if cached, ok, err := s.tier.Get(ctx, key); err != nil {
		log.Warn().Str("channel", ch.ID).Err(err).Msg("score: cache get error")
	} else if ok {
		return cached
	}

	record, err := s.scoreRemote(ctx, ch, snap, buyer, ctxHash)
	if err != nil {
		log.Warn().Str("channel", ch.ID).Err(err).Msg("score: collaborator failed, neutral fallback")
		return model.NeutralScoreRecord(ch.ID, ctxHash, "scoring unavailable: "+err.Error())
	}

	if err := s.tier.Put(ctx, key, record); err != nil {
		log.Warn().Str("channel", ch.ID).Err(err).Msg("score: cache put error")
	}
	return record
}

func (s *ScoreService) scoreRemote(ctx context.Context, ch model.Channel, snap model.Snapshot, buyer model.BuyerContext, ctxHash string) (model.ScoreRecord, error) {
	resp, err := s.chat.CreateChatCompletion(ctx, ai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []ai.ChatMessage{
			{Role: ai.RoleSystem, Content: scoringSystemPrompt},
			{Role: ai.RoleUser, Content: buildScoringPrompt(ch, snap, buyer)},
		},
		Temperature:    0.2,
		ResponseFormat: &ai.ChatCompletionResponseFormat{Type: ai.ResponseFormatTypeJSONObject},
	})
	if err != nil {
		return model.ScoreRecord{}, err
	}
	if len(resp.Choices) == 0 {
		return model.ScoreRecord{}, fmt.Errorf("empty completion")
	}

	var reply scoringReply
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &reply); err != nil {
		return model.ScoreRecord{}, fmt.Errorf("parse completion: %w", err)
	}

	record := model.ScoreRecord{
		ChannelID:         ch.ID,
		ContextHash:       ctxHash,
		ValuesAlignment:   clampScore(reply.ValuesAlignment.Score),
		CulturalFit:       clampScore(reply.CulturalFit.Score),
		CostEfficiency:    clampScore(reply.CostEfficiency.Score),
		RevenuePotential:  clampScore(reply.RevenuePotential.Score),
		EngagementQuality: clampScore(reply.EngagementQuality.Score),
		Rationale: map[string]string{
			model.ComponentValues:     reply.ValuesAlignment.Rationale,
			model.ComponentCultural:   reply.CulturalFit.Rationale,
			model.ComponentCost:       reply.CostEfficiency.Rationale,
			model.ComponentRevenue:    reply.RevenuePotential.Rationale,
			model.ComponentEngagement: reply.EngagementQuality.Rationale,
		},
	}
	return record, nil
}

// buildScoringPrompt folds the channel, its derived signals, and the
// buyer context into the user message.
func buildScoringPrompt(ch model.Channel, snap model.Snapshot, buyer model.BuyerContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Channel: %s\n", ch.Title)
	if ch.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(ch.Description, 500))
	}
	if ch.Country != "" {
		fmt.Fprintf(&b, "Country: %s\n", ch.Country)
	}
	if ch.Subscribers != nil {
		fmt.Fprintf(&b, "Subscribers: %d\n", *ch.Subscribers)
	}
	fmt.Fprintf(&b, "Niche: %s\n", snap.Niche)
	fmt.Fprintf(&b, "Average recent views: %.0f\n", snap.AvgRecentViews)
	fmt.Fprintf(&b, "Engagement rate: %.4f\n", snap.EngagementRate)
	fmt.Fprintf(&b, "Estimated sponsorship price: $%.2f-$%.2f\n", snap.PriceMin, snap.PriceMax)
	fmt.Fprintf(&b, "\nBuyer values: %s\n", strings.Join(buyer.Values, ", "))
	if buyer.Country != "" {
		fmt.Fprintf(&b, "Buyer market: %s\n", buyer.Country)
	}
	if buyer.Luxury {
		b.WriteString("The product is a luxury good.\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Rank orders candidates under the service's current weights.
func (s *ScoreService) Rank(candidates []model.RankedChannel, cap int) []model.RankedChannel {
	return s.RankWith(candidates, cap, s.Weights())
}

// RankWith orders candidates by weighted final score descending,
// breaking ties by subscriber count then recent views, and truncates
// to cap. The weights apply to this ranking only.
func (s *ScoreService) RankWith(candidates []model.RankedChannel, cap int, weights model.Weights) []model.RankedChannel {
	for i := range candidates {
		candidates[i].FinalScore = weights.Apply(candidates[i].Score)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if sa, sb := a.Channel.SubscriberCount(), b.Channel.SubscriberCount(); sa != sb {
			return sa > sb
		}
		return a.Snapshot.AvgRecentViews > b.Snapshot.AvgRecentViews
	})

	if cap > 0 && len(candidates) > cap {
		candidates = candidates[:cap]
	}
	return candidates
}
