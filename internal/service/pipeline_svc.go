package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/WhyILived/Dreamwell/internal/model"
)

// ErrNoKeywords is returned when a discovery request carries no usable
// keywords. It is the only input error that fails a run outright;
// everything past input validation degrades per keyword or per
// candidate.
var ErrNoKeywords = errors.New("pipeline: no keywords provided")

// DiscoverRequest is one end-to-end pipeline invocation.
type DiscoverRequest struct {
	Keywords []string            `json:"keywords"`
	Filters  model.SearchFilters `json:"filters"`
	Buyer    model.BuyerContext  `json:"buyer"`
	Weights  *model.Weights      `json:"weights,omitempty"` // per-run override, validated upstream
}

// ChannelSink persists discovered channels and their snapshots.
// Persistence failure never fails a run.
type ChannelSink interface {
	UpsertChannel(ctx context.Context, ch model.Channel) error
	UpsertSnapshot(ctx context.Context, snap model.Snapshot) error
}

// PipelineService chains search, enrichment, estimation, and scoring
// into one run. Keywords are processed sequentially; a failed keyword
// is annotated and skipped, a failed candidate becomes a degraded
// placeholder row.
type PipelineService struct {
	search *SearchService
	enrich *EnrichService
	score  *ScoreService
	sink   ChannelSink // optional

	candidateCap int
	now          func() time.Time
}

// NewPipelineService assembles the pipeline. sink may be nil when no
// durable channel store is configured.
func NewPipelineService(search *SearchService, enrich *EnrichService, score *ScoreService, sink ChannelSink, candidateCap int) *PipelineService {
	if candidateCap < 1 {
		candidateCap = 25
	}
	return &PipelineService{
		search:       search,
		enrich:       enrich,
		score:        score,
		sink:         sink,
		candidateCap: candidateCap,
		now:          time.Now,
	}
}

// Run executes one discovery run.
func (p *PipelineService) Run(ctx context.Context, req DiscoverRequest) (model.RunReport, error) {
	report := model.RunReport{RunID: uuid.NewString()}

	pool, outcomes := p.searchPhase(ctx, req)
	report.Keywords = outcomes
	if len(pool) == 0 {
		if len(outcomes) == 0 {
			return report, ErrNoKeywords
		}
		report.GeneratedAt = p.now().UTC()
		return report, nil
	}

	if len(pool) > p.candidateCap {
		pool = pool[:p.candidateCap]
	}

	signals, failures := p.enrich.EnrichAll(ctx, pool)
	report.Stats = poolStats(pool, signals)

	month := p.now().UTC().Month()
	rows := make([]model.RankedChannel, 0, len(pool))
	for _, ch := range pool {
		if err, failed := failures[ch.ID]; failed {
			log.Warn().Str("channel", ch.ID).Err(err).Msg("pipeline: candidate degraded")
			rows = append(rows, model.RankedChannel{
				Channel:  ch,
				Snapshot: model.Snapshot{ChannelID: ch.ID, Niche: "default", ComputedAt: p.now().UTC()},
				Score:    model.NeutralScoreRecord(ch.ID, req.Buyer.Hash(), "enrichment unavailable: "+err.Error()),
				Degraded: true,
				Note:     "enrichment failed: " + err.Error(),
			})
			continue
		}

		sig := signals[ch.ID]
		snap := p.enrich.Snapshot(sig, req.Buyer.ProductProfit, month)
		record := p.score.Score(ctx, sig.Channel, snap, req.Buyer)

		rows = append(rows, model.RankedChannel{
			Channel:  sig.Channel,
			Snapshot: snap,
			Score:    record,
		})
		p.persist(ctx, sig.Channel, snap)
	}

	if req.Weights != nil {
		report.Ranked = p.score.RankWith(rows, p.candidateCap, *req.Weights)
	} else {
		report.Ranked = p.score.Rank(rows, p.candidateCap)
	}
	report.GeneratedAt = p.now().UTC()
	return report, nil
}

// searchPhase resolves each keyword into candidates, deduplicating
// across keywords. The first keyword to find a channel claims it.
func (p *PipelineService) searchPhase(ctx context.Context, req DiscoverRequest) ([]model.Channel, []model.KeywordOutcome) {
	var pool []model.Channel
	var outcomes []model.KeywordOutcome
	seen := make(map[string]bool)

	for _, raw := range req.Keywords {
		query := model.NewChannelQuery(raw, req.Filters)
		if query.Keywords == "" {
			continue
		}

		channels, err := p.search.Candidates(ctx, query)
		if err != nil {
			log.Warn().Str("keyword", query.Keywords).Err(err).Msg("pipeline: keyword skipped")
			outcomes = append(outcomes, model.KeywordOutcome{
				Keyword: query.Keywords,
				Skipped: true,
				Error:   err.Error(),
			})
			continue
		}

		found := 0
		for _, ch := range channels {
			if seen[ch.ID] {
				continue
			}
			seen[ch.ID] = true
			pool = append(pool, ch)
			found++
		}
		outcomes = append(outcomes, model.KeywordOutcome{Keyword: query.Keywords, Found: found})
	}
	return pool, outcomes
}

func (p *PipelineService) persist(ctx context.Context, ch model.Channel, snap model.Snapshot) {
	if p.sink == nil {
		return
	}
	if err := p.sink.UpsertChannel(ctx, ch); err != nil {
		log.Warn().Str("channel", ch.ID).Err(err).Msg("pipeline: channel persist failed")
		return
	}
	if err := p.sink.UpsertSnapshot(ctx, snap); err != nil {
		log.Warn().Str("channel", ch.ID).Err(err).Msg("pipeline: snapshot persist failed")
	}
}

// poolStats aggregates the enriched pool, including the flat legacy
// popularity score kept for comparison against ranked output.
func poolStats(pool []model.Channel, signals map[string]Signal) model.PoolStats {
	stats := model.PoolStats{Candidates: len(pool)}
	if len(pool) == 0 {
		return stats
	}

	var viewSum, legacySum float64
	enriched := 0
	for _, ch := range pool {
		sig, ok := signals[ch.ID]
		if !ok {
			continue
		}
		enriched++
		viewSum += sig.AvgRecentViews
		legacySum += legacyScore(sig)
	}
	if enriched > 0 {
		stats.AvgViewCount = viewSum / float64(enriched)
		stats.AvgLegacyScore = legacySum / float64(enriched)
	}
	return stats
}

// legacyScore is the pre-LLM heuristic ranking formula.
func legacyScore(sig Signal) float64 {
	score := 0.5*(float64(sig.Channel.SubscriberCount())/1000) +
		0.4*(sig.AvgRecentViews/1000)
	if sig.EngagementRate != nil {
		score += 0.1 * (*sig.EngagementRate * 100)
	}
	return score
}
