package service

import (
	"context"
	"errors"
	"testing"

	"github.com/WhyILived/Dreamwell/internal/model"
)

func newPipeline(provider *fakeProvider, chat *fakeChat, sink ChannelSink) *PipelineService {
	search := NewSearchService(provider, newSearchTier(), 1)
	enrich := NewEnrichService(provider, newSignalTier(), 10)
	score := NewScoreService(chat, newScoreTier(), "test-model")
	p := NewPipelineService(search, enrich, score, sink, 25)
	p.now = frozenClock()
	return p
}

type recordingSink struct {
	channels  []model.Channel
	snapshots []model.Snapshot
	fail      bool
}

func (s *recordingSink) UpsertChannel(_ context.Context, ch model.Channel) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.channels = append(s.channels, ch)
	return nil
}

func (s *recordingSink) UpsertSnapshot(_ context.Context, snap model.Snapshot) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.snapshots = append(s.snapshots, snap)
	return nil
}

func TestRunNoKeywordsFails(t *testing.T) {
	p := newPipeline(newFakeProvider(), &fakeChat{reply: scoringJSON(50, 50, 50, 50, 50)}, nil)

	if _, err := p.Run(context.Background(), DiscoverRequest{}); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("Run(no keywords) error = %v, want ErrNoKeywords", err)
	}
	if _, err := p.Run(context.Background(), DiscoverRequest{Keywords: []string{"   ", ""}}); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("Run(blank keywords) error = %v, want ErrNoKeywords", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	provider := newFakeProvider()
	provider.addChannel("fitness gear", "UC1", 120000, 20000, 30000)
	provider.addChannel("fitness gear", "UC2", 5000, 500)
	chat := &fakeChat{reply: scoringJSON(70, 70, 70, 70, 70)}
	sink := &recordingSink{}

	p := newPipeline(provider, chat, sink)
	report, err := p.Run(context.Background(), DiscoverRequest{
		Keywords: []string{"Fitness Gear"},
		Buyer:    testBuyer(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.RunID == "" {
		t.Error("RunID should be set")
	}
	if len(report.Ranked) != 2 {
		t.Fatalf("len(Ranked) = %d, want 2", len(report.Ranked))
	}
	if report.Ranked[0].FinalScore < report.Ranked[1].FinalScore {
		t.Error("ranked rows out of order")
	}
	if len(report.Keywords) != 1 || report.Keywords[0].Keyword != "fitness gear" || report.Keywords[0].Found != 2 {
		t.Errorf("keyword outcomes = %+v", report.Keywords)
	}
	if report.Stats.Candidates != 2 {
		t.Errorf("Stats.Candidates = %d, want 2", report.Stats.Candidates)
	}
	if report.Stats.AvgLegacyScore <= 0 {
		t.Errorf("AvgLegacyScore = %v, want positive", report.Stats.AvgLegacyScore)
	}
	if len(sink.channels) != 2 || len(sink.snapshots) != 2 {
		t.Errorf("sink got %d channels, %d snapshots, want 2 each", len(sink.channels), len(sink.snapshots))
	}

	for _, row := range report.Ranked {
		if row.Snapshot.PriceMin < 50 {
			t.Errorf("channel %s PriceMin = %v, want at least the floor", row.Channel.ID, row.Snapshot.PriceMin)
		}
		if row.Degraded {
			t.Errorf("channel %s unexpectedly degraded", row.Channel.ID)
		}
	}
}

func TestRunFailedKeywordIsSkippedNotFatal(t *testing.T) {
	provider := newFakeProvider()
	provider.addChannel("fitness gear", "UC1", 120000, 20000)
	provider.searchErr["broken keyword"] = errProviderDown
	chat := &fakeChat{reply: scoringJSON(70, 70, 70, 70, 70)}

	p := newPipeline(provider, chat, nil)
	report, err := p.Run(context.Background(), DiscoverRequest{
		Keywords: []string{"broken keyword", "fitness gear"},
		Buyer:    testBuyer(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v, one bad keyword must not abort the run", err)
	}

	if len(report.Keywords) != 2 {
		t.Fatalf("len(Keywords) = %d, want 2", len(report.Keywords))
	}
	broken := report.Keywords[0]
	if !broken.Skipped || broken.Error == "" {
		t.Errorf("broken keyword outcome = %+v, want skipped with error", broken)
	}
	if len(report.Ranked) != 1 {
		t.Errorf("len(Ranked) = %d, want 1 from the surviving keyword", len(report.Ranked))
	}
}

func TestRunAllKeywordsFailedYieldsEmptyReport(t *testing.T) {
	provider := newFakeProvider()
	provider.searchErr["nope"] = errProviderDown

	p := newPipeline(provider, &fakeChat{}, nil)
	report, err := p.Run(context.Background(), DiscoverRequest{Keywords: []string{"nope"}, Buyer: testBuyer()})
	if err != nil {
		t.Fatalf("Run() error = %v, want empty report instead", err)
	}
	if len(report.Ranked) != 0 {
		t.Errorf("len(Ranked) = %d, want 0", len(report.Ranked))
	}
	if len(report.Keywords) != 1 || !report.Keywords[0].Skipped {
		t.Errorf("keyword outcomes = %+v", report.Keywords)
	}
}

func TestRunDegradedCandidatePlaceholder(t *testing.T) {
	provider := newFakeProvider()
	provider.addChannel("fitness gear", "UC1", 120000, 20000)
	// UC2 is found by search but absent from statistics.
	pages := provider.searchPages["fitness gear"]
	pages[0].Channels = append(pages[0].Channels, model.Channel{ID: "UC-ghost", Title: "Ghost"})
	provider.searchPages["fitness gear"] = pages
	chat := &fakeChat{reply: scoringJSON(70, 70, 70, 70, 70)}

	p := newPipeline(provider, chat, nil)
	report, err := p.Run(context.Background(), DiscoverRequest{
		Keywords: []string{"fitness gear"},
		Buyer:    testBuyer(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Ranked) != 2 {
		t.Fatalf("len(Ranked) = %d, want 2 (degraded row included)", len(report.Ranked))
	}

	var ghost *model.RankedChannel
	for i := range report.Ranked {
		if report.Ranked[i].Channel.ID == "UC-ghost" {
			ghost = &report.Ranked[i]
		}
	}
	if ghost == nil {
		t.Fatal("degraded channel missing from ranked output")
	}
	if !ghost.Degraded || ghost.Note == "" {
		t.Errorf("ghost row = %+v, want degraded with note", ghost)
	}
	if ghost.Score.ValuesAlignment != model.NeutralScore {
		t.Errorf("ghost ValuesAlignment = %v, want neutral", ghost.Score.ValuesAlignment)
	}
	if ghost.Snapshot.Niche != "default" {
		t.Errorf("ghost Niche = %q, want default", ghost.Snapshot.Niche)
	}
}

func TestRunSinkFailureDoesNotFailRun(t *testing.T) {
	provider := newFakeProvider()
	provider.addChannel("fitness gear", "UC1", 120000, 20000)
	chat := &fakeChat{reply: scoringJSON(70, 70, 70, 70, 70)}

	p := newPipeline(provider, chat, &recordingSink{fail: true})
	report, err := p.Run(context.Background(), DiscoverRequest{
		Keywords: []string{"fitness gear"},
		Buyer:    testBuyer(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v, persistence must never fail a run", err)
	}
	if len(report.Ranked) != 1 {
		t.Errorf("len(Ranked) = %d, want 1", len(report.Ranked))
	}
}

func TestRunCandidateCap(t *testing.T) {
	provider := newFakeProvider()
	for i := 0; i < 30; i++ {
		provider.addChannel("big niche", string(rune('A'+i%26))+string(rune('a'+i)), int64(1000*(i+1)), 500)
	}
	chat := &fakeChat{reply: scoringJSON(70, 70, 70, 70, 70)}

	p := newPipeline(provider, chat, nil)
	report, err := p.Run(context.Background(), DiscoverRequest{
		Keywords: []string{"big niche"},
		Buyer:    testBuyer(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Ranked) > 25 {
		t.Errorf("len(Ranked) = %d, want at most 25", len(report.Ranked))
	}
	if report.Stats.Candidates > 25 {
		t.Errorf("Stats.Candidates = %d, want capped pool", report.Stats.Candidates)
	}
}

func TestRunDeduplicatesAcrossKeywords(t *testing.T) {
	provider := newFakeProvider()
	provider.addChannel("keyword one", "UC1", 120000, 20000)
	provider.addChannel("keyword two", "UC1", 120000, 20000)
	chat := &fakeChat{reply: scoringJSON(70, 70, 70, 70, 70)}

	p := newPipeline(provider, chat, nil)
	report, err := p.Run(context.Background(), DiscoverRequest{
		Keywords: []string{"keyword one", "keyword two"},
		Buyer:    testBuyer(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Ranked) != 1 {
		t.Errorf("len(Ranked) = %d, want 1 (same channel found twice)", len(report.Ranked))
	}
	if report.Keywords[1].Found != 0 {
		t.Errorf("second keyword Found = %d, want 0 (claimed by the first)", report.Keywords[1].Found)
	}
}

func TestRunPerRequestWeightsOverride(t *testing.T) {
	provider := newFakeProvider()
	provider.addChannel("fitness gear", "UC1", 120000, 20000)
	chat := &fakeChat{reply: scoringJSON(90, 50, 50, 50, 10)}

	p := newPipeline(provider, chat, nil)
	override := &model.Weights{Engagement: 1.0}
	report, err := p.Run(context.Background(), DiscoverRequest{
		Keywords: []string{"fitness gear"},
		Buyer:    testBuyer(),
		Weights:  override,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := report.Ranked[0].FinalScore; got != 10 {
		t.Errorf("FinalScore = %v, want 10 under engagement-only weights", got)
	}

	// The override is per run: the installed weights stay the default.
	if got := p.score.Weights(); got != model.DefaultWeights() {
		t.Errorf("service weights mutated by per-run override: %+v", got)
	}
}
