package model

import "time"

// RankedChannel is one row of a pipeline run: provider metadata,
// enrichment/estimation outputs, and the score breakdown. Degraded is
// set when a per-candidate failure replaced real values with
// placeholders ("partial data beats no data").
type RankedChannel struct {
	Channel    Channel     `json:"channel"`
	Snapshot   Snapshot    `json:"snapshot"`
	Score      ScoreRecord `json:"score"`
	FinalScore float64     `json:"finalScore"`
	Degraded   bool        `json:"degraded,omitempty"`
	Note       string      `json:"note,omitempty"`
}

// KeywordOutcome annotates how one keyword fared during the search
// phase. A skipped keyword never aborts the run.
type KeywordOutcome struct {
	Keyword string `json:"keyword"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
	Found   int    `json:"found"`
}

// PoolStats are aggregates over the enriched candidate pool.
type PoolStats struct {
	Candidates     int     `json:"candidates"`
	AvgViewCount   float64 `json:"avgViewCount"`
	AvgLegacyScore float64 `json:"avgLegacyScore"`
}

// RunReport is the result of one end-to-end pipeline run.
type RunReport struct {
	RunID       string           `json:"runId"`
	Ranked      []RankedChannel  `json:"ranked"`
	Keywords    []KeywordOutcome `json:"keywords"`
	Stats       PoolStats        `json:"stats"`
	GeneratedAt time.Time        `json:"generatedAt"`
}
