package store

import "time"

// #region run-record
// RunRecord is one persisted generation call.
type RunRecord struct {
	RunID      string
	Mode       string // "greedy" | "stochastic"
	MaxLength  int
	Seed       int64
	Latent     []float64
	Rules      []int
	Steps      int
	Truncated  bool
	Expression string
	CreatedAt  time.Time
}

// #endregion run-record

// #region run-stats
// RunStats aggregates stored runs.
type RunStats struct {
	Total     int
	Truncated int
	AvgSteps  float64
}

// #endregion run-stats
