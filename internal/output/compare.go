package output

import (
	"github.com/aryankumar/concur/internal/strategy"
)

// Comparison is the machine-readable form of a run table
type Comparison struct {
	Runs []strategy.Report `json:"runs" yaml:"runs"`

	// Fastest is the completed run with the shortest duration
	Fastest strategy.Name `json:"fastest,omitempty" yaml:"fastest,omitempty"`

	// Speedup is each completed run's duration relative to the sequential run
	Speedup map[strategy.Name]float64 `json:"speedup,omitempty" yaml:"speedup,omitempty"`
}

// Compare ranks reports by duration. Failed runs are listed but never ranked.
func Compare(reports []strategy.Report) Comparison {
	c := Comparison{Runs: reports}

	var baseline, best *strategy.Report
	for i := range reports {
		r := &reports[i]
		if r.Status != strategy.Completed {
			continue
		}
		if r.Strategy == strategy.Sequential && baseline == nil {
			baseline = r
		}
		if best == nil || r.Duration < best.Duration {
			best = r
		}
	}

	if best != nil {
		c.Fastest = best.Strategy
	}

	if baseline != nil && baseline.Duration > 0 {
		c.Speedup = make(map[strategy.Name]float64)
		for _, r := range reports {
			if r.Status != strategy.Completed || r.Duration <= 0 {
				continue
			}
			c.Speedup[r.Strategy] = float64(baseline.Duration) / float64(r.Duration)
		}
	}

	return c
}
