// Package metrics aggregates per-item latencies of a strategy run.
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// highestTrackable is the longest per-item latency the histogram resolves, in microseconds.
// A single n^n for n around one million takes seconds, so allow up to an hour.
const highestTrackable = int64(time.Hour / time.Microsecond)

// Collector records per-item latencies. It is safe for concurrent use.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
}

// Stats is a snapshot of the collector
type Stats struct {
	Items     int64         `json:"items" yaml:"items"`
	Successes int64         `json:"successes" yaml:"successes"`
	Failures  int64         `json:"failures" yaml:"failures"`
	Min       time.Duration `json:"-" yaml:"-"`
	Max       time.Duration `json:"-" yaml:"-"`
	Mean      time.Duration `json:"-" yaml:"-"`
	P50       time.Duration `json:"-" yaml:"-"`
	P90       time.Duration `json:"-" yaml:"-"`
	P99       time.Duration `json:"-" yaml:"-"`

	MinMs  float64 `json:"min_ms" yaml:"minMs"`
	MaxMs  float64 `json:"max_ms" yaml:"maxMs"`
	MeanMs float64 `json:"mean_ms" yaml:"meanMs"`
	P50Ms  float64 `json:"p50_ms" yaml:"p50Ms"`
	P90Ms  float64 `json:"p90_ms" yaml:"p90Ms"`
	P99Ms  float64 `json:"p99_ms" yaml:"p99Ms"`
}

// NewCollector creates an empty collector tracking 1µs..1h at 3 significant figures
func NewCollector() *Collector {
	return &Collector{
		hist: hdrhistogram.New(1, highestTrackable, 3),
	}
}

// Record records one item's latency and outcome
func (c *Collector) Record(latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	us := latency.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)

	c.sumLatency += latency
	if c.successes+c.failures == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	if err == nil {
		c.successes++
	} else {
		c.failures++
	}
}

// Stats computes the current aggregate
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := Stats{
		Items:     total,
		Successes: c.successes,
		Failures:  c.failures,
		Min:       c.minLatency,
		Max:       c.maxLatency,
	}

	if total > 0 {
		stats.Mean = time.Duration(int64(c.sumLatency) / total)
		stats.P50 = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90 = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99 = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinMs = ms(stats.Min)
	stats.MaxMs = ms(stats.Max)
	stats.MeanMs = ms(stats.Mean)
	stats.P50Ms = ms(stats.P50)
	stats.P90Ms = ms(stats.P90)
	stats.P99Ms = ms(stats.P99)

	return stats
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
