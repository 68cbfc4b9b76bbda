package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryankumar/concur/internal/metrics"
	"github.com/aryankumar/concur/internal/partition"
	"github.com/aryankumar/concur/internal/util"
	"github.com/aryankumar/concur/internal/work"
)

// Name identifies a strategy
type Name string

const (
	Sequential   Name = "sequential"
	Threaded     Name = "threaded"
	Process      Name = "process"
	ProcessAsync Name = "process-async"
	Async        Name = "async"
)

// All lists every strategy in the order they are run for "all"
var All = []Name{Sequential, Threaded, Process, ProcessAsync, Async}

// ParseNames parses a comma separated list of strategy names. "all" expands
// to every strategy. Duplicates are dropped.
func ParseNames(s string) ([]Name, error) {
	var names []Name
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if part == "all" {
			for _, n := range All {
				if !slices.Contains(names, n) {
					names = append(names, n)
				}
			}
			continue
		}
		n := Name(part)
		if !slices.Contains(All, n) {
			return nil, fmt.Errorf("%w: %q", util.ErrUnknownStrategy, part)
		}
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no strategy given", util.ErrUnknownStrategy)
	}
	return names, nil
}

// Strategy runs a batch of items
type Strategy[T, R any] interface {
	Name() Name

	// Run processes every item. On failure it still returns the Run, with
	// Status Failed, alongside the failure with the lowest item index.
	Run(ctx context.Context, items []T) (*Run[R], error)
}

// Status is the overall outcome of a run
type Status string

const (
	Completed Status = "completed"
	Failed    Status = "failed"
)

// Report describes one strategy run
type Report struct {
	ID        string    `json:"id" yaml:"id"`
	Strategy  Name      `json:"strategy" yaml:"strategy"`
	Workload  string    `json:"workload" yaml:"workload"`
	Items     int       `json:"items" yaml:"items"`
	Workers   int       `json:"workers" yaml:"workers"`
	Status    Status    `json:"status" yaml:"status"`
	StartedAt time.Time `json:"started_at" yaml:"startedAt"`

	Duration        time.Duration `json:"-" yaml:"-"`
	DurationSeconds float64       `json:"duration_seconds" yaml:"durationSeconds"`

	Latency metrics.Stats `json:"latency" yaml:"latency"`

	// Failures are *util.WorkerError values ordered by item index
	Failures     []error `json:"-" yaml:"-"`
	FailureCount int     `json:"failures" yaml:"failures"`
	Error        string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run is the outcome of a strategy run
type Run[R any] struct {
	Report

	// Values holds the value of every successful item in completion order
	Values []R
}

// Sorted returns a sorted copy of the values
func (r *Run[R]) Sorted(cmp func(a, b R) int) []R {
	sorted := slices.Clone(r.Values)
	slices.SortFunc(sorted, cmp)
	return sorted
}

// shard partitions items over at most workers partitions, never more than
// there are items. It returns no partitions for no items.
func shard[T any](items []T, workers int) ([][]T, error) {
	if workers < 1 {
		return partition.Split(items, workers)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return partition.Split(items, partition.Workers(len(items), workers))
}

// collector accumulates outcomes for one run. It is not safe for concurrent
// use; strategies feed it after their workers have finished.
type collector[T, R any] struct {
	report   Report
	items    []T
	values   []R
	failures []*util.WorkerError
	latency  *metrics.Collector
}

func newCollector[T, R any](name Name, workload string, items []T, workers int) *collector[T, R] {
	return &collector[T, R]{
		report: Report{
			ID:        uuid.NewString(),
			Strategy:  name,
			Workload:  workload,
			Items:     len(items),
			Workers:   workers,
			StartedAt: time.Now(),
		},
		items:   items,
		values:  make([]R, 0, len(items)),
		latency: metrics.NewCollector(),
	}
}

func (c *collector[T, R]) label() string {
	return fmt.Sprintf("%s/%s", c.report.Strategy, c.report.Workload)
}

func (c *collector[T, R]) add(worker int, outcomes []work.Outcome[R]) {
	for _, o := range outcomes {
		c.latency.Record(o.Latency, o.Err)
		if o.Err != nil {
			c.fail(worker, o.Index, o.Err)
			continue
		}
		c.values = append(c.values, o.Value)
	}
}

// failAll records err for every item of a partition that never produced outcomes
func (c *collector[T, R]) failAll(worker, offset, count int, err error) {
	for i := 0; i < count; i++ {
		c.latency.Record(0, err)
		c.fail(worker, offset+i, err)
	}
}

func (c *collector[T, R]) fail(worker, index int, err error) {
	var item interface{} = "?"
	if index >= 0 && index < len(c.items) {
		item = c.items[index]
	}

	var we *util.WorkerError
	if errors.As(util.WrapWorkerError(worker, index, item, err), &we) {
		c.failures = append(c.failures, we)
	}
}

// err returns the failure with the lowest item index
func (c *collector[T, R]) err() error {
	if len(c.failures) == 0 {
		return nil
	}
	sort.SliceStable(c.failures, func(i, j int) bool {
		return c.failures[i].Index < c.failures[j].Index
	})
	return c.failures[0]
}

func (c *collector[T, R]) finish(elapsed time.Duration, logger *slog.Logger) (*Run[R], error) {
	first := c.err()

	run := &Run[R]{Report: c.report, Values: c.values}
	run.Duration = elapsed
	run.DurationSeconds = elapsed.Seconds()
	run.Latency = c.latency.Stats()
	run.Status = Completed
	run.FailureCount = len(c.failures)

	if first != nil {
		run.Status = Failed
		run.Error = first.Error()
		run.Failures = make([]error, len(c.failures))
		for i, f := range c.failures {
			run.Failures[i] = f
		}
	}

	logger.Info("strategy finished",
		"strategy", run.Strategy,
		"workload", run.Workload,
		"items", run.Items,
		"workers", run.Workers,
		"status", run.Status,
		"failures", run.FailureCount,
		"duration", elapsed)

	return run, first
}
