package strategy

import (
	"context"
	"log/slog"

	"github.com/aryankumar/concur/internal/timer"
	"github.com/aryankumar/concur/internal/work"
)

// AsyncStrategy spawns one cooperative task per item on a single executor
type AsyncStrategy[T, R any] struct {
	unit   work.Unit[T, R]
	logger *slog.Logger
}

// NewAsync creates a strategy that gathers every item as a cooperative task and
// awaits them all. Only one task body runs at a time; tasks overlap only while
// suspended in async.Await.
func NewAsync[T, R any](unit work.Unit[T, R], logger *slog.Logger) *AsyncStrategy[T, R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncStrategy[T, R]{unit: unit, logger: logger}
}

// Name implements Strategy
func (s *AsyncStrategy[T, R]) Name() Name {
	return Async
}

// Run implements Strategy. Workers in the report is the number of tasks.
func (s *AsyncStrategy[T, R]) Run(ctx context.Context, items []T) (*Run[R], error) {
	c := newCollector[T, R](Async, s.unit.Name, items, len(items))

	elapsed, _ := timer.Measure(c.label(), s.logger, func() error {
		c.add(-1, work.GatherPartition(ctx, s.logger, s.unit.AsyncFunc(), items, 0))
		return c.err()
	})

	return c.finish(elapsed, s.logger)
}
