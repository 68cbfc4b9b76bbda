package strategy

import (
	"context"
	"log/slog"

	"github.com/aryankumar/concur/internal/timer"
	"github.com/aryankumar/concur/internal/work"
)

// SequentialStrategy processes items one after another on the calling goroutine
type SequentialStrategy[T, R any] struct {
	unit   work.Unit[T, R]
	logger *slog.Logger
}

// NewSequential creates the baseline strategy. The first failure aborts the run.
func NewSequential[T, R any](unit work.Unit[T, R], logger *slog.Logger) *SequentialStrategy[T, R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &SequentialStrategy[T, R]{unit: unit, logger: logger}
}

// Name implements Strategy
func (s *SequentialStrategy[T, R]) Name() Name {
	return Sequential
}

// Run implements Strategy
func (s *SequentialStrategy[T, R]) Run(ctx context.Context, items []T) (*Run[R], error) {
	c := newCollector[T, R](Sequential, s.unit.Name, items, 1)

	elapsed, _ := timer.Measure(c.label(), s.logger, func() error {
		c.add(-1, work.RunPartition(ctx, s.unit.Sync, items, 0))
		return c.err()
	})

	return c.finish(elapsed, s.logger)
}
