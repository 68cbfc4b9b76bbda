package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aryankumar/concur/internal/executor"
	"github.com/aryankumar/concur/internal/partition"
	"github.com/aryankumar/concur/internal/timer"
	"github.com/aryankumar/concur/internal/util"
	"github.com/aryankumar/concur/internal/work"
)

// ThreadedStrategy partitions items over goroutines sharing one address space
type ThreadedStrategy[T, R any] struct {
	unit    work.Unit[T, R]
	workers int
	logger  *slog.Logger
}

// NewThreaded creates a strategy that runs each partition on its own goroutine
// through a bounded executor.Pool
func NewThreaded[T, R any](unit work.Unit[T, R], workers int, logger *slog.Logger) *ThreadedStrategy[T, R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThreadedStrategy[T, R]{unit: unit, workers: workers, logger: logger}
}

// Name implements Strategy
func (s *ThreadedStrategy[T, R]) Name() Name {
	return Threaded
}

// Run implements Strategy
func (s *ThreadedStrategy[T, R]) Run(ctx context.Context, items []T) (*Run[R], error) {
	shards, err := shard(items, s.workers)
	if err != nil {
		return nil, err
	}

	c := newCollector[T, R](Threaded, s.unit.Name, items, len(shards))

	elapsed, _ := timer.Measure(c.label(), s.logger, func() error {
		offsets := partition.Offsets(shards)
		pool := executor.NewPool(len(shards), s.logger)

		// owners maps pool submission order back to the worker index
		owners := make([]int, 0, len(shards))
		for w, part := range shards {
			offset := offsets[w]
			err := pool.Submit(executor.Task{
				Name: fmt.Sprintf("worker-%d", w),
				Execute: func(ctx context.Context) (interface{}, error) {
					return work.RunPartition(ctx, s.unit.Sync, part, offset), nil
				},
			})
			if err != nil {
				c.failAll(w, offset, len(part), err)
				continue
			}
			owners = append(owners, w)
		}

		s.logger.Debug("dispatching shards", "tasks", pool.TaskCount(), "workers", pool.WorkerCount())
		results := pool.Execute(ctx)
		s.logger.Debug("pool finished", "summary", executor.Summarize(results).String())

		finished, failed := executor.Split(results)
		for _, res := range finished {
			w := owners[res.Index]
			outcomes, ok := res.Data.([]work.Outcome[R])
			if !ok {
				c.failAll(w, offsets[w], len(shards[w]), fmt.Errorf("worker %d returned no outcomes", w))
				continue
			}
			c.add(w, outcomes)
		}
		for _, res := range failed {
			w := owners[res.Index]
			err := res.Error
			if ctx.Err() != nil && !util.IsCancelled(err) {
				err = fmt.Errorf("%w: %w", util.ErrCancelled, err)
			}
			c.failAll(w, offsets[w], len(shards[w]), err)
		}

		return c.err()
	})

	return c.finish(elapsed, s.logger)
}
