package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aryankumar/concur/internal/partition"
	"github.com/aryankumar/concur/internal/timer"
	"github.com/aryankumar/concur/internal/util"
	"github.com/aryankumar/concur/internal/work"
)

// ProcessPoolStrategy runs each partition in its own OS process. Items and
// values cross the process boundary as JSON, so T and R must round-trip
// through encoding/json and the unit must be registered in the worker's
// Registry under the same name.
type ProcessPoolStrategy[T, R any] struct {
	unit     work.Unit[T, R]
	workers  int
	launcher work.Launcher
	mode     work.Mode
	logger   *slog.Logger
}

// NewProcessPool creates a process pool strategy. With work.ModeAsync each
// worker process runs its partition on a cooperative executor.
func NewProcessPool[T, R any](unit work.Unit[T, R], workers int, launcher work.Launcher, mode work.Mode, logger *slog.Logger) *ProcessPoolStrategy[T, R] {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = work.ModeSync
	}
	return &ProcessPoolStrategy[T, R]{
		unit:     unit,
		workers:  workers,
		launcher: launcher,
		mode:     mode,
		logger:   logger,
	}
}

// Name implements Strategy
func (s *ProcessPoolStrategy[T, R]) Name() Name {
	if s.mode == work.ModeAsync {
		return ProcessAsync
	}
	return Process
}

// Run implements Strategy. Process start-up and serialization are part of the
// measured duration.
func (s *ProcessPoolStrategy[T, R]) Run(ctx context.Context, items []T) (*Run[R], error) {
	shards, err := shard(items, s.workers)
	if err != nil {
		return nil, err
	}

	c := newCollector[T, R](s.Name(), s.unit.Name, items, len(shards))

	elapsed, _ := timer.Measure(c.label(), s.logger, func() error {
		offsets := partition.Offsets(shards)
		responses := make([]*work.Response, len(shards))
		errs := make([]error, len(shards))

		var g errgroup.Group
		for w, part := range shards {
			g.Go(func() error {
				raw, err := work.EncodeItems(part)
				if err != nil {
					errs[w] = err
					return err
				}

				responses[w], errs[w] = s.launcher.Launch(ctx, work.Request{
					Unit:   s.unit.Name,
					Worker: w,
					Mode:   s.mode,
					Offset: offsets[w],
					Items:  raw,
				})
				return errs[w]
			})
		}

		// A plain Group never cancels siblings, so this waits for every process
		if err := g.Wait(); err != nil {
			s.logger.Warn("worker process failed", "strategy", s.Name(), "error", err)
		}

		for w := range shards {
			switch {
			case errs[w] != nil:
				err := errs[w]
				if ctx.Err() != nil && !util.IsSerialization(err) {
					err = fmt.Errorf("%w: %w", util.ErrCancelled, err)
				}
				c.failAll(w, offsets[w], len(shards[w]), err)
			case responses[w].Error != nil:
				c.failAll(w, offsets[w], len(shards[w]), responses[w].Error.Err())
			default:
				c.add(w, work.DecodeOutcomes[R](responses[w]))
			}
		}

		return c.err()
	})

	return c.finish(elapsed, s.logger)
}
