package work

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryankumar/concur/internal/async"
	"github.com/aryankumar/concur/internal/timer"
	"github.com/aryankumar/concur/internal/util"
)

// Func processes one item, blocking the calling goroutine
type Func[T, R any] func(ctx context.Context, item T) (R, error)

// AsyncFunc processes one item as a cooperative task. It suspends only at
// async.Await or Task.Yield.
type AsyncFunc[T, R any] func(t *async.Task, item T) (R, error)

// Unit is a named unit of work
type Unit[T, R any] struct {
	// Name identifies the unit in a Registry and in reports
	Name string

	// Sync is required
	Sync Func[T, R]

	// Async is optional. When nil, AsyncFunc awaits Sync off the executor.
	Async AsyncFunc[T, R]
}

// AsyncFunc returns the unit's cooperative form
func (u Unit[T, R]) AsyncFunc() AsyncFunc[T, R] {
	if u.Async != nil {
		return u.Async
	}
	blocking := u.Sync
	return func(t *async.Task, item T) (R, error) {
		return async.Await(t, func(ctx context.Context) (R, error) {
			return blocking(ctx, item)
		})
	}
}

func (u Unit[T, R]) validate() error {
	if u.Name == "" {
		return fmt.Errorf("unit must have a name")
	}
	if u.Sync == nil {
		return fmt.Errorf("unit %q must have a sync function", u.Name)
	}
	return nil
}

// Outcome is the result of processing one item
type Outcome[R any] struct {
	// Index is the item's position in the original, unpartitioned input
	Index   int
	Value   R
	Err     error
	Latency time.Duration
}

// RunPartition applies fn to items in order on the calling goroutine. offset is
// the index of items[0] in the original input. The first failure stops the
// partition. Once ctx is done every remaining item is reported as cancelled.
func RunPartition[T, R any](ctx context.Context, fn Func[T, R], items []T, offset int) []Outcome[R] {
	outcomes := make([]Outcome[R], 0, len(items))

	for i, item := range items {
		if ctx.Err() != nil {
			for j := i; j < len(items); j++ {
				outcomes = append(outcomes, Outcome[R]{Index: offset + j, Err: Cancelled(ctx)})
			}
			break
		}

		sw := timer.Start()
		value, err := call(ctx, fn, item)
		outcomes = append(outcomes, Outcome[R]{
			Index:   offset + i,
			Value:   value,
			Err:     classify(ctx, err),
			Latency: sw.Elapsed(),
		})

		// A failure caused by cancellation still lets the remaining items be reported
		if err != nil && ctx.Err() == nil {
			break
		}
	}

	return outcomes
}

// GatherPartition spawns one cooperative task per item on a fresh executor and
// waits for all of them. A failure does not stop sibling tasks.
func GatherPartition[T, R any](ctx context.Context, logger *slog.Logger, fn AsyncFunc[T, R], items []T, offset int) []Outcome[R] {
	gathered := async.Gather(ctx, logger, items, fn)

	outcomes := make([]Outcome[R], len(gathered))
	for i, g := range gathered {
		outcomes[i] = Outcome[R]{Index: offset + i, Value: g.Value, Err: classify(ctx, g.Err), Latency: g.Latency}
	}

	return outcomes
}

// Cancelled returns the error recorded for an item skipped or interrupted
// because ctx is done
func Cancelled(ctx context.Context) error {
	cause := context.Cause(ctx)
	switch {
	case cause == nil:
		return util.ErrCancelled
	case errors.Is(cause, util.ErrCancelled):
		return cause
	default:
		return fmt.Errorf("%w: %w", util.ErrCancelled, cause)
	}
}

// classify reports a unit error that came from ctx ending as a cancellation
func classify(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil || util.IsCancelled(err) {
		return err
	}
	if errors.Is(err, ctx.Err()) || errors.Is(err, context.Cause(ctx)) {
		return Cancelled(ctx)
	}
	return err
}

func call[T, R any](ctx context.Context, fn Func[T, R], item T) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unit panicked: %v", r)
		}
	}()
	return fn(ctx, item)
}
