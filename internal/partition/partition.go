// Package partition splits an ordered list of work items into contiguous
// per-worker chunks.
//
// The first workers-1 partitions each receive floor(len/workers) items and
// the last partition absorbs the remainder. When there are fewer items than
// workers that floor is zero, so Split puts every item on the last worker.
// Callers that spawn one worker per partition should size the pool with
// Workers first, which caps the worker count at the item count.
package partition

import (
	"github.com/aryankumar/concur/internal/util"
)

// Split divides items into exactly workers contiguous partitions.
// Concatenating the result in order reproduces items. The returned
// partitions alias the backing array of items.
func Split[T any](items []T, workers int) ([][]T, error) {
	if workers < 1 {
		return nil, &util.PartitionError{
			Workers: workers,
			Items:   len(items),
			Err:     util.ErrInvalidWorkers,
		}
	}

	base := len(items) / workers
	parts := make([][]T, workers)

	for i := 0; i < workers-1; i++ {
		parts[i] = items[i*base : (i+1)*base : (i+1)*base]
	}
	parts[workers-1] = items[(workers-1)*base:]

	return parts, nil
}

// Workers returns the number of workers a strategy should spawn for
// itemCount items when requested workers are configured: requested capped at
// itemCount, and never below 1. It does not validate requested; Split does.
func Workers(itemCount, requested int) int {
	if requested > itemCount {
		requested = itemCount
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}

// Join concatenates partitions back into a single slice.
func Join[T any](parts [][]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}

	joined := make([]T, 0, n)
	for _, p := range parts {
		joined = append(joined, p...)
	}
	return joined
}

// Offsets returns the index in the original input of the first item of each
// partition. Strategies use it to report failures by original item index.
func Offsets[T any](parts [][]T) []int {
	offsets := make([]int, len(parts))
	next := 0
	for i, p := range parts {
		offsets[i] = next
		next += len(p)
	}
	return offsets
}
