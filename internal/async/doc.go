// Package async provides a single-threaded cooperative executor.
//
// An Executor runs any number of tasks, but only one task body executes at
// a time. A task gives up control only at explicit suspension points:
// Await, which starts a blocking operation (usually I/O) off the executor
// and parks the task until it completes, and Task.Yield. While one task is
// parked the executor resumes another ready task, so I/O waits overlap
// while task code stays strictly interleaved, never parallel.
//
// # Basic Usage
//
//	exec := async.NewExecutor(logger)
//
//	for _, name := range names {
//	    name := name
//	    exec.Spawn(ctx, func(t *async.Task) error {
//	        page, err := async.Await(t, func(ctx context.Context) (string, error) {
//	            return client.Summary(ctx, name)
//	        })
//	        if err != nil {
//	            return err
//	        }
//	        return process(page) // runs on the executor, never concurrently
//	    })
//	}
//
//	if err := exec.Run(ctx); err != nil {
//	    return err
//	}
//
// Gather wraps the spawn-all-then-run-all pattern for a slice of items.
//
// # Failure Semantics
//
// A failing or panicking task does not affect its siblings. Run returns once
// every spawned task has finished; individual errors are read from each
// Task (or from the Outcome values returned by Gather).
//
// # Cancellation
//
// Tasks receive the context given to Spawn and pass it to awaited operations.
// The executor itself never abandons a task: cancelling the context makes
// well-behaved operations return early, after which Run still waits for
// every task to finish.
package async
