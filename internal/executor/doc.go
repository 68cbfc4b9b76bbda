// Package executor provides the bounded goroutine pool behind the threaded strategy.
//
// Tasks are submitted up front, then Execute dispatches every one of them to
// at most N worker goroutines and blocks until all have finished
// (fire-all-then-await-all). Workers share one address space: the pool only
// guarantees that each task is run by exactly one worker, it does not
// synchronize anything the tasks themselves touch.
//
// # Basic Usage
//
//	pool := executor.NewPool(4, logger)
//
//	for i, shard := range shards {
//	    shard := shard
//	    pool.Submit(executor.Task{
//	        Name: fmt.Sprintf("worker-%d", i),
//	        Execute: func(ctx context.Context) (interface{}, error) {
//	            return process(ctx, shard)
//	        },
//	    })
//	}
//
//	results := pool.Execute(ctx)
//
// # Failure Semantics
//
// A failing or panicking task does not stop the others; its error is
// recorded in its Result. Split separates the failed results, still in
// submission order, once everything has finished.
//
// # Context Cancellation
//
// Workers stop picking up new tasks once the context is done. Tasks already
// running are waited for; tasks never started get a "task not executed"
// error wrapping the cancellation cause.
//
// # Result Aggregation
//
//	summary := executor.Summarize(results)
//	ok, failed := executor.Split(results)
package executor
