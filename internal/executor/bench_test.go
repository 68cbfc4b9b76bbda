package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

var benchLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// BenchmarkPool_Execute runs one task per shard, the way the threaded strategy does
func BenchmarkPool_Execute(b *testing.B) {
	for _, shards := range []int{1, 2, 4, 8, 16} {
		b.Run(fmt.Sprintf("shards_%d", shards), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				pool := NewPool(shards, benchLogger)
				for s := 0; s < shards; s++ {
					pool.Submit(Task{
						Name: fmt.Sprintf("worker-%d", s),
						Execute: func(ctx context.Context) (interface{}, error) {
							time.Sleep(50 * time.Microsecond)
							return s, nil
						},
					})
				}
				b.StartTimer()

				pool.Execute(context.Background())
			}
		})
	}
}

func BenchmarkSummarize(b *testing.B) {
	results := make([]Result, 1000)
	for i := range results {
		results[i] = Result{Name: fmt.Sprintf("worker-%d", i), Index: i, Duration: time.Duration(i) * time.Microsecond}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Summarize(results)
	}
}
