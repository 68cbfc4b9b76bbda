package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{
			name:            "positive workers",
			workers:         5,
			expectedWorkers: 5,
		},
		{
			name:            "zero workers defaults to 1",
			workers:         0,
			expectedWorkers: 1,
		},
		{
			name:            "negative workers defaults to 1",
			workers:         -5,
			expectedWorkers: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(tt.workers, nil)
			if pool == nil {
				t.Fatal("NewPool returned nil")
			}

			if pool.WorkerCount() != tt.expectedWorkers {
				t.Errorf("expected %d workers, got %d", tt.expectedWorkers, pool.WorkerCount())
			}

			if pool.TaskCount() != 0 {
				t.Errorf("expected 0 tasks initially, got %d", pool.TaskCount())
			}
		})
	}
}

func TestPool_Submit(t *testing.T) {
	tests := []struct {
		name        string
		task        Task
		wantErr     bool
		errContains string
	}{
		{
			name: "valid task",
			task: Task{
				Name:    "worker-0",
				Execute: func(ctx context.Context) (interface{}, error) { return "ok", nil },
			},
		},
		{
			name: "missing name",
			task: Task{
				Execute: func(ctx context.Context) (interface{}, error) { return nil, nil },
			},
			wantErr:     true,
			errContains: "name",
		},
		{
			name:        "missing execute function",
			task:        Task{Name: "worker-0"},
			wantErr:     true,
			errContains: "execute function",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(1, testLogger())
			err := pool.Submit(tt.task)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if pool.TaskCount() != 1 {
				t.Errorf("expected 1 task, got %d", pool.TaskCount())
			}
		})
	}
}

func TestPool_Submit_WhileRunning(t *testing.T) {
	pool := NewPool(1, testLogger())
	started := make(chan struct{})
	release := make(chan struct{})

	err := pool.Submit(Task{
		Name: "blocker",
		Execute: func(ctx context.Context) (interface{}, error) {
			close(started)
			<-release
			return "done", nil
		},
	})
	if err != nil {
		t.Fatalf("failed to submit task: %v", err)
	}

	done := make(chan struct{})
	go func() {
		pool.Execute(context.Background())
		close(done)
	}()

	<-started

	err = pool.Submit(Task{
		Name:    "late",
		Execute: func(ctx context.Context) (interface{}, error) { return nil, nil },
	})
	close(release)
	<-done

	if err == nil || !strings.Contains(err.Error(), "running") {
		t.Errorf("expected error about running, got: %v", err)
	}
}

func TestPool_Execute(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		tasks   int
		failing map[int]bool
	}{
		{name: "single task", workers: 1, tasks: 1},
		{name: "more tasks than workers", workers: 2, tasks: 7},
		{name: "more workers than tasks", workers: 10, tasks: 2},
		{name: "mixed success and failure", workers: 3, tasks: 6, failing: map[int]bool{1: true, 4: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(tt.workers, testLogger())

			for i := 0; i < tt.tasks; i++ {
				i := i
				err := pool.Submit(Task{
					Name: fmt.Sprintf("worker-%d", i),
					Execute: func(ctx context.Context) (interface{}, error) {
						time.Sleep(time.Millisecond)
						if tt.failing[i] {
							return nil, fmt.Errorf("task %d failed", i)
						}
						return i * 10, nil
					},
				})
				if err != nil {
					t.Fatalf("failed to submit task: %v", err)
				}
			}

			results := pool.Execute(context.Background())

			if len(results) != tt.tasks {
				t.Fatalf("expected %d results, got %d", tt.tasks, len(results))
			}

			for i, r := range results {
				if r.Index != i {
					t.Errorf("result %d has index %d, results must be in submission order", i, r.Index)
				}
				if r.Name != fmt.Sprintf("worker-%d", i) {
					t.Errorf("result %d has name %q", i, r.Name)
				}
				if r.Duration == 0 {
					t.Errorf("result %d has zero duration", i)
				}
				if tt.failing[i] {
					if r.Error == nil {
						t.Errorf("result %d: expected error", i)
					}
					continue
				}
				if r.Error != nil {
					t.Errorf("result %d: unexpected error %v", i, r.Error)
				}
				if r.Data != i*10 {
					t.Errorf("result %d: data %v, want %d", i, r.Data, i*10)
				}
			}

			if got := CountFailed(results); got != len(tt.failing) {
				t.Errorf("expected %d failures, got %d", len(tt.failing), got)
			}
			if pool.TaskCount() != 0 {
				t.Errorf("queue should be drained after execute, has %d", pool.TaskCount())
			}
		})
	}
}

func TestPool_Execute_Empty(t *testing.T) {
	pool := NewPool(5, testLogger())

	if results := pool.Execute(context.Background()); len(results) != 0 {
		t.Errorf("expected 0 results for empty pool, got %d", len(results))
	}
}

func TestPool_Execute_BoundedConcurrency(t *testing.T) {
	const workers = 3
	pool := NewPool(workers, testLogger())

	var active, maxActive atomic.Int32
	for i := 0; i < 12; i++ {
		pool.Submit(Task{
			Name: fmt.Sprintf("worker-%d", i),
			Execute: func(ctx context.Context) (interface{}, error) {
				n := active.Add(1)
				for {
					m := maxActive.Load()
					if n <= m || maxActive.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				active.Add(-1)
				return nil, nil
			},
		})
	}

	pool.Execute(context.Background())

	if maxActive.Load() > workers {
		t.Errorf("observed %d concurrent tasks, limit is %d", maxActive.Load(), workers)
	}
	if maxActive.Load() < 2 {
		t.Errorf("observed %d concurrent tasks, expected parallel execution", maxActive.Load())
	}
}

func TestPool_Execute_WaitsForAllAfterFailure(t *testing.T) {
	pool := NewPool(4, testLogger())

	var finished atomic.Int32
	pool.Submit(Task{
		Name: "fails-fast",
		Execute: func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("immediate failure")
		},
	})
	for i := 0; i < 3; i++ {
		pool.Submit(Task{
			Name: fmt.Sprintf("slow-%d", i),
			Execute: func(ctx context.Context) (interface{}, error) {
				time.Sleep(30 * time.Millisecond)
				finished.Add(1)
				return "done", nil
			},
		})
	}

	results := pool.Execute(context.Background())

	if finished.Load() != 3 {
		t.Errorf("Execute returned before slow tasks finished: %d/3 done", finished.Load())
	}
	_, failed := Split(results)
	if len(failed) != 1 || failed[0].Error.Error() != "immediate failure" {
		t.Errorf("failed tasks = %+v", failed)
	}
}

func TestPool_Execute_RecoversPanics(t *testing.T) {
	pool := NewPool(2, testLogger())

	pool.Submit(Task{
		Name:    "panics",
		Execute: func(ctx context.Context) (interface{}, error) { panic("bad shard") },
	})
	pool.Submit(Task{
		Name:    "fine",
		Execute: func(ctx context.Context) (interface{}, error) { return "ok", nil },
	})

	results := pool.Execute(context.Background())

	if results[0].Error == nil || !strings.Contains(results[0].Error.Error(), "bad shard") {
		t.Errorf("expected panic error, got %v", results[0].Error)
	}
	if results[1].Error != nil {
		t.Errorf("unexpected error for sibling: %v", results[1].Error)
	}
}

func TestPool_Execute_ContextCancellation(t *testing.T) {
	pool := NewPool(1, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	for i := 0; i < 5; i++ {
		pool.Submit(Task{
			Name: fmt.Sprintf("worker-%d", i),
			Execute: func(ctx context.Context) (interface{}, error) {
				select {
				case <-time.After(100 * time.Millisecond):
					return "completed", nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			},
		})
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	results := pool.Execute(ctx)

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}

	for i, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("result %d: expected context.Canceled, got %v", i, r.Error)
		}
	}
	if !strings.Contains(results[4].Error.Error(), "not executed") {
		t.Errorf("expected queued task to be reported as not executed, got %v", results[4].Error)
	}
}

func TestPool_ExecuteWithProgress(t *testing.T) {
	pool := NewPool(2, testLogger())

	taskCount := 5
	for i := 0; i < taskCount; i++ {
		pool.Submit(Task{
			Name: fmt.Sprintf("worker-%d", i),
			Execute: func(ctx context.Context) (interface{}, error) {
				time.Sleep(5 * time.Millisecond)
				return "done", nil
			},
		})
	}

	var mu sync.Mutex
	seen := make(map[int]bool)
	results := pool.ExecuteWithProgress(context.Background(), func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != taskCount {
			t.Errorf("expected total %d, got %d", taskCount, total)
		}
		seen[completed] = true
	})

	if len(results) != taskCount {
		t.Errorf("expected %d results, got %d", taskCount, len(results))
	}
	for i := 1; i <= taskCount; i++ {
		if !seen[i] {
			t.Errorf("progress never reported %d completed", i)
		}
	}
}
