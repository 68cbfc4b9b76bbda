package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sleep(d time.Duration) func(ctx context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) {
		select {
		case <-time.After(d):
			return struct{}{}, nil
		case <-ctx.Done():
			return struct{}{}, ctx.Err()
		}
	}
}

func TestExecutor_EmptyRun(t *testing.T) {
	exec := NewExecutor(quietLogger())

	done := make(chan error, 1)
	go func() { done <- exec.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return for an empty executor")
	}
}

func TestExecutor_RunsAllTasks(t *testing.T) {
	exec := NewExecutor(quietLogger())
	ctx := context.Background()

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		exec.Spawn(ctx, func(t *Task) error {
			ran.Add(1)
			return nil
		})
	}

	if exec.Pending() != 20 {
		t.Errorf("Pending() = %d before run, want 20", exec.Pending())
	}

	if err := exec.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ran.Load() != 20 {
		t.Errorf("ran %d tasks, want 20", ran.Load())
	}
	if exec.Pending() != 0 {
		t.Errorf("Pending() = %d after run, want 0", exec.Pending())
	}
}

func TestExecutor_SingleThreadOfControl(t *testing.T) {
	exec := NewExecutor(quietLogger())
	ctx := context.Background()

	const tasks = 10
	const wait = 50 * time.Millisecond

	var active, maxActive atomic.Int32
	enter := func() {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		// Give an overlapping task a chance to show up if scheduling were parallel.
		time.Sleep(time.Millisecond)
		active.Add(-1)
	}

	for i := 0; i < tasks; i++ {
		exec.Spawn(ctx, func(t *Task) error {
			enter()
			if _, err := Await(t, sleep(wait)); err != nil {
				return err
			}
			enter()
			return nil
		})
	}

	start := time.Now()
	if err := exec.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)

	if maxActive.Load() != 1 {
		t.Errorf("max concurrently running task bodies = %d, want 1", maxActive.Load())
	}

	// The waits overlap, so the run takes far less than tasks*wait.
	if elapsed >= tasks*wait/2 {
		t.Errorf("elapsed %v suggests awaited operations did not overlap", elapsed)
	}
}

func TestExecutor_YieldInterleaves(t *testing.T) {
	exec := NewExecutor(quietLogger())
	ctx := context.Background()

	var trace []string
	for _, name := range []string{"a", "b"} {
		name := name
		exec.Spawn(ctx, func(t *Task) error {
			for step := 1; step <= 3; step++ {
				trace = append(trace, fmt.Sprintf("%s%d", name, step))
				t.Yield()
			}
			return nil
		})
	}

	if err := exec.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "a1 b1 a2 b2 a3 b3"
	if got := strings.Join(trace, " "); got != want {
		t.Errorf("trace = %q, want %q", got, want)
	}
}

func TestExecutor_FailureDoesNotCancelSiblings(t *testing.T) {
	exec := NewExecutor(quietLogger())
	ctx := context.Background()
	boom := errors.New("boom")

	failing := exec.Spawn(ctx, func(t *Task) error {
		return boom
	})

	var siblingDone atomic.Bool
	sibling := exec.Spawn(ctx, func(t *Task) error {
		if _, err := Await(t, sleep(20*time.Millisecond)); err != nil {
			return err
		}
		siblingDone.Store(true)
		return nil
	})

	if err := exec.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !errors.Is(failing.Err(), boom) {
		t.Errorf("failing task error = %v, want %v", failing.Err(), boom)
	}
	if sibling.Err() != nil {
		t.Errorf("sibling error = %v, want nil", sibling.Err())
	}
	if !siblingDone.Load() {
		t.Error("sibling did not finish")
	}
}

func TestExecutor_PanicBecomesError(t *testing.T) {
	exec := NewExecutor(quietLogger())
	ctx := context.Background()

	task := exec.Spawn(ctx, func(t *Task) error {
		panic("kaboom")
	})
	awaited := exec.Spawn(ctx, func(t *Task) error {
		_, err := Await(t, func(ctx context.Context) (int, error) {
			panic("io kaboom")
		})
		return err
	})

	if err := exec.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if task.Err() == nil || !strings.Contains(task.Err().Error(), "kaboom") {
		t.Errorf("expected panic error, got %v", task.Err())
	}
	if awaited.Err() == nil || !strings.Contains(awaited.Err().Error(), "io kaboom") {
		t.Errorf("expected awaited panic error, got %v", awaited.Err())
	}
}

func TestExecutor_SpawnFromTask(t *testing.T) {
	exec := NewExecutor(quietLogger())
	ctx := context.Background()

	var children atomic.Int32
	exec.Spawn(ctx, func(t *Task) error {
		for i := 0; i < 3; i++ {
			exec.Spawn(t.Context(), func(t *Task) error {
				children.Add(1)
				return nil
			})
		}
		return nil
	})

	if err := exec.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if children.Load() != 3 {
		t.Errorf("ran %d children, want 3", children.Load())
	}
}

func TestExecutor_RunWhileRunning(t *testing.T) {
	exec := NewExecutor(quietLogger())
	ctx := context.Background()

	var nested error
	exec.Spawn(ctx, func(t *Task) error {
		nested = exec.Run(ctx)
		return nil
	})

	if err := exec.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(nested, ErrAlreadyRunning) {
		t.Errorf("nested Run error = %v, want ErrAlreadyRunning", nested)
	}
}

func TestExecutor_CancellationWaitsForTasks(t *testing.T) {
	exec := NewExecutor(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	var finished atomic.Int32
	tasks := make([]*Task, 5)
	for i := range tasks {
		tasks[i] = exec.Spawn(ctx, func(t *Task) error {
			defer finished.Add(1)
			_, err := Await(t, sleep(10*time.Second))
			return err
		})
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := exec.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if finished.Load() != 5 {
		t.Errorf("%d tasks finished, want 5", finished.Load())
	}
	for i, task := range tasks {
		if !errors.Is(task.Err(), context.Canceled) {
			t.Errorf("task %d error = %v, want context.Canceled", i, task.Err())
		}
	}
}

func TestGather(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}

	outcomes := Gather(context.Background(), quietLogger(), items, func(t *Task, n int) (int, error) {
		// Finish in a different order than submitted.
		if _, err := Await(t, sleep(time.Duration(n)*5*time.Millisecond)); err != nil {
			return 0, err
		}
		if n == 4 {
			return 0, errors.New("four")
		}
		return n * n, nil
	})

	if len(outcomes) != len(items) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(items))
	}

	for i, n := range items {
		o := outcomes[i]
		if n == 4 {
			if o.Err == nil {
				t.Errorf("item %d: expected error", n)
			}
			continue
		}
		if o.Err != nil {
			t.Errorf("item %d: unexpected error %v", n, o.Err)
		}
		if o.Value != n*n {
			t.Errorf("item %d: value %d, want %d", n, o.Value, n*n)
		}
		if o.Latency < time.Duration(n)*5*time.Millisecond {
			t.Errorf("item %d: latency %v shorter than its wait", n, o.Latency)
		}
	}
}

func TestGather_PanicIsReported(t *testing.T) {
	outcomes := Gather(context.Background(), quietLogger(), []string{"ok", "bad"}, func(t *Task, s string) (string, error) {
		if s == "bad" {
			panic("bad item")
		}
		return s, nil
	})

	if outcomes[0].Err != nil || outcomes[0].Value != "ok" {
		t.Errorf("outcome 0 = %+v", outcomes[0])
	}
	if outcomes[1].Err == nil {
		t.Error("expected panic to be reported as an error")
	}
}

func TestGather_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	outcomes := Gather(ctx, quietLogger(), []int{1, 2, 3}, func(t *Task, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	if calls.Load() != 0 {
		t.Errorf("fn called %d times after cancellation", calls.Load())
	}
	for i, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("outcome %d error = %v, want context.Canceled", i, o.Err)
		}
	}
}
