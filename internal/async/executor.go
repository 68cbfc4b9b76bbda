package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrAlreadyRunning is returned when Run is called on an executor that is already running
var ErrAlreadyRunning = errors.New("executor is already running")

// Executor schedules cooperative tasks on a single logical thread of control
type Executor struct {
	logger *slog.Logger

	// mu protects ready, live and nextID
	mu     sync.Mutex
	ready  []*Task
	live   int
	nextID int

	// wake is signalled when a task becomes ready
	wake chan struct{}

	// yield carries control back from a task to the run loop
	yield chan *Task

	running atomic.Bool
}

// Task is a unit of cooperative work owned by an Executor
type Task struct {
	id     int
	ctx    context.Context
	exec   *Executor
	resume chan struct{}

	// done and err are written by the task before its final yield
	done bool
	err  error
}

// NewExecutor creates an executor with no tasks
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		logger: logger,
		wake:   make(chan struct{}, 1),
		yield:  make(chan *Task),
	}
}

// Spawn schedules fn as a new task. The task starts when Run gives it control.
// Spawn may be called before Run or from inside a running task.
func (e *Executor) Spawn(ctx context.Context, fn func(t *Task) error) *Task {
	e.mu.Lock()
	t := &Task{
		id:     e.nextID,
		ctx:    ctx,
		exec:   e,
		resume: make(chan struct{}),
	}
	e.nextID++
	e.live++
	e.ready = append(e.ready, t)
	e.mu.Unlock()

	go func() {
		<-t.resume
		t.err = t.call(fn)
		t.done = true
		e.yield <- t
	}()

	e.notify()
	e.logger.Debug("task spawned", "task_id", t.id)
	return t
}

// Run drives tasks until every spawned task has finished
func (e *Executor) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	e.logger.Debug("executor started", "tasks", e.Pending())
	switches := 0

	for {
		e.mu.Lock()
		if e.live == 0 {
			e.mu.Unlock()
			break
		}
		if len(e.ready) == 0 {
			e.mu.Unlock()
			// Every live task is parked on an operation; sleep until one completes.
			<-e.wake
			continue
		}
		t := e.ready[0]
		e.ready = e.ready[1:]
		e.mu.Unlock()

		t.resume <- struct{}{}
		back := <-e.yield
		switches++

		if back.done {
			e.mu.Lock()
			e.live--
			e.mu.Unlock()
			if back.err != nil {
				e.logger.Debug("task failed", "task_id", back.id, "error", back.err)
			}
		}
	}

	e.logger.Debug("executor finished", "context_switches", switches, "cancelled", ctx.Err() != nil)
	return nil
}

// Pending returns the number of tasks that have not finished
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// Context returns the task's context
func (t *Task) Context() context.Context {
	return t.ctx
}

// ID returns the task's spawn sequence number
func (t *Task) ID() int {
	return t.id
}

// Err returns the task's error. Valid once Run has returned.
func (t *Task) Err() error {
	return t.err
}

// Yield parks the task at the back of the ready queue, letting other tasks run
func (t *Task) Yield() {
	t.suspend(func(done func()) { done() })
}

// suspend hands control back to the run loop. start must arrange for done to
// be called exactly once when the task may be resumed.
func (t *Task) suspend(start func(done func())) {
	start(func() { t.exec.schedule(t) })
	t.exec.yield <- t
	<-t.resume
}

func (t *Task) call(fn func(t *Task) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d panicked: %v", t.id, r)
		}
	}()
	return fn(t)
}

func (e *Executor) schedule(t *Task) {
	e.mu.Lock()
	e.ready = append(e.ready, t)
	e.mu.Unlock()
	e.notify()
}

func (e *Executor) notify() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Await runs op off the executor and suspends t until it returns. It must be
// called from inside t's own task function.
func Await[R any](t *Task, op func(ctx context.Context) (R, error)) (R, error) {
	var (
		result R
		err    error
	)

	t.suspend(func(done func()) {
		go func() {
			defer done()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("awaited operation panicked: %v", r)
				}
			}()
			result, err = op(t.ctx)
		}()
	})

	return result, err
}

// Outcome is the result of one gathered task
type Outcome[R any] struct {
	Value   R
	Err     error
	Latency time.Duration
}

// Gather spawns one task per item on a fresh executor, runs them all to
// completion, and returns outcomes in item order.
func Gather[T, R any](ctx context.Context, logger *slog.Logger, items []T, fn func(t *Task, item T) (R, error)) []Outcome[R] {
	exec := NewExecutor(logger)
	outcomes := make([]Outcome[R], len(items))
	tasks := make([]*Task, len(items))

	for i, item := range items {
		i, item := i, item
		tasks[i] = exec.Spawn(ctx, func(t *Task) error {
			start := time.Now()
			if err := t.ctx.Err(); err != nil {
				outcomes[i].Err = err
				return err
			}
			value, err := fn(t, item)
			outcomes[i] = Outcome[R]{Value: value, Err: err, Latency: time.Since(start)}
			return err
		})
	}

	// A fresh executor cannot already be running.
	_ = exec.Run(ctx)

	// A panicking fn never reaches the assignment above.
	for i, t := range tasks {
		if outcomes[i].Err == nil && t.Err() != nil {
			outcomes[i].Err = t.Err()
		}
	}

	return outcomes
}
