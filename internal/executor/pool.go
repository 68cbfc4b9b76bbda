package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Task is one unit of dispatch for the pool. The threaded strategy submits one
// task per partition, so a task usually processes several work items.
type Task struct {
	// Name labels the task in logs and results, e.g. "worker-2"
	Name string

	// Execute runs the task. Panics are recovered and reported as errors.
	Execute func(ctx context.Context) (interface{}, error)
}

// Result represents the outcome of executing a task
type Result struct {
	// Name is the name of the task that produced this result
	Name string

	// Index is the task's submission position
	Index int

	// Data contains the task's return value, which may be set even when Error is set
	Data interface{}

	// Error contains any error that occurred during execution (nil if successful)
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration

	// executed distinguishes a task that ran from one skipped by cancellation
	executed bool
}

// Pool runs submitted tasks on a bounded number of goroutines sharing one address space.
// All tasks are submitted before Execute starts and Execute returns only after every
// task that started has finished.
type Pool struct {
	// workers is the number of concurrent workers
	workers int

	// tasks is the queue of tasks to execute
	tasks []Task

	// mu protects the tasks slice
	mu sync.Mutex

	logger *slog.Logger

	running atomic.Bool
}

// NewPool creates a new worker pool with the specified number of workers
// workers must be > 0, otherwise it defaults to 1
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		workers: workers,
		tasks:   make([]Task, 0),
		logger:  logger,
	}
}

// Submit adds a task to the pool's queue
// Returns an error if the pool is already running
func (p *Pool) Submit(task Task) error {
	if p.running.Load() {
		return fmt.Errorf("pool is running, cannot submit new tasks")
	}

	if task.Name == "" {
		return fmt.Errorf("task must have a name")
	}

	if task.Execute == nil {
		return fmt.Errorf("task must have an execute function")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.tasks = append(p.tasks, task)
	p.logger.Debug("task submitted", "task", task.Name, "total_tasks", len(p.tasks))

	return nil
}

// Execute runs all submitted tasks and returns one result per task in submission order
func (p *Pool) Execute(ctx context.Context) []Result {
	return p.ExecuteWithProgress(ctx, nil)
}

// ExecuteWithProgress runs all tasks, calling progressFn with (completed, total)
// after each task finishes. progressFn may be called from several goroutines.
func (p *Pool) ExecuteWithProgress(ctx context.Context, progressFn func(completed, total int)) []Result {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Error("pool is already running")
		return []Result{}
	}
	defer p.running.Store(false)

	p.mu.Lock()
	taskCount := len(p.tasks)
	if taskCount == 0 {
		p.mu.Unlock()
		p.logger.Debug("no tasks to execute")
		return []Result{}
	}

	// Drain the queue so the pool can be reused for another batch
	queued := p.tasks
	p.tasks = make([]Task, 0)
	p.mu.Unlock()

	workerCount := p.workers
	if workerCount > taskCount {
		workerCount = taskCount
	}

	p.logger.Debug("starting task execution", "workers", workerCount, "tasks", taskCount)
	startTime := time.Now()

	// Every task is queued before any worker waits on results
	taskChan := make(chan taskWithIndex, taskCount)
	for i, task := range queued {
		taskChan <- taskWithIndex{task: task, index: i}
	}
	close(taskChan)

	resultChan := make(chan Result, taskCount)
	var completed atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, i, taskChan, resultChan, &wg, &completed, taskCount, progressFn)
	}

	wg.Wait()
	close(resultChan)

	results := make([]Result, taskCount)
	for res := range resultChan {
		results[res.Index] = res
	}

	// Tasks never picked up because the context was cancelled
	for i := range results {
		if !results[i].executed {
			results[i] = Result{
				Name:  queued[i].Name,
				Index: i,
				Error: fmt.Errorf("task not executed: %w", context.Cause(ctx)),
			}
		}
	}

	summary := Summarize(results)
	p.logger.Debug("task execution completed",
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"duration", time.Since(startTime))

	return results
}

// worker is the worker goroutine that processes tasks from the task channel
func (p *Pool) worker(
	ctx context.Context,
	workerID int,
	taskChan <-chan taskWithIndex,
	resultChan chan<- Result,
	wg *sync.WaitGroup,
	completed *atomic.Int32,
	total int,
	progressFn func(completed, total int),
) {
	defer wg.Done()

	for item := range taskChan {
		if ctx.Err() != nil {
			p.logger.Debug("worker stopping due to context cancellation", "worker_id", workerID)
			return
		}

		result := p.executeTask(ctx, item)

		// resultChan holds one slot per task, so this never blocks
		resultChan <- result

		completedCount := completed.Add(1)
		p.logger.Debug("task completed",
			"worker_id", workerID,
			"task", item.task.Name,
			"success", result.Error == nil,
			"duration", result.Duration,
			"progress", fmt.Sprintf("%d/%d", completedCount, total))

		if progressFn != nil {
			progressFn(int(completedCount), total)
		}
	}
}

// executeTask executes a single task and returns the result
func (p *Pool) executeTask(ctx context.Context, item taskWithIndex) (result Result) {
	startTime := time.Now()
	result = Result{Name: item.task.Name, Index: item.index, executed: true}

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("task %s panicked: %v", item.task.Name, r)
		}
		result.Duration = time.Since(startTime)

		if result.Error != nil {
			p.logger.Warn("task failed",
				"task", item.task.Name,
				"error", result.Error,
				"duration", result.Duration)
		}
	}()

	result.Data, result.Error = item.task.Execute(ctx)
	return result
}

// TaskCount returns the number of tasks currently queued
func (p *Pool) TaskCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// WorkerCount returns the number of workers in the pool
func (p *Pool) WorkerCount() int {
	return p.workers
}

// taskWithIndex pairs a task with its original index for result ordering
type taskWithIndex struct {
	task  Task
	index int
}
