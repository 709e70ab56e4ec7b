package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	logger *slog.Logger

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	errorHandler func(task Task, err error)

	startOnce sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_pool")

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures.
// It must be called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Calling Start more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop signals the workers to exit and waits for them. Each worker drains
// the tasks already buffered in the queue before exiting.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Wait blocks until every worker has exited. Workers exit once the queue
// channel is closed and drained, so Close followed by Wait processes every
// queued task.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	tasks := p.taskQueue.GetChannel()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			p.drain(tasks, id)
			return

		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			p.processTask(task, id)
		}
	}
}

// drain processes whatever is buffered without waiting for more.
func (p *WorkerPool) drain(tasks <-chan Task, workerID int) {
	for {
		select {
		case task, ok := <-tasks:
			if !ok {
				return
			}
			p.processTask(task, workerID)
		default:
			return
		}
	}
}

// processTask runs one task. Tasks see a context that is never cancelled
// by the pool, so work already started runs to completion.
func (p *WorkerPool) processTask(task Task, workerID int) {
	log := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	err := p.execute(task)
	if err == nil {
		log.Debug("task completed successfully")
		return
	}

	log.Error("task execution failed", "error", err)
	if p.errorHandler != nil {
		p.errorHandler(task, err)
	}
}

func (p *WorkerPool) execute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(context.WithoutCancel(p.ctx))
}
