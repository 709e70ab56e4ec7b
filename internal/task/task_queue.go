package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the TaskQueue
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue implements a buffered task queue that satisfies both
// TaskQueueReader and TaskQueueWriter interfaces
type TaskQueue struct {
	mu     sync.RWMutex
	tasks  chan Task
	logger *slog.Logger
	closed bool
}

// NewTaskQueue creates a new task queue with the specified buffer size
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: logger.With("component", "task_queue"),
	}
}

// Enqueue adds a task to the queue without blocking.
// Returns ErrQueueFull or ErrQueueClosed when the task cannot be accepted.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"queue_len", len(q.tasks),
			"queue_cap", cap(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close closes the task queue, preventing further task submission.
// Tasks already queued remain readable.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed", "pending", len(q.tasks))
	}
}

// GetChannel returns a read-only channel for consuming tasks
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}
