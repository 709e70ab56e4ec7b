package syncbridge

import (
	"context"

	"github.com/phrazzld/noble-diary/internal/task"
)

// SaveJob is one pending save.
type SaveJob struct {
	Kind        string
	AggregateID string
	Version     uint64
	Run         func(ctx context.Context) error
}

// Dispatcher runs save jobs without blocking the caller. An error means the
// job was not accepted and will never run.
type Dispatcher interface {
	Dispatch(job SaveJob) error
}

// GoDispatcher runs each job on its own goroutine.
type GoDispatcher struct{}

// Dispatch implements Dispatcher.
func (GoDispatcher) Dispatch(job SaveJob) error {
	go func() {
		_ = job.Run(context.Background())
	}()
	return nil
}

// PoolDispatcher hands jobs to a task queue drained by a task.WorkerPool.
// A full or closed queue rejects the job.
type PoolDispatcher struct {
	queue task.TaskQueueWriter
}

// NewPoolDispatcher creates a dispatcher that enqueues onto queue.
func NewPoolDispatcher(queue task.TaskQueueWriter) *PoolDispatcher {
	return &PoolDispatcher{queue: queue}
}

// Dispatch implements Dispatcher.
func (d *PoolDispatcher) Dispatch(job SaveJob) error {
	return d.queue.Enqueue(task.NewSaveTask(job.Kind, job.AggregateID, job.Version, job.Run))
}
