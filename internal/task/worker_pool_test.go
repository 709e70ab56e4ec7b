package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(1, discardLogger())

	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 0}, discardLogger())
	assert.Equal(t, 1, pool.workerCount, "invalid count falls back to one worker")

	pool = NewWorkerPool(q, DefaultWorkerPoolConfig(), nil)
	assert.Equal(t, 2, pool.workerCount)
	assert.NotNil(t, pool.logger)
}

func TestWorkerPoolProcessesTasks(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(10, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 3}, discardLogger())
	pool.Start()
	pool.Start()

	var done sync.WaitGroup
	var count atomic.Int32
	for i := 0; i < 10; i++ {
		done.Add(1)
		require.NoError(t, q.Enqueue(NewFuncTask("test", func(context.Context) error {
			defer done.Done()
			count.Add(1)
			return nil
		})))
	}

	done.Wait()
	pool.Stop()
	assert.Equal(t, int32(10), count.Load())
}

func TestWorkerPoolErrorHandler(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(2, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, discardLogger())

	errs := make(chan error, 2)
	pool.SetErrorHandler(func(_ Task, err error) { errs <- err })
	pool.Start()
	defer pool.Stop()

	boom := errors.New("boom")
	require.NoError(t, q.Enqueue(NewFuncTask("test", func(context.Context) error { return boom })))
	require.NoError(t, q.Enqueue(NewFuncTask("test", func(context.Context) error { panic("kaboom") })))

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			assert.Error(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("error handler not called")
		}
	}
}

func TestWorkerPoolStopDrainsQueue(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(5, discardLogger())
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(NewFuncTask("test", func(context.Context) error {
			count.Add(1)
			return nil
		})))
	}

	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 2}, discardLogger())
	pool.cancel()
	pool.Start()
	pool.Wait()

	assert.Equal(t, int32(5), count.Load())
}

func TestWorkerPoolWaitAfterClose(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(5, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 2}, discardLogger())
	pool.Start()

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(NewFuncTask("test", func(context.Context) error {
			count.Add(1)
			return nil
		})))
	}
	q.Close()
	pool.Wait()

	assert.Equal(t, int32(5), count.Load())
}

func TestTasksSeeUncancelledContext(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(1, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, discardLogger())

	started := make(chan struct{})
	release := make(chan struct{})
	var ctxErr error
	require.NoError(t, q.Enqueue(NewFuncTask("test", func(ctx context.Context) error {
		close(started)
		<-release
		ctxErr = ctx.Err()
		return nil
	})))

	pool.Start()
	<-started
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	pool.Stop()

	assert.NoError(t, ctxErr)
}

func TestSaveTask(t *testing.T) {
	t.Parallel()

	called := false
	st := NewSaveTask("noble", "n1", 3, func(context.Context) error {
		called = true
		return nil
	})

	assert.Equal(t, TaskTypeSnapshotSave, st.Type())
	assert.Equal(t, "n1", st.AggregateID)
	assert.Equal(t, uint64(3), st.Version)
	require.NoError(t, st.Execute(context.Background()))
	assert.True(t, called)
}
