package task

import (
	"context"

	"github.com/google/uuid"
)

// SaveTask persists one aggregate snapshot. It carries the aggregate's
// identity so failures can be logged without inspecting the payload.
type SaveTask struct {
	id          uuid.UUID
	Kind        string
	AggregateID string
	Version     uint64
	save        func(ctx context.Context) error
}

// NewSaveTask creates a save task for the given aggregate.
func NewSaveTask(kind, aggregateID string, version uint64, save func(ctx context.Context) error) *SaveTask {
	return &SaveTask{
		id:          uuid.New(),
		Kind:        kind,
		AggregateID: aggregateID,
		Version:     version,
		save:        save,
	}
}

// ID implements Task.
func (t *SaveTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *SaveTask) Type() string { return TaskTypeSnapshotSave }

// Execute implements Task.
func (t *SaveTask) Execute(ctx context.Context) error {
	return t.save(ctx)
}
