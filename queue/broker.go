package queue

import (
	"context"

	"github.com/portrain/lightflow/task"
)

// Broker dispatches tasks onto an asynchronous job queue. Dispatch
// returns a handle the scheduler polls for completion; the task's
// descriptor keeps the handle until its result is discarded.
type Broker interface {
	// Dispatch places the task onto its queue class with the given
	// incoming payload (nil for the first task in a DAG branch).
	Dispatch(ctx context.Context, t *task.Task, data *task.MultiTaskData) (task.JobHandle, error)
}
