// Package lightflow provides the task execution core of a DAG-based
// workflow engine. It defines the per-task state machine, the execution
// wrapper that mediates between user task logic and the engine, and the
// control-flow protocol through which a task requests early termination,
// successor skipping, or whole-workflow abort.
//
// User task logic is an ordinary Go function returning a tagged Outcome:
//
//	fn := func(ctx context.Context, data *task.MultiTaskData,
//	    store datastore.Store, sig task.Signal) (task.Outcome, error) {
//	    data.Set("rows", 42)
//	    return task.Complete(nil), nil
//	}
//	t := task.New("count-rows", fn, task.WithQueue(task.QueueTask))
//
// The task.Runner invokes the function, interprets the outcome
// (complete, stop, abort), normalizes it into an Action handed to the
// scheduler, and notifies an injected Observer for state bookkeeping.
//
// # Architecture
//
// Each collaborator the core depends on is an interface with pluggable
// backends: datastore (memory, MongoDB) for cross-task persistence,
// signal (in-process, Redis pub/sub) for engine control signals, and
// queue (memory, Redis) for asynchronous task dispatch behind the
// task.JobHandle abstraction. The dag package ties them together with a
// minimal topological walker.
//
// Entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package lightflow
