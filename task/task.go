// Package task defines the per-task execution contract of Lightflow:
// the task descriptor and its state machine, the Runner that wraps user
// task logic, the tagged Outcome control-flow protocol, and the Action
// result value handed back to the scheduler.
package task

import (
	"context"

	"github.com/portrain/lightflow/datastore"
)

// QueueClass selects which job queue category executes a task when it is
// dispatched asynchronously.
type QueueClass string

const (
	// QueueWorkflow is the queue class for whole-workflow jobs.
	QueueWorkflow QueueClass = "workflow"
	// QueueDag is the queue class for DAG-runner jobs.
	QueueDag QueueClass = "dag"
	// QueueTask is the default queue class for individual tasks.
	QueueTask QueueClass = "task"
)

// Signal is the engine-facing signal emitter handed to task logic. Its
// only engine-wide operation at this layer is requesting that the whole
// workflow stop.
type Signal interface {
	StopWorkflow(ctx context.Context) error
}

// Func is user-supplied task logic. It receives the data payload passed
// from predecessor tasks, the persistent store for cross-task data, and
// the signal emitter. It returns a tagged Outcome built with Complete,
// Stop, or Abort; any returned error is treated as fatal by the Runner
// and propagated to the scheduler unchanged in meaning.
type Func func(ctx context.Context, data *MultiTaskData, store datastore.Store, sig Signal) (Outcome, error)

// Task is the descriptor for a single task: immutable identity and
// scheduling policy plus mutable runtime state. A descriptor is created
// once when the DAG is built and lives for the entire workflow run. It
// is exclusively owned by the scheduler; the Runner borrows it only for
// the duration of one invocation. Access to a single descriptor must be
// serialized by the scheduler; distinct descriptors may be driven
// concurrently.
type Task struct {
	name          string
	fn            Func
	queueClass    QueueClass
	forceRun      bool
	propagateSkip bool

	skip   bool
	state  State
	handle JobHandle

	workflowName string
	dagName      string
}

// Option configures a Task at construction time.
type Option func(*Task)

// WithQueue sets the queue class the task is dispatched to.
func WithQueue(c QueueClass) Option {
	return func(t *Task) { t.queueClass = c }
}

// WithForceRun makes the scheduler execute the task even when its DAG
// branch is flagged to be skipped.
func WithForceRun(force bool) Option {
	return func(t *Task) { t.forceRun = force }
}

// WithPropagateSkip controls whether a skip flag on this task is copied
// onto its direct successors. Defaults to true.
func WithPropagateSkip(propagate bool) Option {
	return func(t *Task) { t.propagateSkip = propagate }
}

// New creates a task descriptor with the given name and logic. The name
// must be unique within its containing DAG.
func New(name string, fn Func, opts ...Option) *Task {
	t := &Task{
		name:          name,
		fn:            fn,
		queueClass:    QueueTask,
		propagateSkip: true,
		state:         StateInit,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task's name.
func (t *Task) Name() string { return t.name }

// Queue returns the queue class the task is dispatched to.
func (t *Task) Queue() QueueClass { return t.queueClass }

// ForceRun reports whether the task runs even when flagged to be skipped.
func (t *Task) ForceRun() bool { return t.forceRun }

// PropagateSkip reports whether the skip flag is copied to successors.
func (t *Task) PropagateSkip() bool { return t.propagateSkip }

// State returns the task's lifecycle state.
func (t *Task) State() State { return t.state }

// SetState sets the task's lifecycle state. The value is not validated;
// callers apply Transition to follow the legal lifecycle.
func (t *Task) SetState(s State) { t.state = s }

// IsSkipped reports whether the task is flagged to be skipped.
func (t *Task) IsSkipped() bool { return t.skip }

// SetSkipped flags the task to be skipped (or clears the flag).
func (t *Task) SetSkipped(skip bool) { t.skip = skip }

// IsWaiting reports whether the task is waiting in the DAG to be run.
func (t *Task) IsWaiting() bool { return t.state == StateWaiting }

// IsRunning reports whether the task is currently executing.
func (t *Task) IsRunning() bool { return t.state == StateRunning }

// IsCompleted reports whether the task completed successfully.
func (t *Task) IsCompleted() bool { return t.state == StateCompleted }

// IsStopped reports whether the task was stopped.
func (t *Task) IsStopped() bool { return t.state == StateStopped }

// IsAborted reports whether the task was aborted.
func (t *Task) IsAborted() bool { return t.state == StateAborted }

// WorkflowName returns the name of the enclosing workflow run, or the
// empty string before placement.
func (t *Task) WorkflowName() string { return t.workflowName }

// SetWorkflowName records the enclosing workflow name. Written once by
// the scheduler before the task runs.
func (t *Task) SetWorkflowName(name string) { t.workflowName = name }

// DagName returns the name of the enclosing DAG, or the empty string
// before placement.
func (t *Task) DagName() string { return t.dagName }

// SetDagName records the enclosing DAG name. Written once by the
// scheduler before the task runs.
func (t *Task) SetDagName(name string) { t.dagName = name }

// SetJobHandle attaches the handle returned by a queue dispatch. The
// descriptor owns the handle until it is forgotten.
func (t *Task) SetJobHandle(h JobHandle) { t.handle = h }

// HasJobHandle reports whether the task has been dispatched onto a job
// queue.
func (t *Task) HasJobHandle() bool { return t.handle != nil }

// JobPending reports whether the dispatched job has not yet started.
// False when the task was never dispatched.
func (t *Task) JobPending(ctx context.Context) bool {
	if t.handle == nil {
		return false
	}
	return t.handle.State(ctx) == StatusPending
}

// JobDone reports whether the dispatched job reached a terminal state,
// success or failure. False when the task was never dispatched.
func (t *Task) JobDone(ctx context.Context) bool {
	if t.handle == nil {
		return false
	}
	return t.handle.Ready(ctx)
}

// JobFailed reports whether the dispatched job terminated abnormally.
// False when the task was never dispatched.
func (t *Task) JobFailed(ctx context.Context) bool {
	if t.handle == nil {
		return false
	}
	return t.handle.Failed(ctx)
}

// JobState returns the queue backend's raw status label for the
// dispatched job, or NotQueued when the task was never dispatched.
func (t *Task) JobState(ctx context.Context) string {
	if t.handle == nil {
		return NotQueued
	}
	return t.handle.State(ctx)
}

// DiscardResult releases the dispatched job's result from the queue's
// result store. It is idempotent and a no-op when the task was never
// dispatched.
func (t *Task) DiscardResult(ctx context.Context) error {
	if t.handle == nil {
		return nil
	}
	return t.handle.Forget(ctx)
}
