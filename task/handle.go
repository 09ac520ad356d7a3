package task

import "context"

// Status labels reported by queue backends for dispatched jobs. The
// labels follow the Celery naming so schedulers written against either
// backend can string-match them.
const (
	StatusPending = "PENDING"
	StatusStarted = "STARTED"
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// NotQueued is the status label a descriptor reports before its task has
// been dispatched onto a job queue.
const NotQueued = "NOT_QUEUED"

// JobHandle is an opaque reference to an asynchronously dispatched unit
// of work. It decouples the task descriptor from any concrete queue
// client: swapping queue backends must not change descriptor or runner
// code.
//
// Status reads never fail: queue-layer failures are visible only through
// Failed and the status label, never raised to the poller.
// Implementations absorb transport errors into a conservative
// StatusPending. Handles may be polled concurrently by multiple readers.
type JobHandle interface {
	// State returns the backend's raw status label for the job.
	State(ctx context.Context) string

	// Ready reports whether the job reached a terminal state, whether it
	// succeeded or failed.
	Ready(ctx context.Context) bool

	// Failed reports whether the job terminated abnormally.
	Failed(ctx context.Context) bool

	// Forget releases the job's result from the backend's result store.
	// It is idempotent; forgetting an already-forgotten job is not an
	// error.
	Forget(ctx context.Context) error
}
