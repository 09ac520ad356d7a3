package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/portrain/lightflow"
	"github.com/portrain/lightflow/datastore"
)

// Next is the terminal function that invokes the task logic itself.
type Next func(ctx context.Context) (Outcome, error)

// Middleware wraps task execution with cross-cutting logic. It receives
// the current context, the task being executed, and the next function to
// call. Middleware must call next to continue the chain unless
// short-circuiting on error.
type Middleware func(ctx context.Context, t *Task, next Next) (Outcome, error)

// Runner is the single entry point through which the scheduler executes
// a task. It invokes the task's logic, interprets the outcome, notifies
// the observer, and normalizes the result into exactly one Action.
//
// The Runner executes synchronously on the caller's goroutine: it
// performs no internal parallelism and never times out user logic —
// timeout policy belongs to the queue and scheduler layers.
type Runner struct {
	observer Observer
	mw       Middleware
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the structured logger for the runner.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithMiddleware sets the middleware the runner wraps around task logic.
// Compose multiple middleware with middleware.Chain.
func WithMiddleware(mw Middleware) RunnerOption {
	return func(r *Runner) { r.mw = mw }
}

// NewRunner creates a Runner notifying the given observer. A nil
// observer is replaced with NopObserver.
func NewRunner(obs Observer, opts ...RunnerOption) *Runner {
	if obs == nil {
		obs = NopObserver{}
	}
	r := &Runner{
		observer: obs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs the task's logic and produces exactly one Action.
//
// When data is nil (first task in a DAG branch) a fresh payload scoped
// to the task's name is constructed before the logic runs. The outcome
// is dispatched three ways: a completion keeps the returned Action as
// the candidate result; a stop with skipSuccessors yields an Action over
// the incoming payload under which no successor runs, and without
// skipSuccessors falls through to the default; an abort additionally
// asks the signal emitter to stop the whole workflow — the only path
// that reaches outside the task's own scope. An absent candidate is
// normalized to a default Action over the incoming payload with no
// successor restriction, and the task's name is appended to the result
// payload's history before returning.
//
// An Outcome not built by one of the constructors is a defect in the
// task implementation and fails with lightflow.ErrInvalidTaskResult. An
// error returned by task logic is equally fatal: it propagates to the
// scheduler and no Action is produced.
func (r *Runner) Execute(ctx context.Context, t *Task, data *MultiTaskData, store datastore.Store, sig Signal) (*Action, error) {
	if data == nil {
		data = NewMultiTaskData(t.name)
	}

	next := func(ctx context.Context) (Outcome, error) {
		return t.fn(ctx, data, store, sig)
	}

	var (
		out Outcome
		err error
	)
	if r.mw != nil {
		out, err = r.mw(ctx, t, next)
	} else {
		out, err = next(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.name, err)
	}

	var result *Action
	switch out.kind {
	case outcomeComplete:
		r.observer.OnSuccess(t)
		result = out.action

	case outcomeStop:
		r.observer.OnStop(t, out.skipSuccessors)
		if out.skipSuccessors {
			result = NewLimited(data)
		}

	case outcomeAbort:
		r.observer.OnAbort(t)
		if stopErr := sig.StopWorkflow(ctx); stopErr != nil {
			r.logger.Error("failed to signal workflow stop",
				slog.String("task", t.name),
				slog.String("workflow", t.workflowName),
				slog.String("error", stopErr.Error()),
			)
		}

	default:
		return nil, fmt.Errorf("task %s: %w", t.name, lightflow.ErrInvalidTaskResult)
	}

	if result == nil {
		result = NewAction(data)
	}
	result.data.AddTaskHistory(t.name)

	return result, nil
}
