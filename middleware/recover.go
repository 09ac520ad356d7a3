package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/portrain/lightflow/task"
)

// Recover returns middleware that recovers from panics in the task
// logic. Panics are converted to errors and logged with a stack trace;
// the runner then treats them like any other fatal task error.
func Recover(logger *slog.Logger) task.Middleware {
	return func(ctx context.Context, t *task.Task, next task.Next) (out task.Outcome, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("task logic panicked",
					slog.String("task", t.Name()),
					slog.String("workflow", t.WorkflowName()),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic in task %s: %v", t.Name(), r)
			}
		}()
		return next(ctx)
	}
}
