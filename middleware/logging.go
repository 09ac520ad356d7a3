package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/portrain/lightflow/task"
)

// Logging returns middleware that logs task start and completion.
func Logging(logger *slog.Logger) task.Middleware {
	return func(ctx context.Context, t *task.Task, next task.Next) (task.Outcome, error) {
		logger.Info("task started",
			slog.String("task", t.Name()),
			slog.String("workflow", t.WorkflowName()),
			slog.String("dag", t.DagName()),
			slog.String("queue", string(t.Queue())),
		)

		start := time.Now()
		out, err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("task failed",
				slog.String("task", t.Name()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("task finished",
				slog.String("task", t.Name()),
				slog.String("outcome", out.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return out, err
	}
}
