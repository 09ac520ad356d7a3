// Package middleware provides composable middleware for task execution.
// Middleware wraps task logic synchronously and can modify execution
// (recover from panics, log, add tracing). It deliberately offers no
// timeout wrapper: the execution contract forbids this layer from
// timing out user logic.
package middleware

import (
	"context"

	"github.com/portrain/lightflow/task"
)

// Chain composes multiple middleware into a single task.Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, tracing) executes as:
//
//	logging → recover → tracing → task logic
func Chain(mws ...task.Middleware) task.Middleware {
	return func(ctx context.Context, t *task.Task, next task.Next) (task.Outcome, error) {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) (task.Outcome, error) {
				return mw(ctx, t, prev)
			}
		}
		return h(ctx)
	}
}
