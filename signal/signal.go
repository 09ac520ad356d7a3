// Package signal carries engine control signals between running tasks
// and the scheduler. A task asks for the whole workflow to stop through
// an Emitter; the scheduler observes the request through a Receiver.
// The in-process Hub serves single-process engines; RedisHub spans the
// processes of a distributed run.
package signal

import (
	"context"
	"sync/atomic"
)

// Emitter sends engine control signals on behalf of running tasks.
type Emitter interface {
	// StopWorkflow requests that the whole workflow stop. The request
	// is cooperative: it takes effect when the scheduler observes it,
	// never by interrupting running task logic.
	StopWorkflow(ctx context.Context) error
}

// Receiver is the scheduler-side view of the signal channel.
type Receiver interface {
	// StopRequested reports whether a workflow stop has been requested.
	StopRequested() bool
}

// Hub is an in-process signal channel. The zero value is ready to use;
// it is safe for concurrent use.
type Hub struct {
	stopped atomic.Bool
}

// NewHub creates an in-process signal hub.
func NewHub() *Hub { return &Hub{} }

// StopWorkflow flags the workflow to stop. Implements Emitter.
func (h *Hub) StopWorkflow(_ context.Context) error {
	h.stopped.Store(true)
	return nil
}

// StopRequested reports whether a stop has been requested. Implements
// Receiver.
func (h *Hub) StopRequested() bool {
	return h.stopped.Load()
}
