package task_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/portrain/lightflow/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// trackObserver records which lifecycle notifications fired and for
// which task.
type trackObserver struct {
	mu        sync.Mutex
	successes []string
	stops     []string
	skips     []bool
	aborts    []string
}

func (o *trackObserver) OnSuccess(t *task.Task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.successes = append(o.successes, t.Name())
}

func (o *trackObserver) OnStop(t *task.Task, skipSuccessors bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stops = append(o.stops, t.Name())
	o.skips = append(o.skips, skipSuccessors)
}

func (o *trackObserver) OnAbort(t *task.Task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.aborts = append(o.aborts, t.Name())
}

// fakeSignal counts stop requests and optionally fails them.
type fakeSignal struct {
	mu    sync.Mutex
	stops int
	err   error
}

func (s *fakeSignal) StopWorkflow(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return s.err
}

func (s *fakeSignal) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

// fakeHandle reports a fixed status label.
type fakeHandle struct {
	status    string
	forgotten bool
}

func (h *fakeHandle) State(context.Context) string { return h.status }

func (h *fakeHandle) Ready(ctx context.Context) bool {
	s := h.State(ctx)
	return s == task.StatusSuccess || s == task.StatusFailure
}

func (h *fakeHandle) Failed(ctx context.Context) bool {
	return h.State(ctx) == task.StatusFailure
}

func (h *fakeHandle) Forget(context.Context) error {
	h.forgotten = true
	return nil
}
