package queue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/portrain/lightflow/datastore"
	"github.com/portrain/lightflow/id"
	"github.com/portrain/lightflow/task"
)

// Ensure MemoryBroker implements Broker at compile time.
var _ Broker = (*MemoryBroker)(nil)

// MemoryBroker executes dispatched tasks on in-process goroutines and
// tracks job status in a mutex-guarded result table. Intended for unit
// testing and single-process engines.
type MemoryBroker struct {
	runner *task.Runner
	store  datastore.Store
	sig    task.Signal
	logger *slog.Logger

	mu     sync.RWMutex
	status map[string]string
	wg     sync.WaitGroup
}

// MemoryOption configures a MemoryBroker.
type MemoryOption func(*MemoryBroker)

// WithMemoryLogger sets the broker's logger.
func WithMemoryLogger(logger *slog.Logger) MemoryOption {
	return func(b *MemoryBroker) { b.logger = logger }
}

// NewMemoryBroker creates a broker executing tasks through the given
// runner, with the store and signal emitter handed to task logic.
func NewMemoryBroker(runner *task.Runner, store datastore.Store, sig task.Signal, opts ...MemoryOption) *MemoryBroker {
	b := &MemoryBroker{
		runner: runner,
		store:  store,
		sig:    sig,
		logger: slog.Default(),
		status: make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dispatch runs the task on a new goroutine and returns a handle
// reporting its status. The descriptor's incoming payload is executed
// as-is; the execution context is detached from the dispatch context,
// matching the queue contract that a dispatched job outlives its
// dispatcher.
func (b *MemoryBroker) Dispatch(_ context.Context, t *task.Task, data *task.MultiTaskData) (task.JobHandle, error) {
	jobID := id.NewJobID().String()

	b.mu.Lock()
	b.status[jobID] = task.StatusPending
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		b.setStatus(jobID, task.StatusStarted)

		_, err := b.runner.Execute(context.Background(), t, data, b.store, b.sig)
		if err != nil {
			b.logger.Error("dispatched task failed",
				slog.String("job_id", jobID),
				slog.String("task", t.Name()),
				slog.String("error", err.Error()),
			)
			b.setStatus(jobID, task.StatusFailure)
			return
		}

		b.setStatus(jobID, task.StatusSuccess)
	}()

	return &memoryHandle{broker: b, jobID: jobID}, nil
}

// Wait blocks until all dispatched tasks have finished.
func (b *MemoryBroker) Wait() {
	b.wg.Wait()
}

func (b *MemoryBroker) setStatus(jobID, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// A forgotten job stays forgotten.
	if _, ok := b.status[jobID]; ok {
		b.status[jobID] = status
	}
}

func (b *MemoryBroker) getStatus(jobID string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	status, ok := b.status[jobID]
	if !ok {
		// Unknown and forgotten jobs read as pending, as in Celery.
		return task.StatusPending
	}
	return status
}

// memoryHandle reads job status out of the broker's result table.
type memoryHandle struct {
	broker *MemoryBroker
	jobID  string
}

func (h *memoryHandle) State(_ context.Context) string {
	return h.broker.getStatus(h.jobID)
}

func (h *memoryHandle) Ready(ctx context.Context) bool {
	s := h.State(ctx)
	return s == task.StatusSuccess || s == task.StatusFailure
}

func (h *memoryHandle) Failed(ctx context.Context) bool {
	return h.State(ctx) == task.StatusFailure
}

func (h *memoryHandle) Forget(_ context.Context) error {
	h.broker.mu.Lock()
	defer h.broker.mu.Unlock()
	delete(h.broker.status, h.jobID)
	return nil
}
