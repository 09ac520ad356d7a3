package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/portrain/lightflow"
	"github.com/portrain/lightflow/datastore"
	"github.com/portrain/lightflow/id"
	"github.com/portrain/lightflow/task"
)

// Redis key naming conventions for queue data.
// All keys are prefixed with "lightflow:" to avoid collisions.

const keyPrefix = "lightflow:"

// jobKey returns the key for a job hash: lightflow:job:{id}
func jobKey(jobID string) string { return keyPrefix + "job:" + jobID }

// classKey returns the List key for a queue class: lightflow:queue:{class}
func classKey(class task.QueueClass) string {
	return keyPrefix + "queue:" + string(class)
}

// Ensure RedisBroker implements Broker at compile time.
var _ Broker = (*RedisBroker)(nil)

// RedisBroker dispatches tasks through Redis: each job is a hash
// holding the task name, queue class, payload, and status label, and
// each queue class is a list of pending job IDs. A worker pool started
// with Start consumes the lists and executes registered task logic;
// handles poll the job hash, and Forget deletes it.
type RedisBroker struct {
	client   *goredis.Client
	registry *Registry
	runner   *task.Runner
	store    datastore.Store
	sig      task.Signal
	manager  *Manager
	logger   *slog.Logger

	concurrency  int
	pollInterval time.Duration
	classes      []task.QueueClass

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// RedisOption configures a RedisBroker.
type RedisOption func(*RedisBroker)

// WithConcurrency sets the number of worker goroutines.
func WithConcurrency(n int) RedisOption {
	return func(b *RedisBroker) { b.concurrency = n }
}

// WithPollInterval sets the blocking-pop timeout workers use while
// polling for jobs.
func WithPollInterval(d time.Duration) RedisOption {
	return func(b *RedisBroker) { b.pollInterval = d }
}

// WithClasses sets the queue classes the worker pool consumes.
func WithClasses(classes ...task.QueueClass) RedisOption {
	return func(b *RedisBroker) { b.classes = classes }
}

// WithQueueManager sets the manager enforcing per-class rate limits and
// concurrency caps.
func WithQueueManager(m *Manager) RedisOption {
	return func(b *RedisBroker) { b.manager = m }
}

// WithRedisLogger sets the broker's logger.
func WithRedisLogger(logger *slog.Logger) RedisOption {
	return func(b *RedisBroker) { b.logger = logger }
}

// NewRedisBroker creates a Redis-backed broker. The caller owns the
// client lifecycle; the broker never closes it.
func NewRedisBroker(
	client *goredis.Client,
	registry *Registry,
	runner *task.Runner,
	store datastore.Store,
	sig task.Signal,
	opts ...RedisOption,
) *RedisBroker {
	b := &RedisBroker{
		client:       client,
		registry:     registry,
		runner:       runner,
		store:        store,
		sig:          sig,
		logger:       slog.Default(),
		concurrency:  10,
		pollInterval: time.Second,
		classes:      []task.QueueClass{task.QueueTask, task.QueueDag, task.QueueWorkflow},
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dispatch stores the job hash and pushes its ID onto the class list.
func (b *RedisBroker) Dispatch(ctx context.Context, t *task.Task, data *task.MultiTaskData) (task.JobHandle, error) {
	jobID := id.NewJobID().String()

	var payload []byte
	if data != nil {
		var err error
		payload, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("queue: marshal payload for task %q: %w", t.Name(), err)
		}
	}

	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, jobKey(jobID),
		"name", t.Name(),
		"class", string(t.Queue()),
		"state", task.StatusPending,
		"payload", string(payload),
	)
	pipe.LPush(ctx, classKey(t.Queue()), jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("queue: dispatch task %q: %w", t.Name(), err)
	}

	return &redisHandle{client: b.client, key: jobKey(jobID)}, nil
}

// Start launches the worker goroutines. It returns immediately.
func (b *RedisBroker) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}
	b.running = true

	b.logger.Info("queue workers starting",
		slog.Int("concurrency", b.concurrency),
		slog.Any("classes", b.classes),
	)

	for range b.concurrency {
		b.wg.Add(1)
		go b.dequeueLoop()
	}

	return nil
}

// Stop signals all workers to stop and waits for them to finish.
// If the context expires first, Stop returns its error without waiting
// further; workers still drain in the background.
func (b *RedisBroker) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.mu.Unlock()

	close(b.stopCh)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("queue workers stopped gracefully")
		return nil
	case <-ctx.Done():
		b.logger.Warn("queue worker shutdown timed out")
		return ctx.Err()
	}
}

// dequeueLoop is run by each worker goroutine.
func (b *RedisBroker) dequeueLoop() {
	defer b.wg.Done()

	keys := make([]string, len(b.classes))
	for i, class := range b.classes {
		keys[i] = classKey(class)
	}

	for {
		select {
		case <-b.stopCh:
			return
		default:
		}

		res, err := b.client.BRPop(context.Background(), b.pollInterval, keys...).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			b.logger.Error("dequeue error", slog.String("error", err.Error()))
			b.sleep()
			continue
		}

		// BRPop returns [list key, job ID].
		b.execute(res[0], res[1])
	}
}

// execute claims and runs a single dequeued job.
func (b *RedisBroker) execute(listKey, jobID string) {
	ctx := context.Background()
	key := jobKey(jobID)

	fields, err := b.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		b.logger.Error("failed to load job", slog.String("job_id", jobID))
		return
	}

	class := task.QueueClass(fields["class"])
	if b.manager != nil && !b.manager.Acquire(class) {
		// Rate limited — return the job to the queue with a small delay.
		if pushErr := b.client.LPush(ctx, listKey, jobID).Err(); pushErr != nil {
			b.logger.Error("failed to re-enqueue rate-limited job",
				slog.String("job_id", jobID),
				slog.String("error", pushErr.Error()),
			)
		}
		b.sleep()
		return
	}
	defer func() {
		if b.manager != nil {
			b.manager.Release(class)
		}
	}()

	name := fields["name"]
	fn, ok := b.registry.Get(name)
	if !ok {
		b.fail(ctx, key, name, lightflow.ErrTaskNotRegistered)
		return
	}

	var data *task.MultiTaskData
	if payload := fields["payload"]; payload != "" {
		data = &task.MultiTaskData{}
		if err := json.Unmarshal([]byte(payload), data); err != nil {
			b.fail(ctx, key, name, fmt.Errorf("unmarshal payload: %w", err))
			return
		}
	}

	if err := b.client.HSet(ctx, key, "state", task.StatusStarted).Err(); err != nil {
		b.logger.Error("failed to mark job started",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}

	// The worker side executes a transient descriptor: the dispatching
	// scheduler keeps the authoritative one.
	t := task.New(name, fn, task.WithQueue(class))

	action, err := b.runner.Execute(ctx, t, data, b.store, b.sig)
	if err != nil {
		b.fail(ctx, key, name, err)
		return
	}

	result, err := json.Marshal(action.Data())
	if err != nil {
		b.fail(ctx, key, name, fmt.Errorf("marshal result: %w", err))
		return
	}

	if err := b.client.HSet(ctx, key,
		"state", task.StatusSuccess,
		"result", string(result),
	).Err(); err != nil {
		b.logger.Error("failed to mark job succeeded",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
}

// fail records a terminal failure on the job hash.
func (b *RedisBroker) fail(ctx context.Context, key, name string, taskErr error) {
	b.logger.Error("dispatched task failed",
		slog.String("task", name),
		slog.String("error", taskErr.Error()),
	)

	if err := b.client.HSet(ctx, key,
		"state", task.StatusFailure,
		"error", taskErr.Error(),
	).Err(); err != nil {
		b.logger.Error("failed to mark job failed",
			slog.String("task", name),
			slog.String("error", err.Error()),
		)
	}
}

func (b *RedisBroker) sleep() {
	select {
	case <-time.After(b.pollInterval):
	case <-b.stopCh:
	}
}

// redisHandle polls a job hash for status. Transport errors and
// missing hashes (forgotten or unknown jobs) read as pending, matching
// Celery's behaviour for unknown result IDs.
type redisHandle struct {
	client *goredis.Client
	key    string
}

func (h *redisHandle) State(ctx context.Context) string {
	state, err := h.client.HGet(ctx, h.key, "state").Result()
	if err != nil {
		return task.StatusPending
	}
	return state
}

func (h *redisHandle) Ready(ctx context.Context) bool {
	s := h.State(ctx)
	return s == task.StatusSuccess || s == task.StatusFailure
}

func (h *redisHandle) Failed(ctx context.Context) bool {
	return h.State(ctx) == task.StatusFailure
}

func (h *redisHandle) Forget(ctx context.Context) error {
	if err := h.client.Del(ctx, h.key).Err(); err != nil {
		return fmt.Errorf("queue: forget job: %w", err)
	}
	return nil
}
