package signal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"
)

// stopMessage is the payload published on a workflow's signal channel
// to request a stop.
const stopMessage = "stop_workflow"

// channelKey returns the pub/sub channel for a workflow's signals:
// lightflow:signal:{workflow}
func channelKey(workflow string) string {
	return "lightflow:signal:" + workflow
}

// RedisHub is a Redis pub/sub signal channel scoped to one workflow
// run, for engines whose tasks execute in separate processes. Call
// Start before relying on StopRequested and Close when the run ends.
type RedisHub struct {
	client   *goredis.Client
	workflow string
	logger   *slog.Logger

	stopped atomic.Bool
	sub     *goredis.PubSub
	wg      sync.WaitGroup
}

// RedisOption configures a RedisHub.
type RedisOption func(*RedisHub)

// WithLogger sets the logger for the hub.
func WithLogger(logger *slog.Logger) RedisOption {
	return func(h *RedisHub) { h.logger = logger }
}

// NewRedisHub creates a signal hub for the named workflow. The caller
// owns the client lifecycle; the hub never closes it.
func NewRedisHub(client *goredis.Client, workflow string, opts ...RedisOption) *RedisHub {
	h := &RedisHub{
		client:   client,
		workflow: workflow,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start subscribes to the workflow's signal channel and begins
// observing stop requests in the background.
func (h *RedisHub) Start(ctx context.Context) error {
	sub := h.client.Subscribe(ctx, channelKey(h.workflow))

	// Force the subscription to be established before returning so a
	// signal emitted right after Start is not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("signal: subscribe %q: %w", h.workflow, err)
	}

	h.sub = sub
	h.wg.Add(1)
	go h.listen()

	return nil
}

// listen consumes signal messages until the subscription closes.
func (h *RedisHub) listen() {
	defer h.wg.Done()

	for msg := range h.sub.Channel() {
		if msg.Payload != stopMessage {
			h.logger.Warn("unknown signal message",
				slog.String("workflow", h.workflow),
				slog.String("payload", msg.Payload),
			)
			continue
		}
		h.stopped.Store(true)
	}
}

// StopWorkflow publishes a stop request for the workflow. Implements
// Emitter. The local flag is set immediately so a single-process caller
// observes the stop without a pub/sub round trip.
func (h *RedisHub) StopWorkflow(ctx context.Context) error {
	h.stopped.Store(true)

	if err := h.client.Publish(ctx, channelKey(h.workflow), stopMessage).Err(); err != nil {
		return fmt.Errorf("signal: publish stop for %q: %w", h.workflow, err)
	}
	return nil
}

// StopRequested reports whether a stop has been requested. Implements
// Receiver.
func (h *RedisHub) StopRequested() bool {
	return h.stopped.Load()
}

// Close tears down the subscription and waits for the listener to exit.
func (h *RedisHub) Close() error {
	if h.sub == nil {
		return nil
	}
	err := h.sub.Close()
	h.wg.Wait()
	h.sub = nil
	return err
}
