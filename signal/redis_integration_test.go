//go:build integration

package signal_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/portrain/lightflow/signal"
)

func setupRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	ctx := context.Background()

	container, err := redismodule.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}
	opts, err := goredis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newHub(t *testing.T, client *goredis.Client, workflow string) *signal.RedisHub {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := signal.NewRedisHub(client, workflow, signal.WithLogger(logger))
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("start hub: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestRedisHub_StopCrossesProcesses(t *testing.T) {
	client := setupRedisClient(t)

	emitter := newHub(t, client, "wf-1")
	receiver := newHub(t, client, "wf-1")

	if receiver.StopRequested() {
		t.Error("fresh hub should report no stop")
	}
	if err := emitter.StopWorkflow(context.Background()); err != nil {
		t.Fatalf("StopWorkflow: %v", err)
	}
	// The emitter observes its own stop immediately.
	if !emitter.StopRequested() {
		t.Error("emitter did not observe its own stop")
	}
	waitFor(t, receiver.StopRequested)
}

func TestRedisHub_ScopedToWorkflow(t *testing.T) {
	client := setupRedisClient(t)

	one := newHub(t, client, "wf-1")
	other := newHub(t, client, "wf-2")

	if err := one.StopWorkflow(context.Background()); err != nil {
		t.Fatalf("StopWorkflow: %v", err)
	}
	waitFor(t, one.StopRequested)

	// Give the unrelated hub a moment to (wrongly) pick up the signal.
	time.Sleep(200 * time.Millisecond)
	if other.StopRequested() {
		t.Error("stop leaked across workflow channels")
	}
}
