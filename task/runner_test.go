package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/portrain/lightflow"
	"github.com/portrain/lightflow/datastore"
	"github.com/portrain/lightflow/datastore/memory"
	"github.com/portrain/lightflow/task"
)

func completeWith(key string, value any) task.Func {
	return func(_ context.Context, data *task.MultiTaskData, _ datastore.Store, _ task.Signal) (task.Outcome, error) {
		data.Set(key, value)
		return task.Complete(task.NewAction(data)), nil
	}
}

func TestRunnerCompleteReturnsAction(t *testing.T) {
	obs := &trackObserver{}
	r := task.NewRunner(obs, task.WithLogger(testLogger()))
	tk := task.New("extract", completeWith("rows", 42))

	action, err := r.Execute(context.Background(), tk, nil, memory.New(), &fakeSignal{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action.Restricted() {
		t.Error("completion action should not restrict successors")
	}
	if v, ok := action.Data().Get("rows"); !ok || v != 42 {
		t.Errorf("rows = %v, %v; want 42, true", v, ok)
	}
	if len(obs.successes) != 1 || obs.successes[0] != "extract" {
		t.Errorf("successes = %v; want [extract]", obs.successes)
	}
}

func TestRunnerNilDataScopedToTaskName(t *testing.T) {
	var seen *task.MultiTaskData
	fn := func(_ context.Context, data *task.MultiTaskData, _ datastore.Store, _ task.Signal) (task.Outcome, error) {
		seen = data
		return task.Complete(nil), nil
	}
	r := task.NewRunner(nil, task.WithLogger(testLogger()))
	tk := task.New("first", fn)

	action, err := r.Execute(context.Background(), tk, nil, memory.New(), &fakeSignal{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if seen == nil {
		t.Fatal("task logic did not receive a payload")
	}
	if _, ok := seen.Dataset("first"); !ok {
		t.Error("fresh payload should carry a dataset named after the task")
	}
	if action.Data() != seen {
		t.Error("default action should hand on the incoming payload")
	}
}

func TestRunnerAppendsHistoryOnce(t *testing.T) {
	r := task.NewRunner(nil, task.WithLogger(testLogger()))
	tk := task.New("transform", completeWith("ok", true))

	data := task.NewMultiTaskData("extract")
	data.AddTaskHistory("extract")

	action, err := r.Execute(context.Background(), tk, data, memory.New(), &fakeSignal{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := action.Data().History()
	want := []string{"extract", "transform"}
	if len(got) != len(want) {
		t.Fatalf("history = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("history = %v; want %v", got, want)
		}
	}
}

func TestRunnerStopSkippingSuccessors(t *testing.T) {
	fn := func(context.Context, *task.MultiTaskData, datastore.Store, task.Signal) (task.Outcome, error) {
		return task.Stop(true), nil
	}
	obs := &trackObserver{}
	r := task.NewRunner(obs, task.WithLogger(testLogger()))
	tk := task.New("gate", fn)

	data := task.NewMultiTaskData("extract")
	action, err := r.Execute(context.Background(), tk, data, memory.New(), &fakeSignal{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !action.Restricted() {
		t.Fatal("stop with skip should restrict successors")
	}
	if got := action.Limit(); len(got) != 0 {
		t.Errorf("limit = %v; want empty", got)
	}
	if action.Allows("anything") {
		t.Error("no successor should be allowed")
	}
	if action.Data() != data {
		t.Error("stop action should carry the incoming payload")
	}
	if len(obs.stops) != 1 || !obs.skips[0] {
		t.Errorf("stops = %v skips = %v; want one stop with skip", obs.stops, obs.skips)
	}
}

func TestRunnerStopWithoutSkipYieldsDefault(t *testing.T) {
	fn := func(context.Context, *task.MultiTaskData, datastore.Store, task.Signal) (task.Outcome, error) {
		return task.Stop(false), nil
	}
	obs := &trackObserver{}
	r := task.NewRunner(obs, task.WithLogger(testLogger()))
	tk := task.New("gate", fn)

	data := task.NewMultiTaskData("extract")
	action, err := r.Execute(context.Background(), tk, data, memory.New(), &fakeSignal{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action.Restricted() {
		t.Error("stop without skip should not restrict successors")
	}
	if action.Data() != data {
		t.Error("default action should carry the incoming payload")
	}
	if len(obs.skips) != 1 || obs.skips[0] {
		t.Errorf("skips = %v; want [false]", obs.skips)
	}
}

func TestRunnerAbortSignalsWorkflowStopOnce(t *testing.T) {
	fn := func(context.Context, *task.MultiTaskData, datastore.Store, task.Signal) (task.Outcome, error) {
		return task.Abort(), nil
	}
	obs := &trackObserver{}
	sig := &fakeSignal{}
	r := task.NewRunner(obs, task.WithLogger(testLogger()))
	tk := task.New("guard", fn)

	action, err := r.Execute(context.Background(), tk, nil, memory.New(), sig)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action == nil || action.Restricted() {
		t.Error("abort should still yield a default action")
	}
	if got := sig.stopCount(); got != 1 {
		t.Errorf("stop requests = %d; want 1", got)
	}
	if len(obs.aborts) != 1 {
		t.Errorf("aborts = %v; want one", obs.aborts)
	}
}

func TestRunnerAbortSignalFailureIsNotFatal(t *testing.T) {
	fn := func(context.Context, *task.MultiTaskData, datastore.Store, task.Signal) (task.Outcome, error) {
		return task.Abort(), nil
	}
	sig := &fakeSignal{err: errors.New("broker down")}
	r := task.NewRunner(nil, task.WithLogger(testLogger()))
	tk := task.New("guard", fn)

	if _, err := r.Execute(context.Background(), tk, nil, memory.New(), sig); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestRunnerZeroOutcomeIsInvalid(t *testing.T) {
	fn := func(context.Context, *task.MultiTaskData, datastore.Store, task.Signal) (task.Outcome, error) {
		return task.Outcome{}, nil
	}
	r := task.NewRunner(nil, task.WithLogger(testLogger()))
	tk := task.New("broken", fn)

	data := task.NewMultiTaskData("extract")
	_, err := r.Execute(context.Background(), tk, data, memory.New(), &fakeSignal{})
	if !errors.Is(err, lightflow.ErrInvalidTaskResult) {
		t.Fatalf("err = %v; want ErrInvalidTaskResult", err)
	}
	if got := data.History(); len(got) != 0 {
		t.Errorf("history = %v; invalid outcome must not touch the payload", got)
	}
}

func TestRunnerPropagatesTaskError(t *testing.T) {
	boom := errors.New("boom")
	fn := func(context.Context, *task.MultiTaskData, datastore.Store, task.Signal) (task.Outcome, error) {
		return task.Outcome{}, boom
	}
	obs := &trackObserver{}
	r := task.NewRunner(obs, task.WithLogger(testLogger()))
	tk := task.New("flaky", fn)

	action, err := r.Execute(context.Background(), tk, nil, memory.New(), &fakeSignal{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v; want wrapped boom", err)
	}
	if action != nil {
		t.Error("failed run must not produce an action")
	}
	if len(obs.successes)+len(obs.stops)+len(obs.aborts) != 0 {
		t.Error("failed run must not notify the observer")
	}
}

func TestRunnerMiddlewareWrapsLogic(t *testing.T) {
	var order []string
	mw := func(ctx context.Context, _ *task.Task, next task.Next) (task.Outcome, error) {
		order = append(order, "before")
		out, err := next(ctx)
		order = append(order, "after")
		return out, err
	}
	fn := func(context.Context, *task.MultiTaskData, datastore.Store, task.Signal) (task.Outcome, error) {
		order = append(order, "logic")
		return task.Complete(nil), nil
	}
	r := task.NewRunner(nil, task.WithLogger(testLogger()), task.WithMiddleware(mw))
	tk := task.New("wrapped", fn)

	if _, err := r.Execute(context.Background(), tk, nil, memory.New(), &fakeSignal{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"before", "logic", "after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v; want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v; want %v", order, want)
		}
	}
}

func TestStateObserverDrivesLifecycle(t *testing.T) {
	fn := func(context.Context, *task.MultiTaskData, datastore.Store, task.Signal) (task.Outcome, error) {
		return task.Complete(nil), nil
	}
	r := task.NewRunner(task.StateObserver{}, task.WithLogger(testLogger()))
	tk := task.New("etl", fn)
	tk.SetState(task.Transition(tk.State(), task.EventSchedule))
	tk.SetState(task.Transition(tk.State(), task.EventStart))

	if _, err := r.Execute(context.Background(), tk, nil, memory.New(), &fakeSignal{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !tk.IsCompleted() {
		t.Errorf("state = %s; want completed", tk.State())
	}
}
