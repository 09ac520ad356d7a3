package dag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/portrain/lightflow"
	"github.com/portrain/lightflow/datastore"
	"github.com/portrain/lightflow/id"
	"github.com/portrain/lightflow/task"
)

// Run executes the dag's tasks in topological order. Tasks with no
// ordering dependency between them run concurrently. Each task receives
// the merged payloads produced by its predecessors, or a fresh payload
// when it has none.
//
// A skipped task is bypassed without executing unless it is marked
// force-run; the skip flag spreads to successors of tasks that have
// skip propagation enabled. A predecessor's Action limit masks
// successors the same way, by marking them skipped.
//
// When the signal reports a requested workflow stop, every task still
// waiting is transitioned to aborted and Run returns
// lightflow.ErrWorkflowStopped.
func (d *Dag) Run(ctx context.Context, workflowName string, runner *task.Runner, store datastore.Store, sig Signal) error {
	levels, err := d.levels()
	if err != nil {
		return err
	}

	runID := id.NewRunID()
	d.logger.Info("dag run started",
		slog.String("workflow", workflowName),
		slog.String("dag", d.name),
		slog.String("run_id", runID.String()),
		slog.Int("tasks", len(d.tasks)))

	for _, name := range d.order {
		t := d.tasks[name]
		t.SetWorkflowName(workflowName)
		t.SetDagName(d.name)
		t.SetState(task.Transition(t.State(), task.EventSchedule))
	}

	actions := make(map[string]*task.Action, len(d.tasks))
	var mu sync.Mutex

	for _, level := range levels {
		if sig.StopRequested() {
			d.abortWaiting()
			d.logger.Info("dag run stopped",
				slog.String("workflow", workflowName),
				slog.String("dag", d.name),
				slog.String("run_id", runID.String()))
			return fmt.Errorf("dag %s: %w", d.name, lightflow.ErrWorkflowStopped)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, name := range level {
			t := d.tasks[name]

			d.inheritSkip(t, actions)
			if t.IsSkipped() && !t.ForceRun() {
				d.logger.Debug("task skipped",
					slog.String("workflow", workflowName),
					slog.String("dag", d.name),
					slog.String("task", t.Name()))
				continue
			}

			input := d.mergedInput(t, actions)
			t.SetState(task.Transition(t.State(), task.EventStart))

			g.Go(func() error {
				action, err := runner.Execute(gctx, t, input, store, sig)
				if err != nil {
					return err
				}
				mu.Lock()
				actions[t.Name()] = action
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			d.abortWaiting()
			return fmt.Errorf("dag %s: %w", d.name, err)
		}
	}

	if sig.StopRequested() {
		d.logger.Info("dag run stopped",
			slog.String("workflow", workflowName),
			slog.String("dag", d.name),
			slog.String("run_id", runID.String()))
		return fmt.Errorf("dag %s: %w", d.name, lightflow.ErrWorkflowStopped)
	}

	d.logger.Info("dag run completed",
		slog.String("workflow", workflowName),
		slog.String("dag", d.name),
		slog.String("run_id", runID.String()))
	return nil
}

// inheritSkip marks t skipped when a predecessor's Action restricts its
// successors and t is not listed, or when a skipped predecessor has
// skip propagation enabled.
func (d *Dag) inheritSkip(t *task.Task, actions map[string]*task.Action) {
	for _, pred := range d.preds[t.Name()] {
		p := d.tasks[pred]
		if p.IsSkipped() && p.PropagateSkip() {
			t.SetSkipped(true)
		}
		if a := actions[pred]; a != nil && !a.Allows(t.Name()) {
			t.SetSkipped(true)
		}
	}
}

// mergedInput builds the payload for t from its predecessors' Actions.
// With a single contributing predecessor the payload is passed through
// as a copy; with several they are merged in edge insertion order.
// Returns nil when no predecessor produced a payload, letting the
// runner start a fresh one.
func (d *Dag) mergedInput(t *task.Task, actions map[string]*task.Action) *task.MultiTaskData {
	var merged *task.MultiTaskData
	for _, pred := range d.preds[t.Name()] {
		a := actions[pred]
		if a == nil {
			continue
		}
		if merged == nil {
			merged = a.Data().Copy()
			continue
		}
		merged.Merge(a.Data())
	}
	return merged
}

// abortWaiting transitions every task that never started to aborted.
func (d *Dag) abortWaiting() {
	for _, name := range d.order {
		t := d.tasks[name]
		if t.IsWaiting() {
			t.SetState(task.Transition(t.State(), task.EventAbort))
		}
	}
}
