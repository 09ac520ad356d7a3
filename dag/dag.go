// Package dag provides a minimal directed-acyclic-graph walker over
// task descriptors. It executes tasks in topological order, honors the
// descriptors' skip and force-run policy, applies the successor
// restrictions carried by task Actions, and stops the walk when a
// workflow stop is requested through the signal channel.
//
// Deciding which basis tasks become runnable and in what order is all
// the scheduling this package does: retry policy and distributed
// fairness belong to the queue layer.
package dag

import (
	"fmt"
	"log/slog"

	"github.com/portrain/lightflow"
	"github.com/portrain/lightflow/task"
)

// Signal combines the emitter handed to task logic with the
// scheduler-side stop check. signal.Hub and signal.RedisHub satisfy it.
type Signal interface {
	task.Signal
	StopRequested() bool
}

// Dag is a named collection of task descriptors plus ordering edges.
// It owns its descriptors for the whole workflow run. A Dag is built
// once and not safe for concurrent mutation.
type Dag struct {
	name   string
	tasks  map[string]*task.Task
	order  []string
	succs  map[string][]string
	preds  map[string][]string
	logger *slog.Logger
}

// Option configures a Dag.
type Option func(*Dag)

// WithLogger sets the structured logger for the dag.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dag) { d.logger = l }
}

// New creates an empty Dag with the given name.
func New(name string, opts ...Option) *Dag {
	d := &Dag{
		name:   name,
		tasks:  make(map[string]*task.Task),
		succs:  make(map[string][]string),
		preds:  make(map[string][]string),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the dag's name.
func (d *Dag) Name() string { return d.name }

// Add places a task descriptor into the dag.
// Returns lightflow.ErrDuplicateTask if the name is already taken.
func (d *Dag) Add(t *task.Task) error {
	if _, exists := d.tasks[t.Name()]; exists {
		return fmt.Errorf("dag %s: add %q: %w", d.name, t.Name(), lightflow.ErrDuplicateTask)
	}
	d.tasks[t.Name()] = t
	d.order = append(d.order, t.Name())
	return nil
}

// Connect adds an ordering edge making the task named to a successor of
// the task named from. Both tasks must already be added.
func (d *Dag) Connect(from, to string) error {
	for _, name := range []string{from, to} {
		if _, ok := d.tasks[name]; !ok {
			return fmt.Errorf("dag %s: connect %q: %w", d.name, name, lightflow.ErrTaskNotFound)
		}
	}
	d.succs[from] = append(d.succs[from], to)
	d.preds[to] = append(d.preds[to], from)
	return nil
}

// Task returns the descriptor with the given name.
func (d *Dag) Task(name string) (*task.Task, bool) {
	t, ok := d.tasks[name]
	return t, ok
}

// Tasks returns all descriptors in insertion order.
func (d *Dag) Tasks() []*task.Task {
	tasks := make([]*task.Task, 0, len(d.order))
	for _, name := range d.order {
		tasks = append(tasks, d.tasks[name])
	}
	return tasks
}

// levels computes a topological layering: each level contains tasks
// whose predecessors all sit in earlier levels, in insertion order for
// determinism. Returns lightflow.ErrDagCycle if the edges contain a
// cycle.
func (d *Dag) levels() ([][]string, error) {
	indeg := make(map[string]int, len(d.tasks))
	for _, name := range d.order {
		indeg[name] = len(d.preds[name])
	}

	var levels [][]string
	processed := 0
	current := make([]string, 0, len(d.order))
	for _, name := range d.order {
		if indeg[name] == 0 {
			current = append(current, name)
		}
	}

	for len(current) > 0 {
		levels = append(levels, current)
		processed += len(current)

		nextSet := make(map[string]struct{})
		for _, name := range current {
			for _, succ := range d.succs[name] {
				indeg[succ]--
				if indeg[succ] == 0 {
					nextSet[succ] = struct{}{}
				}
			}
		}

		next := make([]string, 0, len(nextSet))
		for _, name := range d.order {
			if _, ok := nextSet[name]; ok {
				next = append(next, name)
			}
		}
		current = next
	}

	if processed != len(d.tasks) {
		return nil, fmt.Errorf("dag %s: %w", d.name, lightflow.ErrDagCycle)
	}
	return levels, nil
}
