package queue

import (
	"sync"

	"github.com/portrain/lightflow/task"
)

// Registry maps task names to their logic so a worker process can
// execute jobs dispatched by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]task.Func
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]task.Func),
	}
}

// Register binds fn to the given task name, replacing any previous
// binding.
func (r *Registry) Register(name string, fn task.Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Get returns the logic registered under the given task name.
// Returns false if nothing is registered.
func (r *Registry) Get(name string) (task.Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns all registered task names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}
