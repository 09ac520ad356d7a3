package task

// Action is the normalized result of a task run: the data payload handed
// to successor tasks, plus an optional restriction on which successors
// may run next. An Action is constructed fresh on every run and never
// mutated afterwards; only the contained payload's task history grows.
type Action struct {
	data  *MultiTaskData
	limit []string
}

// NewAction wraps data with no successor restriction: all structurally
// eligible successors run. The payload must be non-nil.
func NewAction(data *MultiTaskData) *Action {
	if data == nil {
		panic("task: NewAction called with nil data")
	}
	return &Action{data: data}
}

// NewLimited wraps data allowing only the named successors to run.
// Calling it with no successors yields an Action under which no
// successor runs at all.
func NewLimited(data *MultiTaskData, successors ...string) *Action {
	if data == nil {
		panic("task: NewLimited called with nil data")
	}
	limit := successors
	if limit == nil {
		limit = []string{}
	}
	return &Action{data: data, limit: limit}
}

// Data returns the payload handed to successor tasks.
func (a *Action) Data() *MultiTaskData { return a.data }

// Limit returns the successor restriction, or nil when all successors
// are eligible. A non-nil empty slice means no successor runs.
func (a *Action) Limit() []string {
	if a.limit == nil {
		return nil
	}
	return append([]string(nil), a.limit...)
}

// Restricted reports whether this Action restricts which successors run.
func (a *Action) Restricted() bool { return a.limit != nil }

// Allows reports whether the named successor is eligible to run under
// this Action.
func (a *Action) Allows(name string) bool {
	if a.limit == nil {
		return true
	}
	for _, n := range a.limit {
		if n == name {
			return true
		}
	}
	return false
}
