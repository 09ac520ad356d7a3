package task

// Observer receives lifecycle notifications from the Runner as it
// interprets a task's outcome. It exists purely for observability: the
// scheduler typically uses it to drive descriptor state, but the Runner
// works identically with a NopObserver. Observers must not retain the
// descriptor beyond the callback.
type Observer interface {
	// OnSuccess is called when task logic completed normally.
	OnSuccess(t *Task)

	// OnStop is called when task logic requested early termination.
	OnStop(t *Task, skipSuccessors bool)

	// OnAbort is called when task logic requested a workflow abort.
	OnAbort(t *Task)
}

// NopObserver is an Observer that ignores all notifications.
type NopObserver struct{}

func (NopObserver) OnSuccess(*Task) {}

func (NopObserver) OnStop(*Task, bool) {}

func (NopObserver) OnAbort(*Task) {}

// StateObserver drives the descriptor state machine from runner
// notifications, applying the matching lifecycle event to the task's
// current state.
type StateObserver struct{}

func (StateObserver) OnSuccess(t *Task) {
	t.SetState(Transition(t.State(), EventComplete))
}

func (StateObserver) OnStop(t *Task, _ bool) {
	t.SetState(Transition(t.State(), EventStop))
}

func (StateObserver) OnAbort(t *Task) {
	t.SetState(Transition(t.State(), EventAbort))
}
