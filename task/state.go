package task

// State represents the lifecycle state of a task within one workflow run.
type State string

const (
	// StateInit means the task has been constructed but not yet placed
	// into a DAG run. It is the only legal starting state.
	StateInit State = "init"
	// StateWaiting means the task is waiting in the DAG to be run.
	StateWaiting State = "waiting"
	// StateRunning means the task is currently executing.
	StateRunning State = "running"
	// StateCompleted means the task finished successfully.
	StateCompleted State = "completed"
	// StateStopped means the task requested early termination.
	StateStopped State = "stopped"
	// StateAborted means the task requested a whole-workflow abort, or
	// the workflow was aborted before the task could run.
	StateAborted State = "aborted"
)

// Event is a lifecycle event applied to a task's state.
type Event int

const (
	// EventSchedule places the task into the DAG (init → waiting).
	EventSchedule Event = iota
	// EventStart marks the beginning of execution (waiting → running).
	EventStart
	// EventComplete marks successful completion (running → completed).
	EventComplete
	// EventStop marks a deliberate early termination (running → stopped).
	EventStop
	// EventAbort marks a workflow abort (running or waiting → aborted).
	EventAbort
)

// Transition returns the state reached by applying ev. The current state
// is deliberately not validated: the scheduler exclusively owns the
// descriptor and is trusted to follow the lifecycle
// init → waiting → running → {completed, stopped, aborted}. Keeping the
// projection in one function makes that simplification explicit.
// An unknown event leaves the state unchanged.
func Transition(cur State, ev Event) State {
	switch ev {
	case EventSchedule:
		return StateWaiting
	case EventStart:
		return StateRunning
	case EventComplete:
		return StateCompleted
	case EventStop:
		return StateStopped
	case EventAbort:
		return StateAborted
	default:
		return cur
	}
}
