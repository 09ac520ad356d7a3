package task

// outcomeKind tags the variant carried by an Outcome. The zero value is
// deliberately not a valid variant: an Outcome that was not built by one
// of the constructors is a programming error in task logic and surfaces
// as ErrInvalidTaskResult.
type outcomeKind int

const (
	outcomeInvalid outcomeKind = iota
	outcomeComplete
	outcomeStop
	outcomeAbort
)

// Outcome is the tagged result returned by task logic. It expresses one
// of three intents: completed with data, stop this task (optionally
// skipping all successors), or abort the whole workflow. Construct it
// with Complete, Stop, or Abort.
type Outcome struct {
	kind           outcomeKind
	action         *Action
	skipSuccessors bool
}

// Complete reports successful completion. The action carries the data
// for successor tasks; a nil action means "no result", in which case the
// runner hands the incoming payload on unchanged with no successor
// restriction.
func Complete(action *Action) Outcome {
	return Outcome{kind: outcomeComplete, action: action}
}

// Stop requests early termination of this task. When skipSuccessors is
// true no successor runs; otherwise successors proceed as if the task
// had completed without a result.
func Stop(skipSuccessors bool) Outcome {
	return Outcome{kind: outcomeStop, skipSuccessors: skipSuccessors}
}

// Abort requests termination of the whole workflow.
func Abort() Outcome {
	return Outcome{kind: outcomeAbort}
}

// String returns the variant name, for logging.
func (o Outcome) String() string {
	switch o.kind {
	case outcomeComplete:
		return "complete"
	case outcomeStop:
		return "stop"
	case outcomeAbort:
		return "abort"
	default:
		return "invalid"
	}
}
