package lightflow

import "errors"

var (
	// Task execution errors.
	ErrInvalidTaskResult = errors.New("lightflow: task returned an invalid result")
	ErrWorkflowStopped   = errors.New("lightflow: workflow stop requested")

	// DAG construction errors.
	ErrDuplicateTask = errors.New("lightflow: task already added to dag")
	ErrTaskNotFound  = errors.New("lightflow: task not found in dag")
	ErrDagCycle      = errors.New("lightflow: dag contains a cycle")

	// Broker errors.
	ErrTaskNotRegistered = errors.New("lightflow: no task registered under that name")

	// Data store errors.
	ErrKeyNotFound = errors.New("lightflow: key not found in data store")
)
