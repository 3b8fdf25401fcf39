package orchestrator

import (
	"errors"
	"fmt"
)

// Error kinds reported by the Coordinator.
var (
	// ErrPlanning indicates the planner failed to produce a task list.
	ErrPlanning = errors.New("planning failed")
	// ErrGeneration indicates code generation failed for a task.
	ErrGeneration = errors.New("code generation failed")
	// ErrTest indicates testing failed for a task.
	ErrTest = errors.New("testing failed")
	// ErrResearch indicates the research call failed for a task.
	ErrResearch = errors.New("research failed")
	// ErrValidation indicates empty or invalid user input.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyArtifact indicates no task has code to download.
	ErrEmptyArtifact = errors.New("no code has been generated yet")
	// ErrNoCode indicates a test was requested for a task without code.
	ErrNoCode = errors.New("no code found to test for this task")
	// ErrTaskNotFound indicates the task ID is not in the current plan.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskBusy indicates the task (or session) has a remote call in flight.
	ErrTaskBusy = errors.New("task has a call in flight")
)

// TaskError describes a failed remote call.
// It unwraps to both its Kind and the underlying cause.
type TaskError struct {
	// Kind is one of the Err* sentinels.
	Kind error
	// TaskID is empty for session-level failures such as planning.
	TaskID string
	// Err is the cause reported by the remote call.
	Err error
}

func (e *TaskError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.TaskID, e.Kind, e.Err)
}

// Unwrap supports errors.Is and errors.As for both the kind and the cause.
func (e *TaskError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
