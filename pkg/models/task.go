package models

import "strings"

// TaskStatus represents the current stage of a task in the development flow.
type TaskStatus string

const (
	// TaskStatusReview indicates the task is waiting for human approval.
	TaskStatusReview TaskStatus = "review"
	// TaskStatusPlanning indicates the task is approved and ready for code generation.
	TaskStatusPlanning TaskStatus = "planning"
	// TaskStatusCoding indicates code generation is in flight.
	TaskStatusCoding TaskStatus = "coding"
	// TaskStatusTesting indicates code exists and is ready for, or undergoing, testing.
	TaskStatusTesting TaskStatus = "testing"
	// TaskStatusComplete indicates the task was generated and tested.
	TaskStatusComplete TaskStatus = "complete"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusReview, TaskStatusPlanning, TaskStatusCoding, TaskStatusTesting, TaskStatusComplete:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are expected.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusComplete
}

// Task is one unit of planned work.
type Task struct {
	// ID is the identifier assigned when the plan was received ("task-0", "task-1", ...).
	ID string `json:"id"`
	// Description is the work to be done. Guidance may overwrite it.
	Description string `json:"description"`
	// Assignee is the role the planner assigned to this task.
	Assignee Assignee `json:"assignee"`
	// Status is the current stage of the task.
	Status TaskStatus `json:"status"`
	// Code is the generated source, if any.
	Code string `json:"code,omitempty"`
	// TestResults holds the tester's report, if any.
	TestResults string `json:"test_results,omitempty"`
}

// HasCode reports whether code has been generated for the task.
func (t Task) HasCode() bool {
	return t.Code != ""
}

// ComponentName derives the component name passed to the tester: the first
// word of the description, or "GeneratedComponent" when there is none.
func (t Task) ComponentName() string {
	fields := strings.Fields(t.Description)
	if len(fields) == 0 {
		return "GeneratedComponent"
	}
	return fields[0]
}

// AllComplete reports whether tasks is non-empty and every task is complete.
func AllComplete(tasks []Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if t.Status != TaskStatusComplete {
			return false
		}
	}
	return true
}

// CloneTasks returns a copy of tasks that shares no backing array with the input.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
