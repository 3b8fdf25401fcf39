package orchestrator

import (
	"time"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// EventType represents the type of coordinator event.
type EventType string

const (
	// EventPlanReady indicates a new task list replaced the previous one.
	EventPlanReady EventType = "plan_ready"
	// EventTaskUpdated indicates a task changed status, description or output.
	EventTaskUpdated EventType = "task_updated"
	// EventMessage indicates a chat log entry was appended.
	EventMessage EventType = "message"
	// EventNotice carries a transient user-visible notice.
	EventNotice EventType = "notice"
	// EventPauseChanged indicates development was paused or resumed.
	EventPauseChanged EventType = "pause_changed"
	// EventFileGenerated indicates a generated file name was recorded.
	EventFileGenerated EventType = "file_generated"
	// EventSessionDone indicates every task is complete.
	EventSessionDone EventType = "session_done"
)

// Event is emitted by the Coordinator for UIs.
// Subscribers should treat events as hints and read Snapshot for state.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// Status is the task status after the change, for task events.
	Status models.TaskStatus
	// Message is the chat log entry, for message events.
	Message models.ChatMessage
	// Notice is set for notice events.
	Notice models.Notice
	// Paused is the new pause state, for pause events.
	Paused bool
	// File is the generated file name, for file events.
	File string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
