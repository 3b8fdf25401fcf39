package orchestrator

import (
	"github.com/ShayCichocki/devteam/internal/state"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// Journal records session history. It is write-only: the Coordinator never
// reads from it and a session is never resumed from it.
// Implementations must be safe to call while the Coordinator holds its lock,
// so they should not call back into the Coordinator.
type Journal interface {
	// BeginSession starts a new history record for a project idea.
	BeginSession(idea string) error
	// RecordTasks stores the current state of the given tasks.
	RecordTasks(tasks []models.Task) error
	// RecordMessage appends a chat log entry to the current session.
	RecordMessage(msg models.ChatMessage) error
	// SetStatus updates the status of the current session.
	SetStatus(status state.SessionStatus) error
}

type nopJournal struct{}

func (nopJournal) BeginSession(string) error             { return nil }
func (nopJournal) RecordTasks([]models.Task) error       { return nil }
func (nopJournal) RecordMessage(models.ChatMessage) error { return nil }
func (nopJournal) SetStatus(state.SessionStatus) error   { return nil }

// Compile-time verification that the SQLite recorder satisfies Journal.
var _ Journal = (*state.Recorder)(nil)
