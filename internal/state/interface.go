package state

import (
	"io"
	"time"
)

// SessionStore handles session-related persistence operations.
type SessionStore interface {
	CreateSession(s *Session) error
	GetSession(id string) (*Session, error)
	FindSession(prefix string) (*Session, error)
	UpdateSessionStatus(id string, status SessionStatus, at time.Time) error
	ListSessions(status *SessionStatus, limit int) ([]Session, error)
	DeleteSession(id string) error
}

// TaskStore handles task-related persistence operations.
type TaskStore interface {
	UpsertTask(t *TaskRecord) error
	ListTasks(sessionID string) ([]TaskRecord, error)
}

// MessageStore handles chat log persistence operations.
type MessageStore interface {
	AppendMessage(m *MessageRecord) error
	ListMessages(sessionID string) ([]MessageRecord, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// HistoryStore is everything the recorder and the history command need.
type HistoryStore interface {
	io.Closer
	Migrator
	SessionStore
	TaskStore
	MessageStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ HistoryStore = (*DB)(nil)
	_ Migrator     = (*DB)(nil)
	_ SessionStore = (*DB)(nil)
	_ TaskStore    = (*DB)(nil)
	_ MessageStore = (*DB)(nil)
)
