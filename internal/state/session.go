package state

import (
	"database/sql"
	"fmt"
	"time"
)

// SessionStatus represents the status of a recorded session.
type SessionStatus string

const (
	SessionPlanning  SessionStatus = "planning"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	// SessionAbandoned marks a session that ended with work outstanding.
	SessionAbandoned SessionStatus = "abandoned"
)

// Finished reports whether the session can no longer change.
func (s SessionStatus) Finished() bool {
	switch s {
	case SessionCompleted, SessionFailed, SessionAbandoned:
		return true
	default:
		return false
	}
}

// Session is one recorded devteam run. PID is the process that recorded it.
type Session struct {
	ID          string        `json:"id"`
	Idea        string        `json:"idea"`
	Provider    string        `json:"provider"`
	PID         int           `json:"pid"`
	StartedAt   time.Time     `json:"started_at"`
	Status      SessionStatus `json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// TaskRecord is the last recorded state of a task in a session.
type TaskRecord struct {
	SessionID   string    `json:"session_id"`
	ID          string    `json:"id"`
	Position    int       `json:"position"`
	Description string    `json:"description"`
	Assignee    string    `json:"assignee"`
	Status      string    `json:"status"`
	Code        string    `json:"code,omitempty"`
	TestResults string    `json:"test_results,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessageRecord is one chat log entry of a session.
type MessageRecord struct {
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Agent     string    `json:"agent"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Session CRUD operations

// CreateSession creates a new session.
func (db *DB) CreateSession(s *Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (id, idea, provider, pid, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.Idea, s.Provider, s.PID, formatTime(s.StartedAt), string(s.Status))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. It returns nil if none exists.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, idea, provider, pid, started_at, status, completed_at
		FROM sessions WHERE id = ?
	`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// FindSession retrieves a session by ID or unique ID prefix.
// It returns nil if none matches and an error if the prefix is ambiguous.
func (db *DB) FindSession(prefix string) (*Session, error) {
	if s, err := db.GetSession(prefix); err != nil || s != nil {
		return s, err
	}

	rows, err := db.Query(`
		SELECT id, idea, provider, pid, started_at, status, completed_at
		FROM sessions WHERE id LIKE ? || '%' LIMIT 2
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	defer rows.Close()

	var found []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		found = append(found, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("session prefix %q is ambiguous", prefix)
	}
}

// UpdateSessionStatus sets a session's status. Finished statuses also set completed_at.
func (db *DB) UpdateSessionStatus(id string, status SessionStatus, at time.Time) error {
	var completedAt any
	if status.Finished() {
		completedAt = formatTime(at)
	}
	_, err := db.Exec(`
		UPDATE sessions SET status = ?, completed_at = ? WHERE id = ?
	`, string(status), completedAt, id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// DeleteSession deletes a session and its tasks and messages.
func (db *DB) DeleteSession(id string) error {
	_, err := db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListSessions lists sessions newest first, optionally filtered by status.
// A limit of zero or less returns every session.
func (db *DB) ListSessions(status *SessionStatus, limit int) ([]Session, error) {
	query := `SELECT id, idea, provider, pid, started_at, status, completed_at FROM sessions`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var s Session
	var startedAt string
	var completedAt sql.NullString
	if err := row.Scan(&s.ID, &s.Idea, &s.Provider, &s.PID, &startedAt, &s.Status, &completedAt); err != nil {
		return nil, err
	}
	s.StartedAt, _ = parseTime(startedAt)
	s.CompletedAt = parseNullableTime(completedAt)
	return &s, nil
}

// Task operations

// UpsertTask inserts or replaces the recorded state of a task.
func (db *DB) UpsertTask(t *TaskRecord) error {
	_, err := db.Exec(`
		INSERT INTO tasks (session_id, id, position, description, assignee, status, code, test_results, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, id) DO UPDATE SET
			description = excluded.description,
			assignee = excluded.assignee,
			status = excluded.status,
			code = excluded.code,
			test_results = excluded.test_results,
			updated_at = excluded.updated_at
	`, t.SessionID, t.ID, t.Position, t.Description, t.Assignee, t.Status, t.Code, t.TestResults, formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

// ListTasks returns a session's tasks in plan order.
func (db *DB) ListTasks(sessionID string) ([]TaskRecord, error) {
	rows, err := db.Query(`
		SELECT session_id, id, position, description, assignee, status, code, test_results, updated_at
		FROM tasks WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []TaskRecord
	for rows.Next() {
		var t TaskRecord
		var updatedAt string
		if err := rows.Scan(&t.SessionID, &t.ID, &t.Position, &t.Description, &t.Assignee,
			&t.Status, &t.Code, &t.TestResults, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.UpdatedAt, _ = parseTime(updatedAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Message operations

// AppendMessage stores a chat log entry.
func (db *DB) AppendMessage(m *MessageRecord) error {
	_, err := db.Exec(`
		INSERT INTO messages (session_id, seq, agent, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.SessionID, m.Seq, m.Agent, m.Message, formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages returns a session's chat log in order.
func (db *DB) ListMessages(sessionID string) ([]MessageRecord, error) {
	rows, err := db.Query(`
		SELECT session_id, seq, agent, message, created_at
		FROM messages WHERE session_id = ? ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []MessageRecord
	for rows.Next() {
		var m MessageRecord
		var createdAt string
		if err := rows.Scan(&m.SessionID, &m.Seq, &m.Agent, &m.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt, _ = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
