package state

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// Recorder writes one process's sessions to a history store.
// A new session starts with every BeginSession call. It is safe for concurrent use.
type Recorder struct {
	store    HistoryStore
	provider string
	now      func() time.Time

	mu        sync.Mutex
	sessionID string
	status    SessionStatus
	seq       int
	positions map[string]int
}

// NewRecorder creates a Recorder that tags sessions with the LLM provider name.
func NewRecorder(store HistoryStore, provider string) *Recorder {
	return &Recorder{
		store:    store,
		provider: provider,
		now:      time.Now,
	}
}

// SessionID returns the ID of the current session, or "" before the first BeginSession.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// BeginSession starts a new session. An unfinished previous session is
// marked abandoned.
func (r *Recorder) BeginSession(idea string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.abandonLocked(); err != nil {
		return err
	}

	s := &Session{
		ID:        uuid.New().String(),
		Idea:      idea,
		Provider:  r.provider,
		PID:       os.Getpid(),
		StartedAt: r.now(),
		Status:    SessionPlanning,
	}
	if err := r.store.CreateSession(s); err != nil {
		return err
	}

	r.sessionID = s.ID
	r.status = s.Status
	r.seq = 0
	r.positions = make(map[string]int)
	return nil
}

// RecordTasks stores the current state of tasks. A task's position is the
// order in which it was first recorded.
func (r *Recorder) RecordTasks(tasks []models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessionID == "" {
		return nil
	}

	now := r.now()
	for _, t := range tasks {
		pos, ok := r.positions[t.ID]
		if !ok {
			pos = len(r.positions)
			r.positions[t.ID] = pos
		}
		rec := &TaskRecord{
			SessionID:   r.sessionID,
			ID:          t.ID,
			Position:    pos,
			Description: t.Description,
			Assignee:    string(t.Assignee),
			Status:      string(t.Status),
			Code:        t.Code,
			TestResults: t.TestResults,
			UpdatedAt:   now,
		}
		if err := r.store.UpsertTask(rec); err != nil {
			return fmt.Errorf("record task %s: %w", t.ID, err)
		}
	}
	return nil
}

// RecordMessage appends a chat log entry. Entries logged before the first
// session are not recorded.
func (r *Recorder) RecordMessage(msg models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessionID == "" {
		return nil
	}

	r.seq++
	return r.store.AppendMessage(&MessageRecord{
		SessionID: r.sessionID,
		Seq:       r.seq,
		Agent:     msg.Agent,
		Message:   msg.Message,
		CreatedAt: r.now(),
	})
}

// SetStatus updates the status of the current session.
func (r *Recorder) SetStatus(status SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessionID == "" {
		return nil
	}
	if err := r.store.UpdateSessionStatus(r.sessionID, status, r.now()); err != nil {
		return err
	}
	r.status = status
	return nil
}

// Close marks an unfinished current session abandoned. It does not close the store.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.abandonLocked()
}

func (r *Recorder) abandonLocked() error {
	if r.sessionID == "" || r.status.Finished() {
		return nil
	}
	if err := r.store.UpdateSessionStatus(r.sessionID, SessionAbandoned, r.now()); err != nil {
		return err
	}
	r.status = SessionAbandoned
	return nil
}
