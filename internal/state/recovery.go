package state

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// InterruptedSession is an unfinished session whose recording process is gone.
type InterruptedSession struct {
	SessionID string
	Idea      string
	StartedAt time.Time
	PID       int
	Status    SessionStatus
}

// RecoveryManager finds sessions left unfinished by a crashed or killed run.
// Sessions are never resumed; they are only marked abandoned.
type RecoveryManager struct {
	db *DB
}

// NewRecoveryManager creates a new RecoveryManager with the given database.
func NewRecoveryManager(db *DB) *RecoveryManager {
	return &RecoveryManager{db: db}
}

// CheckForInterrupted lists unfinished sessions whose process is no longer running.
func (rm *RecoveryManager) CheckForInterrupted() ([]InterruptedSession, error) {
	sessions, err := rm.db.ListSessions(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var interrupted []InterruptedSession
	for _, s := range sessions {
		if s.Status.Finished() {
			continue
		}
		if s.PID == os.Getpid() || isProcessAlive(s.PID) {
			continue
		}
		interrupted = append(interrupted, InterruptedSession{
			SessionID: s.ID,
			Idea:      s.Idea,
			StartedAt: s.StartedAt,
			PID:       s.PID,
			Status:    s.Status,
		})
	}
	return interrupted, nil
}

// AbandonInterrupted marks every interrupted session abandoned and returns how many were marked.
func (rm *RecoveryManager) AbandonInterrupted() (int, error) {
	interrupted, err := rm.CheckForInterrupted()
	if err != nil {
		return 0, err
	}
	now := time.Now()
	for _, s := range interrupted {
		if err := rm.db.UpdateSessionStatus(s.SessionID, SessionAbandoned, now); err != nil {
			return 0, fmt.Errorf("abandon session %s: %w", s.SessionID, err)
		}
	}
	return len(interrupted), nil
}

// isProcessAlive checks if a process with the given PID is still running.
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Send signal 0 to check if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
