package state

import (
	"os"
	"testing"
	"time"
)

func TestCheckForInterrupted_NoSessions(t *testing.T) {
	rm := NewRecoveryManager(setupTestDB(t))

	interrupted, err := rm.CheckForInterrupted()
	if err != nil {
		t.Fatalf("CheckForInterrupted failed: %v", err)
	}
	if len(interrupted) != 0 {
		t.Errorf("expected none, got %+v", interrupted)
	}
}

func TestCheckForInterrupted(t *testing.T) {
	db := setupTestDB(t)
	rm := NewRecoveryManager(db)

	sessions := []*Session{
		// Finished sessions are never interrupted.
		{ID: "done", Idea: "a", PID: 0, StartedAt: time.Now(), Status: SessionCompleted},
		{ID: "failed", Idea: "b", PID: 0, StartedAt: time.Now(), Status: SessionFailed},
		// The current process is alive.
		{ID: "mine", Idea: "c", PID: os.Getpid(), StartedAt: time.Now(), Status: SessionActive},
		// PID 0 never refers to a live recorder.
		{ID: "crashed", Idea: "d", PID: 0, StartedAt: time.Now(), Status: SessionActive},
		{ID: "crashed-planning", Idea: "e", PID: 0, StartedAt: time.Now(), Status: SessionPlanning},
	}
	for _, s := range sessions {
		if err := db.CreateSession(s); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}

	interrupted, err := rm.CheckForInterrupted()
	if err != nil {
		t.Fatalf("CheckForInterrupted failed: %v", err)
	}
	got := make(map[string]bool)
	for _, s := range interrupted {
		got[s.SessionID] = true
	}
	if len(got) != 2 || !got["crashed"] || !got["crashed-planning"] {
		t.Errorf("interrupted = %+v, want crashed and crashed-planning", interrupted)
	}

	n, err := rm.AbandonInterrupted()
	if err != nil {
		t.Fatalf("AbandonInterrupted failed: %v", err)
	}
	if n != 2 {
		t.Errorf("abandoned %d sessions, want 2", n)
	}
	s, _ := db.GetSession("crashed")
	if s.Status != SessionAbandoned || s.CompletedAt == nil {
		t.Errorf("crashed session = %+v, want abandoned with completion time", s)
	}
	if s, _ := db.GetSession("mine"); s.Status != SessionActive {
		t.Errorf("live session status = %s, want active", s.Status)
	}
}

func TestIsProcessAlive(t *testing.T) {
	if !isProcessAlive(os.Getpid()) {
		t.Error("current process should be alive")
	}
	if isProcessAlive(0) || isProcessAlive(-1) {
		t.Error("non-positive PIDs are never alive")
	}
}
