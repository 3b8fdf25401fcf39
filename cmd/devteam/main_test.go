package main

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/ShayCichocki/devteam/internal/config"
	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/pkg/models"
)

type reviewRecorder struct {
	calls []string
	fail  string
}

func (r *reviewRecorder) record(call, id string) error {
	r.calls = append(r.calls, call)
	if id == r.fail {
		return errors.New("boom")
	}
	return nil
}

func (r *reviewRecorder) Approve(id string) error {
	return r.record("approve "+id, id)
}

func (r *reviewRecorder) Reject(id, feedback string) error {
	return r.record(fmt.Sprintf("reject %s: %s", id, feedback), id)
}

func (r *reviewRecorder) ProvideGuidance(id, description string) error {
	return r.record(fmt.Sprintf("guide %s: %s", id, description), id)
}

func TestApplyReview(t *testing.T) {
	decisions := []reviewDecision{
		{TaskID: "task-0", Approve: true},
		{TaskID: "task-1", Feedback: "too vague"},
		{TaskID: "task-2", Guidance: "Build a login form with validation"},
		{TaskID: "task-3"},
	}

	r := &reviewRecorder{}
	approved, err := applyReview(r, decisions)
	if err != nil {
		t.Fatalf("applyReview() error = %v", err)
	}
	if approved != 2 {
		t.Errorf("approved = %d, want 2", approved)
	}

	want := []string{
		"approve task-0",
		"reject task-1: too vague",
		"guide task-2: Build a login form with validation",
		"reject task-3: Not approved during review.",
	}
	if diff := cmp.Diff(want, r.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyReview_StopsOnError(t *testing.T) {
	r := &reviewRecorder{fail: "task-1"}
	_, err := applyReview(r, []reviewDecision{
		{TaskID: "task-0", Approve: true},
		{TaskID: "task-1", Approve: true},
		{TaskID: "task-2", Approve: true},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(r.calls) != 2 {
		t.Errorf("calls = %v, want two calls before stopping", r.calls)
	}
}

func TestEventPrinter(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	events := []orchestrator.Event{
		{Type: orchestrator.EventMessage, Message: models.ChatMessage{Agent: models.AgentDeveloper, Message: "Generating code"}},
		{Type: orchestrator.EventNotice, Notice: models.Notice{Title: "Task Approved", Description: "ready"}},
		{Type: orchestrator.EventPauseChanged, Paused: true},
		{Type: orchestrator.EventMessage, Message: models.ChatMessage{Agent: "Someone", Message: "hi"}},
	}

	tests := []struct {
		name    string
		notices bool
		want    string
	}{
		{
			name:    "with notices",
			notices: true,
			want:    "[Developer] Generating code\n! Task Approved: ready\n[Someone] hi\n",
		},
		{
			name: "without notices",
			want: "[Developer] Generating code\n[Someone] hi\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ch := make(chan orchestrator.Event, len(events))
			for _, ev := range events {
				ch <- ev
			}
			close(ch)

			newEventPrinter(&buf, tt.notices).Consume(ch)
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIncompleteError(t *testing.T) {
	var err error = fmt.Errorf("run: %w", &incompleteError{remaining: 2, total: 5})

	var incomplete *incompleteError
	if !errors.As(err, &incomplete) {
		t.Fatal("errors.As failed")
	}
	if got := incomplete.Error(); got != "2 of 5 tasks not completed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestBackendOptions(t *testing.T) {
	c := config.Default()
	c.Provider = config.ProviderGemini
	c.Anthropic.RequestTimeout = 45 * time.Second
	c.Gemini.Model = "gemini-2.5-pro"

	opts := backendOptions(c, "key-123")
	if opts.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", opts.Provider)
	}
	if opts.Gemini.APIKey != "key-123" || opts.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Gemini = %+v", opts.Gemini)
	}
	if opts.Gemini.RequestTimeout != 45*time.Second {
		t.Errorf("Gemini.RequestTimeout = %v, want 45s", opts.Gemini.RequestTimeout)
	}
	if string(opts.Anthropic.Model) != c.Anthropic.Model {
		t.Errorf("Anthropic.Model = %q, want %q", opts.Anthropic.Model, c.Anthropic.Model)
	}
}

func TestHistoryPath(t *testing.T) {
	c := config.Default()
	c.History.Path = filepath.Join(t.TempDir(), "h.db")
	if got := historyPath(c); got != c.History.Path {
		t.Errorf("historyPath() = %q, want %q", got, c.History.Path)
	}

	t.Setenv("XDG_DATA_HOME", "/data")
	c.History.Path = ""
	if got, want := historyPath(c), filepath.Join("/data", "devteam", "history.db"); got != want {
		t.Errorf("historyPath() = %q, want %q", got, want)
	}
}

func TestOpenHistory(t *testing.T) {
	c := config.Default()
	c.History.Path = filepath.Join(t.TempDir(), "history.db")

	c.History.Enabled = false
	db, err := openHistory(c)
	if err != nil || db != nil {
		t.Fatalf("openHistory(disabled) = %v, %v; want nil, nil", db, err)
	}

	c.History.Enabled = true
	db, err = openHistory(c)
	if err != nil {
		t.Fatalf("openHistory() error = %v", err)
	}
	defer db.Close()

	sessions, err := db.ListSessions(nil, 0)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions, want 0", len(sessions))
	}
}

func TestTruncateLine(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"first line\nsecond", 20, "first line"},
		{"a very long idea about things", 10, "a very ..."},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncateLine(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateLine(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestShortDigest(t *testing.T) {
	if got := shortDigest("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("shortDigest() = %q", got)
	}
	if got := shortDigest("abc"); got != "abc" {
		t.Errorf("shortDigest() = %q", got)
	}
}
