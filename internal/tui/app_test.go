package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// fakeController records the calls the App makes.
type fakeController struct {
	mu       sync.Mutex
	state    orchestrator.State
	calls    []string
	artifact *orchestrator.Artifact
	err      error
	paused   bool
}

func (f *fakeController) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) SubmitPlan(_ context.Context, idea string) error {
	return f.record("plan %s", idea)
}
func (f *fakeController) Approve(id string) error { return f.record("approve %s", id) }
func (f *fakeController) ApproveAll() int {
	_ = f.record("approve-all")
	return len(f.state.Tasks)
}
func (f *fakeController) Reject(id, feedback string) error {
	return f.record("reject %s %s", id, feedback)
}
func (f *fakeController) ProvideGuidance(id, description string) error {
	return f.record("guide %s %s", id, description)
}
func (f *fakeController) StartDevelopment() { _ = f.record("start") }
func (f *fakeController) TogglePause() bool {
	_ = f.record("pause")
	f.paused = !f.paused
	return f.paused
}
func (f *fakeController) GenerateForTask(_ context.Context, id string) error {
	return f.record("generate %s", id)
}
func (f *fakeController) TestForTask(_ context.Context, id string) error {
	return f.record("test %s", id)
}
func (f *fakeController) ResearchForTask(_ context.Context, id string) error {
	return f.record("research %s", id)
}
func (f *fakeController) DownloadArtifact() (*orchestrator.Artifact, error) {
	_ = f.record("download")
	if f.artifact == nil {
		return nil, orchestrator.ErrEmptyArtifact
	}
	return f.artifact, nil
}
func (f *fakeController) Snapshot() orchestrator.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func newFake() *fakeController {
	return &fakeController{state: orchestrator.State{
		Tasks: []models.Task{
			{ID: "task-0", Description: "Build login form", Assignee: models.AssigneeDeveloper, Status: models.TaskStatusReview},
			{ID: "task-1", Description: "Write docs", Assignee: models.AssigneeDocCreator, Status: models.TaskStatusReview},
		},
	}}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and then feeds back any message its command produces,
// the way the bubbletea runtime would.
func press(t *testing.T, app *App, s string) tea.Cmd {
	t.Helper()
	_, cmd := app.Update(key(s))
	return cmd
}

// run executes cmd and delivers its message to the app.
func run(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(app, c)
		}
		return
	}
	app.Update(msg)
}

func newTestApp(t *testing.T, ctrl *fakeController) *App {
	t.Helper()
	app := NewApp(context.Background(), ctrl, Options{OutputPath: t.TempDir()})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

func TestApp_SubmitIdea(t *testing.T) {
	ctrl := newFake()
	app := newTestApp(t, ctrl)

	app.input.input.SetValue("  a todo app  ")
	cmd := press(t, app, "enter")
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	// Submitting yields the planning command; running it calls SubmitPlan.
	submit := cmd()
	_, planCmd := app.Update(submit)
	run(app, planCmd)

	if diff := cmp.Diff([]string{"plan a todo app"}, ctrl.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(app.footer.Status(), "Planning finished") {
		t.Errorf("status = %q", app.footer.Status())
	}
}

func TestApp_TaskKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"approve selected", []string{"a"}, []string{"approve task-0"}},
		{"approve second", []string{"down", "a"}, []string{"approve task-1"}},
		{"approve all", []string{"A"}, []string{"approve-all"}},
		{"start", []string{"s"}, []string{"start"}},
		{"pause", []string{"p"}, []string{"pause"}},
		{"generate", []string{"c"}, []string{"generate task-0"}},
		{"test", []string{"t"}, []string{"test task-0"}},
		{"research", []string{"down", "f"}, []string{"research task-1"}},
		{"download", []string{"d"}, []string{"download"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newFake()
			app := newTestApp(t, ctrl)
			press(t, app, "tab")

			for _, k := range tt.keys {
				run(app, press(t, app, k))
			}

			if diff := cmp.Diff(tt.want, ctrl.Calls()); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApp_KeysGoToInputWhenFocused(t *testing.T) {
	ctrl := newFake()
	app := newTestApp(t, ctrl)

	for _, k := range []string{"a", "s", "q"} {
		press(t, app, k)
	}

	if len(ctrl.Calls()) != 0 {
		t.Errorf("expected no coordinator calls, got %v", ctrl.Calls())
	}
	if app.input.Value() != "asq" {
		t.Errorf("input = %q, want typed text", app.input.Value())
	}
	if app.quitting {
		t.Error("q in the input should not quit")
	}
}

func TestApp_RejectPrompt(t *testing.T) {
	ctrl := newFake()
	app := newTestApp(t, ctrl)
	press(t, app, "tab")

	press(t, app, "r")
	if app.mode != modeFeedback || !app.inputFocused {
		t.Fatalf("expected feedback prompt with focus, mode=%v focused=%v", app.mode, app.inputFocused)
	}

	app.input.input.SetValue("too vague")
	run(app, press(t, app, "enter"))

	if diff := cmp.Diff([]string{"reject task-0 too vague"}, ctrl.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if app.mode != modeIdea || app.inputFocused {
		t.Errorf("prompt should end with focus on tasks, mode=%v focused=%v", app.mode, app.inputFocused)
	}
}

func TestApp_GuidancePrefillsDescription(t *testing.T) {
	ctrl := newFake()
	app := newTestApp(t, ctrl)
	press(t, app, "tab")

	press(t, app, "g")
	if app.input.Value() != "Build login form" {
		t.Errorf("guidance prefill = %q", app.input.Value())
	}

	app.input.input.SetValue("Build OAuth login")
	run(app, press(t, app, "enter"))

	if diff := cmp.Diff([]string{"guide task-0 Build OAuth login"}, ctrl.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_EscCancelsPrompt(t *testing.T) {
	ctrl := newFake()
	app := newTestApp(t, ctrl)
	press(t, app, "tab")

	press(t, app, "r")
	press(t, app, "esc")

	if app.mode != modeIdea {
		t.Errorf("mode = %v, want idea", app.mode)
	}
	if len(ctrl.Calls()) != 0 {
		t.Errorf("expected no calls, got %v", ctrl.Calls())
	}
}

func TestApp_Download(t *testing.T) {
	ctrl := newFake()
	ctrl.artifact = &orchestrator.Artifact{Name: "out.jsx", Content: "// Task: x", Digest: "abcdef0123456789"}
	app := newTestApp(t, ctrl)
	press(t, app, "tab")

	press(t, app, "d")

	data, err := os.ReadFile(filepath.Join(app.opts.OutputPath, "out.jsx"))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != "// Task: x" {
		t.Errorf("artifact = %q", data)
	}
	if !strings.Contains(app.footer.Status(), "Saved") {
		t.Errorf("status = %q", app.footer.Status())
	}
}

func TestApp_ReportErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"busy task is shown", fmt.Errorf("%w: task-0", orchestrator.ErrTaskBusy), true},
		{"task error already noticed", &orchestrator.TaskError{Kind: orchestrator.ErrGeneration, TaskID: "task-0", Err: errors.New("boom")}, false},
		{"validation already noticed", fmt.Errorf("%w: feedback is empty", orchestrator.ErrValidation), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, newFake())
			app.report(tt.err)
			if got := app.footer.statusErr; got != tt.wantErr {
				t.Errorf("statusErr = %v, want %v (status %q)", got, tt.wantErr, app.footer.Status())
			}
		})
	}
}

func TestApp_EventsUpdateFooterAndState(t *testing.T) {
	ctrl := newFake()
	app := newTestApp(t, ctrl)

	notice := models.Notice{Title: "Task Approved", Description: "ready"}
	app.Update(CoordinatorEventMsg{Event: orchestrator.Event{Type: orchestrator.EventNotice, Notice: notice}})

	got, ok := app.footer.Notice()
	if !ok || got != notice {
		t.Errorf("notice = %+v, %v", got, ok)
	}

	ctrl.mu.Lock()
	ctrl.state.ChatMessages = []models.ChatMessage{{Agent: models.AgentSystem, Message: "hello"}}
	ctrl.state.DevelopmentStarted = true
	ctrl.mu.Unlock()
	app.Update(refreshTickMsg{})

	if len(app.chat.messages) != 1 {
		t.Errorf("chat has %d messages, want 1", len(app.chat.messages))
	}
	if app.header.status != "DEVELOPING" {
		t.Errorf("header status = %q", app.header.status)
	}
	if !strings.Contains(app.View(), "hello") {
		t.Error("view does not show the chat message")
	}
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, newFake())

	cmd := press(t, app, "ctrl+c")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !app.quitting {
		t.Error("quitting should be true after ctrl+c")
	}
	if app.View() != "Goodbye!\n" {
		t.Errorf("View() = %q", app.View())
	}
}
