package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
)

// DefaultRefreshRate is how often the snapshot is re-read without events.
const DefaultRefreshRate = 100 * time.Millisecond

// Options configures the App.
type Options struct {
	// OutputPath is where downloads are written. A directory receives the
	// artifact's default name. Empty writes to the working directory.
	OutputPath string
	// RefreshRate overrides DefaultRefreshRate.
	RefreshRate time.Duration
	// Usage, if set, feeds token usage into the stats bar.
	Usage TokenTracker
}

// inputMode is what the input field is collecting.
type inputMode int

const (
	modeIdea inputMode = iota
	modeFeedback
	modeGuidance
)

// App is the bubbletea model for the interactive session.
type App struct {
	ctx  context.Context
	ctrl Controller
	opts Options

	header *Header
	input  *InputField
	tasks  *TasksPanel
	chat   *ChatPanel
	stats  *StatsBar
	footer *Footer

	state orchestrator.State

	inputFocused bool
	mode         inputMode
	promptTaskID string

	width    int
	height   int
	quitting bool
}

// NewApp creates an App driving ctrl. Blocking coordinator calls run with ctx.
func NewApp(ctx context.Context, ctrl Controller, opts Options) *App {
	if opts.RefreshRate <= 0 {
		opts.RefreshRate = DefaultRefreshRate
	}
	a := &App{
		ctx:          ctx,
		ctrl:         ctrl,
		opts:         opts,
		header:       NewHeader(),
		input:        NewInputField(),
		tasks:        NewTasksPanel(),
		chat:         NewChatPanel(),
		stats:        NewStatsBar(time.Now()),
		footer:       NewFooter(),
		inputFocused: true,
	}
	a.refresh()
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.Focus(), a.tick())
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.opts.RefreshRate, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateSizes()
		return a, nil

	case refreshTickMsg:
		a.refresh()
		return a, a.tick()

	case CoordinatorEventMsg:
		a.handleEvent(msg.Event)
		a.refresh()
		return a, nil

	case actionDoneMsg:
		a.handleActionDone(msg)
		a.refresh()
		return a, nil

	case InputSubmittedMsg:
		cmd := a.handleSubmit(msg.Text)
		a.refresh()
		return a, cmd

	case tea.KeyMsg:
		cmd := a.handleKey(msg)
		a.refresh()
		return a, cmd
	}

	if a.inputFocused {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleEvent(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventNotice:
		a.footer.SetNotice(ev.Notice)
	case orchestrator.EventFileGenerated:
		a.footer.SetStatus("Generated "+ev.File, false)
	case orchestrator.EventSessionDone:
		a.footer.SetStatus("All tasks completed. Press d to download the code.", false)
	}
}

func (a *App) handleActionDone(msg actionDoneMsg) {
	if msg.err == nil {
		a.footer.SetStatus(msg.action+" finished", false)
		return
	}
	a.footer.SetStatus(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
}

// handleSubmit routes submitted input according to the current mode.
func (a *App) handleSubmit(text string) tea.Cmd {
	mode, id := a.mode, a.promptTaskID
	a.endPrompt()

	switch mode {
	case modeFeedback:
		a.report(a.ctrl.Reject(id, text))
		return nil
	case modeGuidance:
		a.report(a.ctrl.ProvideGuidance(id, text))
		return nil
	default:
		a.footer.SetStatus("Planning...", false)
		return a.async("Planning", func(ctx context.Context) error {
			return a.ctrl.SubmitPlan(ctx, text)
		})
	}
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		a.quitting = true
		return tea.Quit
	case "esc":
		if a.mode != modeIdea {
			a.endPrompt()
			a.footer.SetStatus("Cancelled", false)
			return nil
		}
		if a.inputFocused {
			return a.focusTasks()
		}
		return nil
	case "tab":
		if a.mode != modeIdea {
			return nil
		}
		if a.inputFocused {
			return a.focusTasks()
		}
		return a.focusInput()
	}

	if a.inputFocused {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "q":
		a.quitting = true
		return tea.Quit
	case "up", "k":
		a.tasks.MoveUp()
	case "down", "j":
		a.tasks.MoveDown()
	case "pgup":
		a.chat.ScrollUp()
	case "pgdown":
		a.chat.ScrollDown()
	case "a":
		if task, ok := a.tasks.SelectedTask(); ok {
			a.report(a.ctrl.Approve(task.ID))
		}
	case "A":
		n := a.ctrl.ApproveAll()
		a.footer.SetStatus(fmt.Sprintf("Approved %d task(s)", n), false)
	case "r":
		if task, ok := a.tasks.SelectedTask(); ok {
			return a.beginPrompt(modeFeedback, task.ID, "Feedback", "Why is this task rejected?", "")
		}
	case "g":
		if task, ok := a.tasks.SelectedTask(); ok {
			return a.beginPrompt(modeGuidance, task.ID, "Guidance", "New task description", task.Description)
		}
	case "s":
		a.ctrl.StartDevelopment()
		a.footer.SetStatus("Development started", false)
	case "p":
		if a.ctrl.TogglePause() {
			a.footer.SetStatus("Paused", false)
		} else {
			a.footer.SetStatus("Resumed", false)
		}
	case "c":
		return a.taskAction("Generate", a.ctrl.GenerateForTask)
	case "t":
		return a.taskAction("Test", a.ctrl.TestForTask)
	case "f":
		return a.taskAction("Research", a.ctrl.ResearchForTask)
	case "d":
		a.download()
	}
	return nil
}

// taskAction runs a blocking per-task call for the selected task.
func (a *App) taskAction(name string, fn func(context.Context, string) error) tea.Cmd {
	task, ok := a.tasks.SelectedTask()
	if !ok {
		return nil
	}
	a.footer.SetStatus(fmt.Sprintf("%s: %s...", name, truncate(task.Description, 40)), false)
	return a.async(name, func(ctx context.Context) error { return fn(ctx, task.ID) })
}

// async runs fn off the update loop and reports its result.
func (a *App) async(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func (a *App) download() {
	artifact, err := a.ctrl.DownloadArtifact()
	if err != nil {
		a.report(err)
		return
	}
	path, err := artifact.WriteFile(a.opts.OutputPath)
	if err != nil {
		a.report(err)
		return
	}
	a.footer.SetStatus(fmt.Sprintf("Saved %s (blake3 %s)", path, truncate(artifact.Digest, 12)), false)
}

// report shows err on the status line. Errors the coordinator already
// announced with a notice are not repeated.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	var taskErr *orchestrator.TaskError
	if errors.As(err, &taskErr) ||
		errors.Is(err, orchestrator.ErrValidation) ||
		errors.Is(err, orchestrator.ErrNoCode) ||
		errors.Is(err, orchestrator.ErrEmptyArtifact) {
		a.footer.SetStatus("", false)
		return
	}
	a.footer.SetStatus(err.Error(), true)
}

func (a *App) beginPrompt(mode inputMode, taskID, label, placeholder, value string) tea.Cmd {
	a.mode = mode
	a.promptTaskID = taskID
	a.input.SetPrompt(label, placeholder, value)
	return a.focusInput()
}

func (a *App) endPrompt() {
	wasPrompt := a.mode != modeIdea
	a.mode = modeIdea
	a.promptTaskID = ""
	a.input.SetPrompt("", "", "")
	if wasPrompt {
		a.focusTasks()
	}
}

func (a *App) focusInput() tea.Cmd {
	a.inputFocused = true
	a.tasks.SetFocused(false)
	return a.input.Focus()
}

func (a *App) focusTasks() tea.Cmd {
	a.inputFocused = false
	a.input.Blur()
	a.tasks.SetFocused(true)
	return nil
}

// refresh re-reads the coordinator snapshot into the panels.
func (a *App) refresh() {
	a.state = a.ctrl.Snapshot()
	a.tasks.SetTasks(a.state.Tasks, a.state.CurrentTaskIndex, a.state.DevelopmentStarted, a.state.InFlight)
	a.chat.SetMessages(a.state.ChatMessages)
	a.stats.SetTasks(a.state.Tasks)
	a.stats.SetFiles(len(a.state.GeneratedFiles))
	a.stats.UpdateFromTracker(a.opts.Usage)

	switch {
	case a.state.Planning:
		a.header.SetStatus("PLANNING")
	case a.state.AllTasksCompleted:
		a.header.SetStatus("COMPLETE")
	case a.state.Paused:
		a.header.SetStatus("PAUSED")
	case a.state.DevelopmentStarted:
		a.header.SetStatus("DEVELOPING")
	case len(a.state.Tasks) > 0:
		a.header.SetStatus("REVIEW")
	default:
		a.header.SetStatus("")
	}
	a.footer.SetHints(a.hints())
}

func (a *App) hints() string {
	switch {
	case a.mode != modeIdea:
		return "enter submit │ esc cancel"
	case a.inputFocused:
		return "enter plan │ tab tasks │ ctrl+c quit"
	default:
		return "↑/↓ select │ a/A approve │ r reject │ g guide │ s start │ p pause │ c/t/f gen/test/research │ d download │ tab input │ q quit"
	}
}

// updateSizes lays out the panels for the terminal size.
func (a *App) updateSizes() {
	a.header.SetWidth(a.width)
	a.input.SetWidth(a.width)
	a.stats.SetWidth(a.width)
	a.footer.SetWidth(a.width)

	inputHeight := 3
	panelHeight := a.height - a.header.Height() - inputHeight - a.stats.Height() - a.footer.Height()
	if panelHeight < 5 {
		panelHeight = 5
	}

	tasksWidth := a.width * 2 / 5
	a.tasks.SetSize(tasksWidth, panelHeight)
	a.chat.SetSize(a.width-tasksWidth, panelHeight)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top, a.tasks.View(), a.chat.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		a.header.View(),
		a.input.View(),
		panels,
		a.stats.View(),
		a.footer.View(),
	)
}

// NewProgram creates a bubbletea program for the interactive session.
func NewProgram(ctx context.Context, ctrl Controller, opts Options) (*tea.Program, *App) {
	app := NewApp(ctx, ctrl, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	return p, app
}

// ForwardEvents sends coordinator events into the program until events is closed.
func ForwardEvents(program *tea.Program, events <-chan orchestrator.Event) {
	for ev := range events {
		program.Send(CoordinatorEventMsg{Event: ev})
	}
}
