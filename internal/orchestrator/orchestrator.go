package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/devteam/internal/flows"
	"github.com/ShayCichocki/devteam/internal/state"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// Flows is the set of remote capabilities the Coordinator drives.
// *flows.Flows satisfies it.
type Flows interface {
	PlanProject(ctx context.Context, in flows.PlanProjectInput) (*flows.PlanProjectOutput, error)
	GenerateCode(ctx context.Context, in flows.GenerateCodeInput) (*flows.GenerateCodeOutput, error)
	TestCode(ctx context.Context, in flows.TestCodeInput) (*flows.TestCodeOutput, error)
	ResearchTask(ctx context.Context, in flows.ResearchTaskInput) (*flows.ResearchTaskOutput, error)
}

// callKind identifies the remote call a task is waiting on.
type callKind string

const (
	callGenerate callKind = "generate"
	callTest     callKind = "test"
	callResearch callKind = "research"
)

// State is a deep-copied view of a session.
type State struct {
	Tasks              []models.Task
	CurrentTaskIndex   int
	DevelopmentStarted bool
	Paused             bool
	// Planning is true while a SubmitPlan call is in flight.
	Planning          bool
	GeneratedFiles    []string
	ChatMessages      []models.ChatMessage
	AllTasksCompleted bool
	// InFlight lists the IDs of tasks with a remote call in flight, sorted.
	InFlight []string
}

// Coordinator owns a session's task list and drives it through the flows.
// It is safe for concurrent use.
type Coordinator struct {
	flows   Flows
	logger  *zap.Logger
	journal Journal
	now     func() time.Time
	baseCtx context.Context
	emitter *EventEmitter

	artifactName string

	mu sync.Mutex
	// idle is signalled whenever a call finishes, planning ends or the pause gate flips.
	idle *sync.Cond

	tasks              []models.Task
	currentTaskIndex   int
	developmentStarted bool
	paused             bool
	planning           bool
	generatedFiles     []string
	chatMessages       []models.ChatMessage
	allTasksCompleted  bool

	// inflight holds tasks with a remote call outstanding.
	inflight map[string]callKind
	// held holds tasks whose last call failed. The advance rule skips them
	// until the user acts on the task again.
	held map[string]bool

	closed bool
}

// New creates a Coordinator that delegates remote work to f.
func New(f Flows, opts ...Option) *Coordinator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Coordinator{
		flows:        f,
		logger:       o.logger,
		journal:      o.journal,
		now:          o.now,
		baseCtx:      o.baseCtx,
		emitter:      NewEventEmitter(o.eventBuffer, o.logger),
		artifactName: o.artifact,
		inflight:     make(map[string]callKind),
		held:         make(map[string]bool),
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// Events returns the channel of coordinator events.
// It is closed by Close.
func (c *Coordinator) Events() <-chan Event {
	return c.emitter.Events()
}

// Close stops event delivery. Calls still in flight finish and update state,
// but emit nothing further.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.emitter.Close()
	c.idle.Broadcast()
}

// Snapshot returns a copy of the current session state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	inflight := make([]string, 0, len(c.inflight))
	for id := range c.inflight {
		inflight = append(inflight, id)
	}
	sort.Strings(inflight)

	return State{
		Tasks:              models.CloneTasks(c.tasks),
		CurrentTaskIndex:   c.currentTaskIndex,
		DevelopmentStarted: c.developmentStarted,
		Paused:             c.paused,
		Planning:           c.planning,
		GeneratedFiles:     append([]string(nil), c.generatedFiles...),
		ChatMessages:       append([]models.ChatMessage(nil), c.chatMessages...),
		AllTasksCompleted:  c.allTasksCompleted,
		InFlight:           inflight,
	}
}

// WaitIdle blocks until no remote call is in flight and development is not
// paused, or until ctx is done.
func (c *Coordinator) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isIdleLocked() {
		return nil
	}

	// Wake the wait loop if the context ends first.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.idle.Broadcast()
			c.mu.Unlock()
		case <-done:
		}
	}()

	for !c.isIdleLocked() {
		c.idle.Wait()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) isIdleLocked() bool {
	return c.closed || (len(c.inflight) == 0 && !c.planning && !c.paused)
}

// indexLocked returns the position of the task with the given ID, or -1.
func (c *Coordinator) indexLocked(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// updateTaskLocked replaces the task list with a copy in which the task at
// idx has been modified by fn.
func (c *Coordinator) updateTaskLocked(idx int, fn func(*models.Task)) {
	tasks := models.CloneTasks(c.tasks)
	fn(&tasks[idx])
	c.setTasksLocked(tasks, idx)
}

// setTasksLocked installs a new task list and reports the changed positions.
func (c *Coordinator) setTasksLocked(tasks []models.Task, changed ...int) {
	c.tasks = tasks

	recorded := make([]models.Task, 0, len(changed))
	for _, idx := range changed {
		t := tasks[idx]
		recorded = append(recorded, t)
		c.emitLocked(Event{Type: EventTaskUpdated, TaskID: t.ID, Status: t.Status})
	}
	if len(recorded) > 0 {
		if err := c.journal.RecordTasks(recorded); err != nil {
			c.logger.Warn("journal: record tasks", zap.Error(err))
		}
	}

	c.refreshCompletionLocked()
}

// refreshCompletionLocked recomputes allTasksCompleted and announces the
// transition to a finished session once.
func (c *Coordinator) refreshCompletionLocked() {
	done := models.AllComplete(c.tasks)
	if done == c.allTasksCompleted {
		return
	}
	c.allTasksCompleted = done
	if !done {
		return
	}

	c.logLocked(models.AgentSystem, "All tasks completed! Project is finished.")
	c.emitLocked(Event{Type: EventSessionDone})
	if err := c.journal.SetStatus(state.SessionCompleted); err != nil {
		c.logger.Warn("journal: set status", zap.Error(err))
	}
}

// logLocked appends an entry to the chat log.
func (c *Coordinator) logLocked(agent, message string) {
	msg := models.ChatMessage{Message: message, Agent: agent}
	c.chatMessages = append(c.chatMessages, msg)
	c.logger.Info(message, zap.String("agent", agent))

	if err := c.journal.RecordMessage(msg); err != nil {
		c.logger.Warn("journal: record message", zap.Error(err))
	}
	c.emitLocked(Event{Type: EventMessage, Message: msg})
}

// noticeLocked publishes a transient notice.
func (c *Coordinator) noticeLocked(title, description string, destructive bool) {
	c.emitLocked(Event{
		Type:   EventNotice,
		Notice: models.Notice{Title: title, Description: description, Destructive: destructive},
	})
}

func (c *Coordinator) emitLocked(ev Event) {
	if c.closed {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = c.now()
	}
	c.emitter.Emit(ev)
}
