package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/devteam/internal/flows"
	"github.com/ShayCichocki/devteam/internal/state"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// stubFlows is a Flows whose behavior is set per test. The function fields
// must be assigned before the Coordinator uses the stub.
type stubFlows struct {
	plan     func(idea string) (*flows.PlanProjectOutput, error)
	generate func(desc string) (*flows.GenerateCodeOutput, error)
	test     func(in flows.TestCodeInput) (*flows.TestCodeOutput, error)
	research func(query string) (*flows.ResearchTaskOutput, error)

	mu            sync.Mutex
	planCalls     int
	generateCalls map[string]int
	testInputs    []flows.TestCodeInput
	researchCalls int
}

func newStubFlows(descriptions ...string) *stubFlows {
	if len(descriptions) == 0 {
		descriptions = []string{"Header component", "Footer component"}
	}
	return &stubFlows{
		plan: func(string) (*flows.PlanProjectOutput, error) {
			out := &flows.PlanProjectOutput{}
			for _, d := range descriptions {
				out.Tasks = append(out.Tasks, flows.PlannedTask{Description: d, Assignee: models.AssigneeDeveloper})
			}
			return out, nil
		},
		generate: func(desc string) (*flows.GenerateCodeOutput, error) {
			return &flows.GenerateCodeOutput{Code: "// code for " + desc, Progress: "done"}, nil
		},
		test: func(flows.TestCodeInput) (*flows.TestCodeOutput, error) {
			return &flows.TestCodeOutput{Tests: "it()", Results: "all passed"}, nil
		},
		research: func(query string) (*flows.ResearchTaskOutput, error) {
			return &flows.ResearchTaskOutput{Info: "notes on " + query}, nil
		},
		generateCalls: make(map[string]int),
	}
}

func (s *stubFlows) PlanProject(ctx context.Context, in flows.PlanProjectInput) (*flows.PlanProjectOutput, error) {
	s.mu.Lock()
	s.planCalls++
	s.mu.Unlock()
	return s.plan(in.ProjectIdea)
}

func (s *stubFlows) GenerateCode(ctx context.Context, in flows.GenerateCodeInput) (*flows.GenerateCodeOutput, error) {
	s.mu.Lock()
	s.generateCalls[in.TaskDescription]++
	s.mu.Unlock()
	return s.generate(in.TaskDescription)
}

func (s *stubFlows) TestCode(ctx context.Context, in flows.TestCodeInput) (*flows.TestCodeOutput, error) {
	s.mu.Lock()
	s.testInputs = append(s.testInputs, in)
	s.mu.Unlock()
	return s.test(in)
}

func (s *stubFlows) ResearchTask(ctx context.Context, in flows.ResearchTaskInput) (*flows.ResearchTaskOutput, error) {
	s.mu.Lock()
	s.researchCalls++
	s.mu.Unlock()
	return s.research(in.Query)
}

func (s *stubFlows) generateCount(desc string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateCalls[desc]
}

func (s *stubFlows) testCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.testInputs)
}

// gate blocks a stub call until released.
type gate struct {
	started chan string
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{started: make(chan string, 16), release: make(chan struct{})}
}

func (g *gate) wait(desc string) {
	g.started <- desc
	<-g.release
}

// open releases every blocked and future call. It is safe to call twice.
func (g *gate) open() {
	g.once.Do(func() { close(g.release) })
}

func (g *gate) awaitStart(t *testing.T) string {
	t.Helper()
	select {
	case desc := <-g.started:
		return desc
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for call to start")
		return ""
	}
}

// fakeJournal records Journal calls.
type fakeJournal struct {
	mu       sync.Mutex
	ideas    []string
	tasks    map[string]models.Task
	messages []models.ChatMessage
	statuses []state.SessionStatus
	fail     bool
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{tasks: make(map[string]models.Task)}
}

func (j *fakeJournal) BeginSession(idea string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ideas = append(j.ideas, idea)
	return j.err()
}

func (j *fakeJournal) RecordTasks(tasks []models.Task) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, t := range tasks {
		j.tasks[t.ID] = t
	}
	return j.err()
}

func (j *fakeJournal) RecordMessage(msg models.ChatMessage) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.messages = append(j.messages, msg)
	return j.err()
}

func (j *fakeJournal) SetStatus(status state.SessionStatus) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.statuses = append(j.statuses, status)
	return j.err()
}

func (j *fakeJournal) err() error {
	if j.fail {
		return errors.New("disk full")
	}
	return nil
}

// fixedClock returns a clock pinned to the given Unix milliseconds.
func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

// newTestCoordinator builds a Coordinator with a large event buffer so tests
// that ignore events never block on delivery.
func newTestCoordinator(t *testing.T, f Flows, opts ...Option) *Coordinator {
	t.Helper()
	opts = append([]Option{WithEventBuffer(4096)}, opts...)
	c := New(f, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = c.WaitIdle(ctx)
		c.Close()
	})
	return c
}

// planned builds a Coordinator that has already received a plan.
func planned(t *testing.T, f *stubFlows, opts ...Option) *Coordinator {
	t.Helper()
	c := newTestCoordinator(t, f, opts...)
	if err := c.SubmitPlan(context.Background(), "a landing page"); err != nil {
		t.Fatalf("SubmitPlan failed: %v", err)
	}
	return c
}

// seed installs tasks directly, bypassing the planner.
func seed(c *Coordinator, tasks ...models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = tasks
	c.currentTaskIndex = 0
	c.allTasksCompleted = models.AllComplete(tasks)
}

func waitIdle(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func taskByID(t *testing.T, st State, id string) models.Task {
	t.Helper()
	for _, task := range st.Tasks {
		if task.ID == id {
			return task
		}
	}
	t.Fatalf("task %s not in snapshot", id)
	return models.Task{}
}

func statuses(st State) []models.TaskStatus {
	out := make([]models.TaskStatus, len(st.Tasks))
	for i, task := range st.Tasks {
		out[i] = task.Status
	}
	return out
}

func hasMessage(st State, agent, substr string) bool {
	for _, m := range st.ChatMessages {
		if m.Agent == agent && strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

func task(i int, desc string, status models.TaskStatus) models.Task {
	return models.Task{
		ID:          fmt.Sprintf("task-%d", i),
		Description: desc,
		Assignee:    models.AssigneeDeveloper,
		Status:      status,
	}
}
