package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ShayCichocki/devteam/internal/flows"
	"github.com/ShayCichocki/devteam/internal/state"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// SubmitPlan asks the planner to break idea into tasks. On success the task
// list is replaced with fresh tasks in review and the pointer returns to the
// first task. It blocks until the planner answers.
func (c *Coordinator) SubmitPlan(ctx context.Context, idea string) error {
	idea = strings.TrimSpace(idea)

	c.mu.Lock()
	if idea == "" {
		c.noticeLocked("Project Idea Required", "Please describe the project before planning.", true)
		c.mu.Unlock()
		return fmt.Errorf("%w: project idea is empty", ErrValidation)
	}
	if c.planning || len(c.inflight) > 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot replan while calls are running", ErrTaskBusy)
	}
	c.planning = true
	if err := c.journal.BeginSession(idea); err != nil {
		c.logger.Warn("journal: begin session", zap.Error(err))
	}
	c.logLocked(models.AgentSystem, fmt.Sprintf("Starting project planning for: %s", idea))
	c.mu.Unlock()

	out, err := c.flows.PlanProject(ctx, flows.PlanProjectInput{ProjectIdea: idea})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.planning = false
	defer c.idle.Broadcast()

	if err != nil {
		c.logger.Warn("planning failed", zap.Error(err))
		c.logLocked(models.AgentSystem, fmt.Sprintf("Error during project planning: %v", err))
		c.noticeLocked("Planning Failed",
			fmt.Sprintf("There was an error planning the project: %v. Please try again.", err), true)
		if jerr := c.journal.SetStatus(state.SessionFailed); jerr != nil {
			c.logger.Warn("journal: set status", zap.Error(jerr))
		}
		return &TaskError{Kind: ErrPlanning, Err: err}
	}

	tasks := make([]models.Task, len(out.Tasks))
	changed := make([]int, len(out.Tasks))
	for i, pt := range out.Tasks {
		tasks[i] = models.Task{
			ID:          fmt.Sprintf("task-%d", i),
			Description: pt.Description,
			Assignee:    pt.Assignee,
			Status:      models.TaskStatusReview,
		}
		changed[i] = i
	}

	c.currentTaskIndex = 0
	c.held = make(map[string]bool)
	c.setTasksLocked(tasks, changed...)
	if err := c.journal.SetStatus(state.SessionActive); err != nil {
		c.logger.Warn("journal: set status", zap.Error(err))
	}
	c.emitLocked(Event{Type: EventPlanReady})
	c.logLocked(models.AgentPlanner, "Project planning complete. Please review the tasks.")
	c.advanceLocked()
	return nil
}

// Approve moves a task from review to planning. Tasks in any other status are
// left unchanged and no error is returned.
func (c *Coordinator) Approve(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if c.tasks[idx].Status != models.TaskStatusReview {
		return nil
	}

	c.updateTaskLocked(idx, func(t *models.Task) { t.Status = models.TaskStatusPlanning })
	c.noticeLocked("Task Approved", "The task has been approved and is ready for development.", false)
	c.logLocked(models.AgentSystem, fmt.Sprintf("Task %q approved.", c.tasks[idx].Description))
	c.advanceLocked()
	return nil
}

// ApproveAll moves every task in review to planning and returns how many moved.
func (c *Coordinator) ApproveAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := models.CloneTasks(c.tasks)
	var changed []int
	for i := range tasks {
		if tasks[i].Status == models.TaskStatusReview {
			tasks[i].Status = models.TaskStatusPlanning
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return 0
	}

	c.setTasksLocked(tasks, changed...)
	c.noticeLocked("All Tasks Approved", "All tasks have been approved and are ready for development.", false)
	c.logLocked(models.AgentSystem, "All tasks approved.")
	c.advanceLocked()
	return len(changed)
}

// Reject returns a task to review and records the feedback. The description
// is not changed.
func (c *Coordinator) Reject(id, feedback string) error {
	feedback = strings.TrimSpace(feedback)

	c.mu.Lock()
	defer c.mu.Unlock()

	if feedback == "" {
		c.noticeLocked("Feedback Required", "Please explain why the task is rejected.", true)
		return fmt.Errorf("%w: feedback is empty", ErrValidation)
	}
	idx, err := c.idleTaskLocked(id)
	if err != nil {
		return err
	}

	delete(c.held, id)
	c.updateTaskLocked(idx, func(t *models.Task) { t.Status = models.TaskStatusReview })
	c.noticeLocked("Task Rejected",
		fmt.Sprintf("The task has been rejected with feedback: %s. Please review and revise.", feedback), true)
	c.logLocked(models.AgentSystem, fmt.Sprintf("Task %q rejected. Feedback: %s", c.tasks[idx].Description, feedback))
	c.advanceLocked()
	return nil
}

// ProvideGuidance overwrites a task's description and sends it back to planning.
func (c *Coordinator) ProvideGuidance(id, description string) error {
	description = strings.TrimSpace(description)

	c.mu.Lock()
	defer c.mu.Unlock()

	if description == "" {
		c.noticeLocked("Guidance Required", "Please provide a new description for the task.", true)
		return fmt.Errorf("%w: guidance is empty", ErrValidation)
	}
	idx, err := c.idleTaskLocked(id)
	if err != nil {
		return err
	}

	previous := c.tasks[idx].Description
	delete(c.held, id)
	c.updateTaskLocked(idx, func(t *models.Task) {
		t.Description = description
		t.Status = models.TaskStatusPlanning
	})
	c.noticeLocked("Task Updated", "The task description has been updated with your guidance.", false)
	c.logLocked(models.AgentSystem, fmt.Sprintf("Task %q updated with new guidance.", previous))
	c.advanceLocked()
	return nil
}

// StartDevelopment enables the advance rule from the first task and clears
// the pause gate.
func (c *Coordinator) StartDevelopment() {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasPaused := c.paused
	c.developmentStarted = true
	c.paused = false
	c.currentTaskIndex = 0
	c.held = make(map[string]bool)

	c.logLocked(models.AgentSystem, "Development started.")
	if wasPaused {
		c.emitLocked(Event{Type: EventPauseChanged, Paused: false})
	}
	c.advanceLocked()
	c.idle.Broadcast()
}

// TogglePause flips the pause gate and returns the new value.
// Pausing stops new calls from being scheduled; calls in flight still finish.
func (c *Coordinator) TogglePause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPausedLocked(!c.paused)
	return c.paused
}

// SetPaused sets the pause gate and reports whether it changed.
func (c *Coordinator) SetPaused(paused bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused == paused {
		return false
	}
	c.setPausedLocked(paused)
	return true
}

func (c *Coordinator) setPausedLocked(paused bool) {
	c.paused = paused
	if paused {
		c.logLocked(models.AgentSystem, "Development paused.")
	} else {
		c.logLocked(models.AgentSystem, "Development resumed.")
	}
	c.emitLocked(Event{Type: EventPauseChanged, Paused: paused})
	if !paused {
		c.advanceLocked()
	}
	c.idle.Broadcast()
}

// idleTaskLocked resolves a task that has no call in flight.
func (c *Coordinator) idleTaskLocked(id string) (int, error) {
	idx := c.indexLocked(id)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if _, busy := c.inflight[id]; busy {
		return -1, fmt.Errorf("%w: %s", ErrTaskBusy, id)
	}
	return idx, nil
}
