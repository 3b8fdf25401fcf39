package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/devteam/internal/flows"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// errEmptyResponse is reported when a flow returns neither output nor error.
var errEmptyResponse = errors.New("empty response")

// taskCall captures what a remote call needs, read under the lock when the
// call starts.
type taskCall struct {
	kind          callKind
	taskID        string
	description   string
	assignee      models.Assignee
	code          string
	componentName string
}

// GenerateForTask generates code for a task and blocks until the generator
// answers. On success the task moves to testing; on failure it returns to
// planning without code and a *TaskError wrapping ErrGeneration is returned.
func (c *Coordinator) GenerateForTask(ctx context.Context, id string) error {
	c.mu.Lock()
	call, err := c.beginGenerateLocked(id)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.run(ctx, call)
}

// TestForTask tests a task's code and blocks until the tester answers. A task
// without code is rejected with ErrNoCode and left unchanged.
func (c *Coordinator) TestForTask(ctx context.Context, id string) error {
	c.mu.Lock()
	call, err := c.beginTestLocked(id)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.run(ctx, call)
}

// ResearchForTask researches a task's description and logs the findings.
// The task status is not changed.
func (c *Coordinator) ResearchForTask(ctx context.Context, id string) error {
	c.mu.Lock()
	call, err := c.beginResearchLocked(id)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.run(ctx, call)
}

// callableTaskLocked resolves a task that may start a remote call.
func (c *Coordinator) callableTaskLocked(id string) (int, error) {
	if c.planning {
		return -1, fmt.Errorf("%w: planning in progress", ErrTaskBusy)
	}
	return c.idleTaskLocked(id)
}

func (c *Coordinator) beginGenerateLocked(id string) (*taskCall, error) {
	idx, err := c.callableTaskLocked(id)
	if err != nil {
		return nil, err
	}

	delete(c.held, id)
	c.inflight[id] = callGenerate
	c.updateTaskLocked(idx, func(t *models.Task) {
		t.Status = models.TaskStatusCoding
		t.Code = ""
		t.TestResults = ""
	})

	task := c.tasks[idx]
	c.logLocked(models.AgentDeveloper, fmt.Sprintf("Generating code for task: %q...", task.Description))
	return &taskCall{
		kind:        callGenerate,
		taskID:      id,
		description: task.Description,
		assignee:    task.Assignee,
	}, nil
}

func (c *Coordinator) beginTestLocked(id string) (*taskCall, error) {
	idx, err := c.callableTaskLocked(id)
	if err != nil {
		return nil, err
	}

	task := c.tasks[idx]
	if !task.HasCode() {
		c.logLocked(models.AgentTester, fmt.Sprintf("Error testing code for task %q: %v", task.Description, ErrNoCode))
		c.noticeLocked("Testing Failed",
			fmt.Sprintf("Error testing code for task %q: %v", task.Description, ErrNoCode), true)
		return nil, fmt.Errorf("%s: %w", id, ErrNoCode)
	}

	delete(c.held, id)
	c.inflight[id] = callTest
	if task.Status != models.TaskStatusTesting {
		c.updateTaskLocked(idx, func(t *models.Task) { t.Status = models.TaskStatusTesting })
	}

	c.logLocked(models.AgentTester, fmt.Sprintf("Testing code for task: %q...", task.Description))
	return &taskCall{
		kind:          callTest,
		taskID:        id,
		description:   task.Description,
		assignee:      task.Assignee,
		code:          task.Code,
		componentName: task.ComponentName(),
	}, nil
}

func (c *Coordinator) beginResearchLocked(id string) (*taskCall, error) {
	idx, err := c.callableTaskLocked(id)
	if err != nil {
		return nil, err
	}

	task := c.tasks[idx]
	c.inflight[id] = callResearch
	c.logLocked(models.AgentResearcher, fmt.Sprintf("Researching task: %q...", task.Description))
	return &taskCall{
		kind:        callResearch,
		taskID:      id,
		description: task.Description,
		assignee:    task.Assignee,
	}, nil
}

// run performs the remote call without holding the lock and applies its result.
func (c *Coordinator) run(ctx context.Context, call *taskCall) error {
	switch call.kind {
	case callGenerate:
		out, err := c.flows.GenerateCode(ctx, flows.GenerateCodeInput{TaskDescription: call.description})
		if err == nil && out == nil {
			err = errEmptyResponse
		}
		return c.finish(call, func(idx int) error { return c.applyGenerateLocked(idx, call, out, err) })
	case callTest:
		out, err := c.flows.TestCode(ctx, flows.TestCodeInput{Code: call.code, ComponentName: call.componentName})
		if err == nil && out == nil {
			err = errEmptyResponse
		}
		return c.finish(call, func(idx int) error { return c.applyTestLocked(idx, call, out, err) })
	case callResearch:
		out, err := c.flows.ResearchTask(ctx, flows.ResearchTaskInput{Query: call.description})
		if err == nil && out == nil {
			err = errEmptyResponse
		}
		return c.finish(call, func(idx int) error { return c.applyResearchLocked(idx, call, out, err) })
	default:
		return fmt.Errorf("unknown call kind %q", call.kind)
	}
}

// finish re-acquires the lock, applies a call result, clears the in-flight
// mark and re-evaluates the advance rule.
func (c *Coordinator) finish(call *taskCall, apply func(idx int) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.idle.Broadcast()

	delete(c.inflight, call.taskID)

	// The plan cannot be replaced while a call is in flight, so the task is
	// still present. Guard anyway rather than index out of range.
	idx := c.indexLocked(call.taskID)
	if idx < 0 {
		c.logger.Error("call finished for unknown task", zap.String("task_id", call.taskID))
		return fmt.Errorf("%w: %s", ErrTaskNotFound, call.taskID)
	}

	err := apply(idx)
	c.advanceLocked()
	return err
}

func (c *Coordinator) applyGenerateLocked(idx int, call *taskCall, out *flows.GenerateCodeOutput, err error) error {
	desc := c.tasks[idx].Description
	if err != nil {
		c.held[call.taskID] = true
		c.updateTaskLocked(idx, func(t *models.Task) {
			t.Status = models.TaskStatusPlanning
			t.Code = ""
		})
		c.logger.Warn("code generation failed", zap.String("task_id", call.taskID), zap.Error(err))
		c.logLocked(models.AgentDeveloper, fmt.Sprintf("Error generating code for task %q: %v", desc, err))
		c.noticeLocked("Code Generation Failed", fmt.Sprintf("Error generating code for task %q: %v", desc, err), true)
		return &TaskError{Kind: ErrGeneration, TaskID: call.taskID, Err: err}
	}

	file := fmt.Sprintf("GeneratedComponent_%s_%d.jsx", call.assignee.Slug(), c.now().UnixMilli())
	c.generatedFiles = append(c.generatedFiles, file)
	c.emitLocked(Event{Type: EventFileGenerated, TaskID: call.taskID, File: file})
	c.logger.Info("code generated",
		zap.String("task_id", call.taskID),
		zap.String("file", file),
		zap.String("progress", out.Progress))
	c.logLocked(models.AgentDeveloper, fmt.Sprintf("Generated code for task: %q. File: %s", desc, file))

	c.updateTaskLocked(idx, func(t *models.Task) {
		t.Code = out.Code
		t.Status = models.TaskStatusTesting
	})
	return nil
}

func (c *Coordinator) applyTestLocked(idx int, call *taskCall, out *flows.TestCodeOutput, err error) error {
	desc := c.tasks[idx].Description
	if err != nil {
		c.held[call.taskID] = true
		c.updateTaskLocked(idx, func(t *models.Task) { t.Status = models.TaskStatusCoding })
		c.logger.Warn("testing failed", zap.String("task_id", call.taskID), zap.Error(err))
		c.logLocked(models.AgentTester, fmt.Sprintf("Error testing code for task %q: %v", desc, err))
		c.noticeLocked("Testing Failed", fmt.Sprintf("Error testing code for task %q: %v", desc, err), true)
		return &TaskError{Kind: ErrTest, TaskID: call.taskID, Err: err}
	}

	c.logLocked(models.AgentTester, fmt.Sprintf("Tested code for task: %q. Results: %s", desc, out.Results))
	c.logLocked(models.AgentSystem, fmt.Sprintf("Task %q completed and tested.", desc))
	c.updateTaskLocked(idx, func(t *models.Task) {
		t.TestResults = out.Results
		t.Status = models.TaskStatusComplete
	})
	return nil
}

func (c *Coordinator) applyResearchLocked(idx int, call *taskCall, out *flows.ResearchTaskOutput, err error) error {
	desc := c.tasks[idx].Description
	if err != nil {
		c.logger.Warn("research failed", zap.String("task_id", call.taskID), zap.Error(err))
		c.logLocked(models.AgentResearcher, fmt.Sprintf("Error researching task %q: %v", desc, err))
		c.noticeLocked("Research Failed", fmt.Sprintf("Error researching task %q: %v", desc, err), true)
		return &TaskError{Kind: ErrResearch, TaskID: call.taskID, Err: err}
	}

	c.logLocked(models.AgentResearcher, fmt.Sprintf("Research for task %q: %s", desc, out.Info))
	return nil
}
