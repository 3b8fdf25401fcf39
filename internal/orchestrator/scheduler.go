package orchestrator

import (
	"go.uber.org/zap"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// advanceLocked applies the advance rule to the task at the pointer. It is
// called once after every transition and schedules at most one remote call.
//
//	planning             -> schedule generation
//	testing              -> schedule testing
//	complete, not last   -> move the pointer and look again
//	complete, last       -> nothing; completion is derived from the task list
//	review, coding       -> nothing
//
// A task with a call in flight, or whose last call failed, is left alone.
func (c *Coordinator) advanceLocked() {
	for c.developmentStarted && !c.paused && !c.closed && len(c.tasks) > 0 {
		if c.currentTaskIndex >= len(c.tasks) {
			c.currentTaskIndex = len(c.tasks) - 1
		}
		task := c.tasks[c.currentTaskIndex]
		if _, busy := c.inflight[task.ID]; busy || c.held[task.ID] {
			return
		}

		switch task.Status {
		case models.TaskStatusPlanning:
			c.dispatchLocked(callGenerate, task.ID)
			return
		case models.TaskStatusTesting:
			c.dispatchLocked(callTest, task.ID)
			return
		case models.TaskStatusComplete:
			if c.currentTaskIndex < len(c.tasks)-1 {
				c.currentTaskIndex++
				continue
			}
			return
		default:
			return
		}
	}
}

// dispatchLocked starts a remote call for a task in the background.
func (c *Coordinator) dispatchLocked(kind callKind, id string) {
	var (
		call *taskCall
		err  error
	)
	switch kind {
	case callGenerate:
		call, err = c.beginGenerateLocked(id)
	case callTest:
		call, err = c.beginTestLocked(id)
	}
	if err != nil {
		c.held[id] = true
		c.logger.Warn("scheduled call not started",
			zap.String("task_id", id),
			zap.String("call", string(kind)),
			zap.Error(err))
		return
	}

	c.logger.Debug("scheduled call",
		zap.String("task_id", id),
		zap.String("call", string(kind)),
		zap.Int("pointer", c.currentTaskIndex))

	go func() {
		_ = c.run(c.baseCtx, call)
	}()
}
