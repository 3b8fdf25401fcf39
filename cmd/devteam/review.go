package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// reviewDecision is the outcome of reviewing one planned task.
type reviewDecision struct {
	TaskID   string
	Approve  bool
	Feedback string
	// Guidance replaces the description and approves the task.
	Guidance string
}

// reviewTarget is the part of the coordinator plan review drives.
type reviewTarget interface {
	Approve(id string) error
	Reject(id, feedback string) error
	ProvideGuidance(id, description string) error
}

// applyReview applies decisions in order and returns how many tasks were
// approved, directly or through guidance.
func applyReview(target reviewTarget, decisions []reviewDecision) (int, error) {
	approved := 0
	for _, d := range decisions {
		var err error
		switch {
		case d.Approve:
			err = target.Approve(d.TaskID)
			approved++
		case d.Guidance != "":
			err = target.ProvideGuidance(d.TaskID, d.Guidance)
			approved++
		default:
			feedback := d.Feedback
			if feedback == "" {
				feedback = "Not approved during review."
			}
			err = target.Reject(d.TaskID, feedback)
		}
		if err != nil {
			return approved, fmt.Errorf("review %s: %w", d.TaskID, err)
		}
	}
	return approved, nil
}

// errNotInteractive is returned when a review prompt would need a terminal.
var errNotInteractive = errors.New("stdin is not a terminal; pass --yes to approve all tasks")

// promptReview asks the user which tasks to approve, then collects feedback
// or guidance for the rest.
func promptReview(tasks []models.Task) ([]reviewDecision, error) {
	if !isInteractive() {
		return nil, errNotInteractive
	}

	options := make([]huh.Option[string], len(tasks))
	selected := make([]string, 0, len(tasks))
	for i, t := range tasks {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", t.Description, t.Assignee), t.ID).Selected(true)
		selected = append(selected, t.ID)
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Approve tasks").
			Description("Unselected tasks are rejected or revised.").
			Options(options...).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("review prompt failed: %w", err)
	}

	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}

	decisions := make([]reviewDecision, 0, len(tasks))
	for _, t := range tasks {
		d := reviewDecision{TaskID: t.ID, Approve: chosen[t.ID]}
		if !d.Approve {
			guidance := t.Description
			form := huh.NewForm(huh.NewGroup(
				huh.NewNote().Title(t.Description),
				huh.NewInput().
					Title("Feedback").
					Description("Why is this task rejected?").
					Value(&d.Feedback),
				huh.NewText().
					Title("Revised description").
					Description("Change it to send the task to development with your guidance.").
					Value(&guidance),
			))
			if err := form.Run(); err != nil {
				return nil, fmt.Errorf("review prompt failed: %w", err)
			}
			if guidance != t.Description {
				d.Guidance = guidance
			}
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// isInteractive returns true if stdin is a terminal (not piped)
func isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
