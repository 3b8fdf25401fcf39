package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/pkg/models"
)

var planJSON bool

var planCmd = &cobra.Command{
	Use:   "plan <idea>",
	Short: "Print the task plan for an idea without developing it",
	Long: `Ask the planner to break an idea into tasks and print them.

Nothing is developed and no history is recorded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON")
}

// plannedTask is the JSON shape of one task in a printed plan.
type plannedTask struct {
	Description string          `json:"description"`
	Assignee    models.Assignee `json:"assignee"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.coord.SubmitPlan(cmd.Context(), strings.Join(args, " ")); err != nil {
		return err
	}
	tasks := s.coord.Snapshot().Tasks

	out := cmd.OutOrStdout()
	if planJSON {
		plan := make([]plannedTask, len(tasks))
		for i, t := range tasks {
			plan[i] = plannedTask{Description: t.Description, Assignee: t.Assignee}
		}
		return writeJSON(out, plan)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(out, "The planner returned no tasks.")
		return nil
	}
	for i, t := range tasks {
		fmt.Fprintf(out, "%2d. [%s] %s\n", i+1, t.Assignee, t.Description)
	}
	return nil
}
