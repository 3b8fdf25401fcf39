// Package flows implements the prompt-driven functions devteam delegates to a
// language model: project planning, code generation, code testing and research.
//
// Each flow renders a prompt template, sends it to a Completer and decodes the
// JSON object in the reply. The flows hold no session state.
package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// defaultProgress is reported when the model omits a progress summary.
const defaultProgress = "Generated Next.js code based on the provided task description."

// Completer sends one system/user prompt pair to a language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// PlanProjectInput is the input of PlanProject.
type PlanProjectInput struct {
	ProjectIdea string `json:"projectIdea"`
}

// PlannedTask is one task proposed by the planner.
type PlannedTask struct {
	Description string          `json:"description"`
	Assignee    models.Assignee `json:"assignee"`
}

// PlanProjectOutput is the result of PlanProject.
type PlanProjectOutput struct {
	Tasks []PlannedTask `json:"tasks"`
}

// GenerateCodeInput is the input of GenerateCode.
type GenerateCodeInput struct {
	TaskDescription string `json:"taskDescription"`
}

// GenerateCodeOutput is the result of GenerateCode.
type GenerateCodeOutput struct {
	Code     string `json:"code"`
	Progress string `json:"progress"`
}

// TestCodeInput is the input of TestCode.
type TestCodeInput struct {
	Code          string `json:"code"`
	ComponentName string `json:"componentName"`
}

// TestCodeOutput is the result of TestCode.
type TestCodeOutput struct {
	Tests   string `json:"tests"`
	Results string `json:"results"`
}

// ResearchTaskInput is the input of ResearchTask.
type ResearchTaskInput struct {
	Query string `json:"query"`
}

// ResearchTaskOutput is the result of ResearchTask.
type ResearchTaskOutput struct {
	Info string `json:"info"`
}

// Flows runs the prompt flows against a Completer.
type Flows struct {
	llm     Completer
	prompts *PromptSet
}

// New creates Flows backed by llm. A nil prompts uses the built-in set.
func New(llm Completer, prompts *PromptSet) *Flows {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Flows{llm: llm, prompts: prompts}
}

// PlanProject breaks a project idea into tasks with assigned roles.
func (f *Flows) PlanProject(ctx context.Context, in PlanProjectInput) (*PlanProjectOutput, error) {
	roles := make([]string, 0, len(models.Assignees()))
	for _, a := range models.Assignees() {
		roles = append(roles, string(a))
	}
	data := struct {
		ProjectIdea string
		Roles       []string
	}{in.ProjectIdea, roles}

	var raw struct {
		Tasks []struct {
			Description string `json:"description"`
			Assignee    string `json:"assignee"`
		} `json:"tasks"`
	}
	if err := f.run(ctx, PromptPlanProject, data, &raw); err != nil {
		return nil, err
	}

	if len(raw.Tasks) == 0 {
		return nil, fmt.Errorf("plan_project: empty task list returned")
	}

	out := &PlanProjectOutput{Tasks: make([]PlannedTask, 0, len(raw.Tasks))}
	for i, t := range raw.Tasks {
		desc := strings.TrimSpace(t.Description)
		if desc == "" {
			return nil, fmt.Errorf("plan_project: task %d has no description", i)
		}
		assignee, err := models.ParseAssignee(t.Assignee)
		if err != nil {
			return nil, fmt.Errorf("plan_project: task %d: %w", i, err)
		}
		out.Tasks = append(out.Tasks, PlannedTask{Description: desc, Assignee: assignee})
	}
	return out, nil
}

// GenerateCode produces code for a task description.
func (f *Flows) GenerateCode(ctx context.Context, in GenerateCodeInput) (*GenerateCodeOutput, error) {
	var out GenerateCodeOutput
	if err := f.run(ctx, PromptGenerateCode, in, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Code) == "" {
		return nil, fmt.Errorf("generate_code: model returned no code")
	}
	if strings.TrimSpace(out.Progress) == "" {
		out.Progress = defaultProgress
	}
	return &out, nil
}

// TestCode writes and evaluates tests for generated code.
func (f *Flows) TestCode(ctx context.Context, in TestCodeInput) (*TestCodeOutput, error) {
	var out TestCodeOutput
	if err := f.run(ctx, PromptTestCode, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResearchTask gathers background information for a query.
func (f *Flows) ResearchTask(ctx context.Context, in ResearchTaskInput) (*ResearchTaskOutput, error) {
	var out ResearchTaskOutput
	if err := f.run(ctx, PromptResearchTask, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// run renders the named prompt, calls the model and decodes the JSON reply into out.
func (f *Flows) run(ctx context.Context, name string, data, out any) error {
	system, prompt, err := f.prompts.Render(name, data)
	if err != nil {
		return err
	}

	reply, err := f.llm.Complete(ctx, system, prompt)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if err := decodeJSONObject(reply, out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// decodeJSONObject finds the outermost JSON object in a model reply
// (which may include prose or code fences) and unmarshals it.
func decodeJSONObject(reply string, out any) error {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no valid JSON object found in response")
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), out); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return nil
}
