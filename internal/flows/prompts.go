package flows

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompt names as they appear in prompts.yaml.
const (
	PromptPlanProject  = "plan_project"
	PromptGenerateCode = "generate_code"
	PromptTestCode     = "test_code"
	PromptResearchTask = "research_task"
)

// PromptSpec is one prompt definition from a prompts file.
type PromptSpec struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
}

// PromptSet holds the parsed templates for every flow.
type PromptSet struct {
	system    map[string]string
	templates map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() *PromptSet {
	set, err := ParsePrompts(defaultPromptsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in prompts are invalid: %v", err))
	}
	return set
}

// LoadPrompts reads a prompts file. Prompts missing from the file fall back
// to the built-in definitions.
func LoadPrompts(path string) (*PromptSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts %s: %w", path, err)
	}
	overrides, err := ParsePrompts(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompts %s: %w", path, err)
	}

	set := DefaultPrompts()
	for name, tmpl := range overrides.templates {
		set.templates[name] = tmpl
		set.system[name] = overrides.system[name]
	}
	return set, nil
}

// ParsePrompts parses YAML prompt definitions.
func ParsePrompts(data []byte) (*PromptSet, error) {
	var specs map[string]PromptSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("unmarshal prompts: %w", err)
	}

	set := &PromptSet{
		system:    make(map[string]string, len(specs)),
		templates: make(map[string]*template.Template, len(specs)),
	}
	for name, spec := range specs {
		if strings.TrimSpace(spec.Template) == "" {
			return nil, fmt.Errorf("prompt %q has an empty template", name)
		}
		tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(spec.Template)
		if err != nil {
			return nil, fmt.Errorf("prompt %q: %w", name, err)
		}
		set.templates[name] = tmpl
		set.system[name] = strings.TrimSpace(spec.System)
	}
	return set, nil
}

// Render executes the named template with data and returns the system and user prompts.
func (p *PromptSet) Render(name string, data any) (system, prompt string, err error) {
	tmpl, ok := p.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown prompt %q", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return p.system[name], b.String(), nil
}
