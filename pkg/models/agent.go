package models

import (
	"fmt"
	"strings"
)

// Assignee is the role a planned task is assigned to.
type Assignee string

const (
	// AssigneeDeveloper writes application code.
	AssigneeDeveloper Assignee = "Developer"
	// AssigneeTester writes and runs tests.
	AssigneeTester Assignee = "Tester"
	// AssigneeResearcher gathers background information.
	AssigneeResearcher Assignee = "Researcher"
	// AssigneeDocCreator writes documentation.
	AssigneeDocCreator Assignee = "Doc Creator"
)

// Assignees lists every known role in the order the planner is told about them.
func Assignees() []Assignee {
	return []Assignee{AssigneeDeveloper, AssigneeTester, AssigneeResearcher, AssigneeDocCreator}
}

// Valid returns true if the assignee is a known role.
func (a Assignee) Valid() bool {
	switch a {
	case AssigneeDeveloper, AssigneeTester, AssigneeResearcher, AssigneeDocCreator:
		return true
	default:
		return false
	}
}

// Slug returns the role name with spaces removed, for use in file names.
func (a Assignee) Slug() string {
	return strings.ReplaceAll(string(a), " ", "")
}

// ParseAssignee converts a role name into an Assignee.
// Matching ignores case and surrounding space, and accepts "DocCreator".
func ParseAssignee(s string) (Assignee, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, a := range Assignees() {
		if strings.ToLower(a.Slug()) == norm {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown assignee %q", s)
}

// Agent names used in the chat log.
const (
	AgentSystem     = "System"
	AgentPlanner    = "Planner"
	AgentDeveloper  = "Developer"
	AgentTester     = "Tester"
	AgentResearcher = "Researcher"
)

// ChatMessage is one entry in the session's append-only activity log.
type ChatMessage struct {
	// Message is the human-readable text.
	Message string `json:"message"`
	// Agent is the role that produced the entry.
	Agent string `json:"agent"`
}

// Notice is a transient, user-visible notification.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Destructive marks failures and rejections.
	Destructive bool `json:"destructive,omitempty"`
}
