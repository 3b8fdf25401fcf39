package tui

import (
	"context"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
)

// Controller is the part of the coordinator the TUI drives.
// *orchestrator.Coordinator satisfies it.
type Controller interface {
	SubmitPlan(ctx context.Context, idea string) error
	Approve(id string) error
	ApproveAll() int
	Reject(id, feedback string) error
	ProvideGuidance(id, description string) error
	StartDevelopment()
	TogglePause() bool
	GenerateForTask(ctx context.Context, id string) error
	TestForTask(ctx context.Context, id string) error
	ResearchForTask(ctx context.Context, id string) error
	DownloadArtifact() (*orchestrator.Artifact, error)
	Snapshot() orchestrator.State
}

var _ Controller = (*orchestrator.Coordinator)(nil)

// CoordinatorEventMsg wraps a coordinator event for the bubbletea program.
type CoordinatorEventMsg struct {
	Event orchestrator.Event
}

// actionDoneMsg reports the end of a blocking coordinator call.
type actionDoneMsg struct {
	action string
	err    error
}

// refreshTickMsg triggers a periodic snapshot refresh.
type refreshTickMsg struct{}
