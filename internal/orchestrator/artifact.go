package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// DefaultArtifactName is the file name of the combined code download.
const DefaultArtifactName = "devteam_ai_generated_code.jsx"

// Artifact is the combined code of every task that has code.
type Artifact struct {
	// Name is the suggested file name.
	Name string
	// Content is the concatenated code blocks.
	Content string
	// Digest is the hex blake3 hash of Content.
	Digest string
}

// WriteFile writes the artifact to path, or to Name inside dir when path is a directory.
// It returns the path written.
func (a *Artifact) WriteFile(path string) (string, error) {
	if path == "" {
		path = a.Name
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, a.Name)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create artifact directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(a.Content), 0644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// DownloadArtifact combines the code of every task that has code, in task
// order. It returns ErrEmptyArtifact when no task has code.
func (c *Coordinator) DownloadArtifact() (*Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	content := combineCode(c.tasks)
	if strings.TrimSpace(content) == "" {
		c.noticeLocked("No Code", "No code has been generated yet.", true)
		return nil, ErrEmptyArtifact
	}

	digest, err := digestOf(content)
	if err != nil {
		return nil, err
	}

	c.logLocked(models.AgentSystem, "Code downloaded.")
	return &Artifact{Name: c.artifactName, Content: content, Digest: digest}, nil
}

// combineCode renders one header-prefixed block per task with code.
func combineCode(tasks []models.Task) string {
	blocks := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if !t.HasCode() {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("// Task: %s\n// Assignee: %s\n%s", t.Description, t.Assignee, t.Code))
	}
	return strings.Join(blocks, "\n\n")
}

func digestOf(content string) (string, error) {
	hasher := blake3.New()
	if _, err := hasher.Write([]byte(content)); err != nil {
		return "", fmt.Errorf("hash artifact: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
