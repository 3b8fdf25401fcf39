package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// Status icons.
const (
	iconReview   = "?"
	iconPlanning = "○"
	iconCoding   = "◐"
	iconTesting  = "◑"
	iconComplete = "✓"
	iconBusy     = "⏳"
)

// TasksPanel displays the planned tasks with a selection cursor.
type TasksPanel struct {
	tasks        []models.Task
	current      int
	started      bool
	inflight     map[string]bool
	selected     int
	scrollOffset int
	width        int
	height       int
	focused      bool

	// Styles
	selectedStyle lipgloss.Style
	normalStyle   lipgloss.Style
	reviewStyle   lipgloss.Style
	planningStyle lipgloss.Style
	activeStyle   lipgloss.Style
	doneStyle     lipgloss.Style
	dimStyle      lipgloss.Style
	titleStyle    lipgloss.Style
}

// NewTasksPanel creates a new TasksPanel instance.
func NewTasksPanel() *TasksPanel {
	return &TasksPanel{
		inflight: make(map[string]bool),

		selectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Bold(true),

		normalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		reviewStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")), // Orange

		planningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")), // Gray

		activeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")), // Green

		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")), // Dark green

		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),
	}
}

// SetTasks updates the task list, the pointer and the tasks with calls in flight.
func (p *TasksPanel) SetTasks(tasks []models.Task, current int, started bool, inflight []string) {
	p.tasks = tasks
	p.current = current
	p.started = started
	p.inflight = make(map[string]bool, len(inflight))
	for _, id := range inflight {
		p.inflight[id] = true
	}

	if p.selected >= len(p.tasks) {
		p.selected = len(p.tasks) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
	p.ensureVisible()
}

// SetSize updates the panel dimensions.
func (p *TasksPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.ensureVisible()
}

// SetFocused sets whether the panel has focus.
func (p *TasksPanel) SetFocused(focused bool) {
	p.focused = focused
}

// MoveUp moves the cursor up one task.
func (p *TasksPanel) MoveUp() {
	if p.selected > 0 {
		p.selected--
		p.ensureVisible()
	}
}

// MoveDown moves the cursor down one task.
func (p *TasksPanel) MoveDown() {
	if p.selected < len(p.tasks)-1 {
		p.selected++
		p.ensureVisible()
	}
}

// SelectedTask returns the task under the cursor.
func (p *TasksPanel) SelectedTask() (models.Task, bool) {
	if p.selected < 0 || p.selected >= len(p.tasks) {
		return models.Task{}, false
	}
	return p.tasks[p.selected], true
}

// visibleRows returns how many task lines fit inside the border and title.
func (p *TasksPanel) visibleRows() int {
	rows := p.height - 4
	if rows < 1 {
		return 1
	}
	return rows
}

func (p *TasksPanel) ensureVisible() {
	rows := p.visibleRows()
	if p.selected < p.scrollOffset {
		p.scrollOffset = p.selected
	}
	if p.selected >= p.scrollOffset+rows {
		p.scrollOffset = p.selected - rows + 1
	}
	if p.scrollOffset < 0 {
		p.scrollOffset = 0
	}
}

// View renders the panel.
func (p *TasksPanel) View() string {
	var b strings.Builder

	done := 0
	for _, t := range p.tasks {
		if t.Status == models.TaskStatusComplete {
			done++
		}
	}
	b.WriteString(p.titleStyle.Render(fmt.Sprintf("Tasks [%d/%d]", done, len(p.tasks))))
	b.WriteString("\n")

	if len(p.tasks) == 0 {
		b.WriteString(p.dimStyle.Render(" No tasks yet. Submit a project idea to plan."))
	}

	end := p.scrollOffset + p.visibleRows()
	if end > len(p.tasks) {
		end = len(p.tasks)
	}
	for i := p.scrollOffset; i < end; i++ {
		b.WriteString(p.renderTaskLine(i))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	borderColor := lipgloss.Color("240")
	if p.focused {
		borderColor = lipgloss.Color("63") // Blue when focused
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(p.width-2, 10)).
		Height(max(p.height-2, 1)).
		Render(b.String())
}

// renderTaskLine renders one task row.
func (p *TasksPanel) renderTaskLine(i int) string {
	task := p.tasks[i]

	marker := " "
	if p.started && i == p.current {
		marker = "▶"
	}

	icon := p.statusIcon(task.Status)
	if p.inflight[task.ID] {
		icon = p.activeStyle.Render(iconBusy)
	}

	suffix := fmt.Sprintf(" [%s]", task.Assignee)
	maxLen := p.width - 10 - len(suffix)
	if maxLen < 10 {
		maxLen = 10
	}

	line := fmt.Sprintf("%s %s %s%s", marker, icon, truncate(task.Description, maxLen), p.dimStyle.Render(suffix))
	if p.focused && i == p.selected {
		return p.selectedStyle.Render(line)
	}
	return p.normalStyle.Render(line)
}

// statusIcon returns the icon for a task status.
func (p *TasksPanel) statusIcon(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusReview:
		return p.reviewStyle.Render(iconReview)
	case models.TaskStatusPlanning:
		return p.planningStyle.Render(iconPlanning)
	case models.TaskStatusCoding:
		return p.activeStyle.Render(iconCoding)
	case models.TaskStatusTesting:
		return p.activeStyle.Render(iconTesting)
	case models.TaskStatusComplete:
		return p.doneStyle.Render(iconComplete)
	default:
		return p.planningStyle.Render(iconPlanning)
	}
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
