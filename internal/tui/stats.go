package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// TokenTracker reports model usage. *api.TokenTracker satisfies it.
type TokenTracker interface {
	Total() (input, output int64)
	Calls() int
}

// StatsBar renders a one-line summary of progress, generated files, token
// usage and elapsed time.
type StatsBar struct {
	width   int
	started time.Time

	done  int
	total int
	files int

	inputTokens  int64
	outputTokens int64
	calls        int

	labelStyle    lipgloss.Style
	valueStyle    lipgloss.Style
	progressFull  lipgloss.Style
	progressEmpty lipgloss.Style
}

// NewStatsBar creates a StatsBar whose clock starts at started.
func NewStatsBar(started time.Time) *StatsBar {
	return &StatsBar{
		width:   80,
		started: started,

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),

		progressFull: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		progressEmpty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// SetWidth sets the bar width.
func (s *StatsBar) SetWidth(width int) {
	s.width = width
}

// SetTasks updates the completed and total task counts.
func (s *StatsBar) SetTasks(tasks []models.Task) {
	s.done = 0
	for _, t := range tasks {
		if t.Status == models.TaskStatusComplete {
			s.done++
		}
	}
	s.total = len(tasks)
}

// SetFiles sets the number of generated files.
func (s *StatsBar) SetFiles(n int) {
	s.files = n
}

// UpdateFromTracker copies token usage from tracker. A nil tracker is ignored.
func (s *StatsBar) UpdateFromTracker(tracker TokenTracker) {
	if tracker == nil {
		return
	}
	s.inputTokens, s.outputTokens = tracker.Total()
	s.calls = tracker.Calls()
}

// View renders the bar.
func (s *StatsBar) View() string {
	pct := float64(0)
	if s.total > 0 {
		pct = float64(s.done) / float64(s.total) * 100
	}

	parts := []string{
		s.renderRow("Progress", s.renderProgressBar(pct, 12)+" "+s.valueStyle.Render(fmt.Sprintf("%d/%d", s.done, s.total))),
		s.renderRow("Files", s.valueStyle.Render(fmt.Sprint(s.files))),
		s.renderRow("Tokens", s.valueStyle.Render(fmt.Sprintf("%s in / %s out", formatNumber(s.inputTokens), formatNumber(s.outputTokens)))+
			s.labelStyle.Render(fmt.Sprintf(" (%d calls)", s.calls))),
		s.renderRow("Elapsed", s.valueStyle.Render(formatDuration(time.Since(s.started)))),
	}
	line := " " + strings.Join(parts, s.labelStyle.Render(" │ "))
	return lipgloss.NewStyle().MaxWidth(s.width).Render(line)
}

// Height returns the bar height in lines.
func (s *StatsBar) Height() int {
	return 1
}

func (s *StatsBar) renderRow(label, value string) string {
	return s.labelStyle.Render(label+" ") + value
}

// renderProgressBar renders a progress bar.
func (s *StatsBar) renderProgressBar(pct float64, width int) string {
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	filled := int(pct / 100 * float64(width))
	empty := width - filled

	return s.progressFull.Render(strings.Repeat("█", filled)) +
		s.progressEmpty.Render(strings.Repeat("░", empty))
}

// formatDuration formats d as 45s, 3m05s or 1h02m.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// formatNumber formats a number with comma separators.
func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if n < 0 {
		str = str[1:]
	}

	result := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}

	if n < 0 {
		result = "-" + result
	}
	return result
}
