package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// Footer renders the latest notice, a status line and keyboard hints.
type Footer struct {
	notice    models.Notice
	hasNotice bool
	status    string
	statusErr bool
	hints     string
	width     int

	// Styles
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	hintStyle    lipgloss.Style
}

// NewFooter creates a new Footer instance.
func NewFooter() *Footer {
	return &Footer{
		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")).
			Bold(true),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// SetNotice shows a coordinator notice, replacing the previous one.
func (f *Footer) SetNotice(n models.Notice) {
	f.notice = n
	f.hasNotice = true
}

// Notice returns the notice on display.
func (f *Footer) Notice() (models.Notice, bool) {
	return f.notice, f.hasNotice
}

// SetStatus sets the status line. isErr renders it as a failure.
func (f *Footer) SetStatus(status string, isErr bool) {
	f.status = status
	f.statusErr = isErr
}

// Status returns the status line.
func (f *Footer) Status() string {
	return f.status
}

// SetHints sets the keyboard hints.
func (f *Footer) SetHints(hints string) {
	f.hints = hints
}

// SetWidth sets the footer width.
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// Height returns the footer height in lines.
func (f *Footer) Height() int {
	return 3
}

// View renders the footer.
func (f *Footer) View() string {
	notice := ""
	if f.hasNotice {
		style := f.successStyle
		if f.notice.Destructive {
			style = f.errorStyle
		}
		notice = style.Render(f.notice.Title+": ") + truncate(f.notice.Description, max(f.width-len(f.notice.Title)-4, 20))
	}

	status := f.hintStyle.Render(f.status)
	if f.statusErr {
		status = f.errorStyle.Render(f.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, notice, status, f.hintStyle.Render(f.hints))
}
