package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header renders the title bar with the session state.
type Header struct {
	width  int
	status string
}

// NewHeader creates a new Header.
func NewHeader() *Header {
	return &Header{
		width: 80,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetStatus sets the right-aligned session state.
func (h *Header) SetStatus(status string) {
	h.status = status
}

// View renders the header.
func (h *Header) View() string {
	colors := []string{"#FF6B6B", "#FF8E53", "#FFC857", "#4ECDC4", "#45B7D1", "#96E6A1", "#B28DFF"}

	var title strings.Builder
	for i, r := range "devteam" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i%len(colors)])).Bold(true)
		title.WriteString(style.Render(string(r)))
	}

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Italic(true).
		Render("  AI development team")

	left := title.String() + subtitle
	right := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Render(h.status)

	gap := h.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// Height returns the header height in lines.
func (h *Header) Height() int {
	return 1
}
