package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// agentColors colors chat entries by agent.
var agentColors = map[string]lipgloss.Color{
	models.AgentSystem:     lipgloss.Color("244"),
	models.AgentPlanner:    lipgloss.Color("75"),
	models.AgentDeveloper:  lipgloss.Color("34"),
	models.AgentTester:     lipgloss.Color("214"),
	models.AgentResearcher: lipgloss.Color("177"),
}

// ChatPanel shows the session chat log. It follows the newest entry unless
// the user scrolls back.
type ChatPanel struct {
	messages     []models.ChatMessage
	scrollOffset int
	autoScroll   bool
	width        int
	height       int

	titleStyle   lipgloss.Style
	messageStyle lipgloss.Style
	dimStyle     lipgloss.Style
}

// NewChatPanel creates a new ChatPanel.
func NewChatPanel() *ChatPanel {
	return &ChatPanel{
		autoScroll: true,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		messageStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),
	}
}

// SetMessages replaces the displayed chat log.
func (p *ChatPanel) SetMessages(messages []models.ChatMessage) {
	p.messages = messages
	if p.autoScroll {
		p.scrollToBottom()
	}
	p.clampScroll()
}

// SetSize updates the panel dimensions.
func (p *ChatPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	if p.autoScroll {
		p.scrollToBottom()
	}
	p.clampScroll()
}

// ScrollUp moves one page back and stops following new entries.
func (p *ChatPanel) ScrollUp() {
	p.autoScroll = false
	p.scrollOffset -= p.visibleLines()
	p.clampScroll()
}

// ScrollDown moves one page forward. Reaching the end resumes following.
func (p *ChatPanel) ScrollDown() {
	p.scrollOffset += p.visibleLines()
	p.clampScroll()
	if p.scrollOffset >= p.maxOffset() {
		p.autoScroll = true
	}
}

func (p *ChatPanel) visibleLines() int {
	lines := p.height - 4
	if lines < 1 {
		return 1
	}
	return lines
}

func (p *ChatPanel) maxOffset() int {
	off := len(p.messages) - p.visibleLines()
	if off < 0 {
		return 0
	}
	return off
}

func (p *ChatPanel) scrollToBottom() {
	p.scrollOffset = p.maxOffset()
}

func (p *ChatPanel) clampScroll() {
	if p.scrollOffset > p.maxOffset() {
		p.scrollOffset = p.maxOffset()
	}
	if p.scrollOffset < 0 {
		p.scrollOffset = 0
	}
}

// View renders the panel.
func (p *ChatPanel) View() string {
	var b strings.Builder

	title := "Team Chat"
	if !p.autoScroll {
		title += fmt.Sprintf(" [%d/%d]", p.scrollOffset+p.visibleLines(), len(p.messages))
	}
	b.WriteString(p.titleStyle.Render(title))
	b.WriteString("\n")

	if len(p.messages) == 0 {
		b.WriteString(p.dimStyle.Render("  No messages"))
	}

	end := p.scrollOffset + p.visibleLines()
	if end > len(p.messages) {
		end = len(p.messages)
	}
	for i := p.scrollOffset; i < end; i++ {
		b.WriteString(p.renderMessage(p.messages[i]))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(p.width-2, 10)).
		Height(max(p.height-2, 1)).
		Render(b.String())
}

func (p *ChatPanel) renderMessage(m models.ChatMessage) string {
	color, ok := agentColors[m.Agent]
	if !ok {
		color = lipgloss.Color("252")
	}
	agent := lipgloss.NewStyle().Foreground(color).Bold(true).Render(m.Agent + ":")

	maxLen := p.width - len(m.Agent) - 6
	if maxLen < 20 {
		maxLen = 20
	}
	text := strings.ReplaceAll(m.Message, "\n", " ")
	return agent + " " + p.messageStyle.Render(truncate(text, maxLen))
}
