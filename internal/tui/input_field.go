package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const ideaPlaceholder = "Describe your project idea and press Enter..."

// InputSubmittedMsg is sent when the user submits non-empty input.
type InputSubmittedMsg struct {
	Text string
}

// InputField is a text input used for the project idea, rejection feedback
// and guidance.
type InputField struct {
	input textinput.Model
	label string
	width int
}

// NewInputField creates a new InputField.
func NewInputField() *InputField {
	ti := textinput.New()
	ti.Placeholder = ideaPlaceholder
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	return &InputField{
		input: ti,
		width: 80,
	}
}

// SetWidth sets the width of the input field.
func (f *InputField) SetWidth(width int) {
	f.width = width
	f.input.Width = width - 4 // Account for prompt and padding
}

// SetPrompt switches the field to a labelled prompt with an initial value.
// An empty label restores the idea input.
func (f *InputField) SetPrompt(label, placeholder, value string) {
	f.label = label
	if placeholder == "" {
		placeholder = ideaPlaceholder
	}
	f.input.Placeholder = placeholder
	f.input.SetValue(value)
	f.input.CursorEnd()
}

// Value returns the current text.
func (f *InputField) Value() string {
	return f.input.Value()
}

// Update handles messages for the input field.
func (f *InputField) Update(msg tea.Msg) (*InputField, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		text := strings.TrimSpace(f.input.Value())
		if text == "" {
			return f, nil
		}
		f.input.Reset()
		return f, func() tea.Msg {
			return InputSubmittedMsg{Text: text}
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// View renders the input field.
func (f *InputField) View() string {
	promptStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	borderColor := lipgloss.Color("240")
	if f.input.Focused() {
		borderColor = lipgloss.Color("39")
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(f.width - 2)

	prompt := "> "
	if f.label != "" {
		prompt = f.label + " > "
	}
	return boxStyle.Render(promptStyle.Render(prompt) + f.input.View())
}

// Focus sets focus on the input field.
func (f *InputField) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes focus from the input field.
func (f *InputField) Blur() {
	f.input.Blur()
}

// Focused reports whether the field has focus.
func (f *InputField) Focused() bool {
	return f.input.Focused()
}
