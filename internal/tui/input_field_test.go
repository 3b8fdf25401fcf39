package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewInputField(t *testing.T) {
	field := NewInputField()

	if field == nil {
		t.Fatal("NewInputField returned nil")
	}
	if field.width != 80 {
		t.Errorf("Default width = %d, want 80", field.width)
	}
	if !field.Focused() {
		t.Error("new field should be focused")
	}
}

func TestInputField_SetWidth(t *testing.T) {
	field := NewInputField()

	field.SetWidth(120)

	if field.width != 120 {
		t.Errorf("Width after SetWidth(120) = %d, want 120", field.width)
	}
	// Input width should be width - 4 for prompt and padding
	if field.input.Width != 116 {
		t.Errorf("Input width = %d, want 116", field.input.Width)
	}
}

func TestInputField_Update_Enter(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantText string
		wantCmd  bool
	}{
		{"empty input", "", "", false},
		{"whitespace only", "   ", "", false},
		{"trimmed text", "  a blog engine ", "a blog engine", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := NewInputField()
			field.input.SetValue(tt.value)

			field, cmd := field.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if (cmd != nil) != tt.wantCmd {
				t.Fatalf("cmd returned = %v, want %v", cmd != nil, tt.wantCmd)
			}
			if !tt.wantCmd {
				return
			}

			msg, ok := cmd().(InputSubmittedMsg)
			if !ok {
				t.Fatalf("expected InputSubmittedMsg")
			}
			if msg.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", msg.Text, tt.wantText)
			}
			if field.Value() != "" {
				t.Errorf("input should be cleared after submit, got %q", field.Value())
			}
		})
	}
}

func TestInputField_SetPrompt(t *testing.T) {
	field := NewInputField()

	field.SetPrompt("Guidance", "New description", "old text")
	if field.Value() != "old text" {
		t.Errorf("Value = %q, want prefill", field.Value())
	}
	if field.input.Placeholder != "New description" {
		t.Errorf("Placeholder = %q", field.input.Placeholder)
	}

	field.SetPrompt("", "", "")
	if field.input.Placeholder != ideaPlaceholder {
		t.Errorf("Placeholder = %q, want idea placeholder", field.input.Placeholder)
	}
}

func TestInputField_FocusBlur(t *testing.T) {
	field := NewInputField()

	field.Blur()
	if field.Focused() {
		t.Error("field should not be focused after Blur")
	}
	field.Focus()
	if !field.Focused() {
		t.Error("field should be focused after Focus")
	}
}
