package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Prompt is a single-line input with a styled prefix. Forms use one per
// text field.
type Prompt struct {
	input   textinput.Model
	focused bool
}

// NewPrompt creates a prompt with a placeholder hinting at the expected
// input, such as a type name.
func NewPrompt(placeholder string) Prompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Prompt = ""

	return Prompt{input: ti}
}

// Focus sets focus on the prompt
func (p *Prompt) Focus() tea.Cmd {
	p.focused = true
	return p.input.Focus()
}

// Blur removes focus from the prompt
func (p *Prompt) Blur() {
	p.focused = false
	p.input.Blur()
}

// Focused returns whether the prompt has focus
func (p *Prompt) Focused() bool {
	return p.focused
}

// SetWidth sets the width of the input
func (p *Prompt) SetWidth(w int) {
	p.input.Width = max(w-2, 1) // Account for prompt symbol and spacing
}

// Value returns the current input value
func (p *Prompt) Value() string {
	return p.input.Value()
}

// SetValue sets the input value
func (p *Prompt) SetValue(s string) {
	p.input.SetValue(s)
}

// Update handles input events
func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// View renders the prompt
func (p *Prompt) View() string {
	style := SelectorDim
	if p.focused {
		style = PromptStyle
	}
	return style.Render(SymbolPrompt) + " " + p.input.View()
}
