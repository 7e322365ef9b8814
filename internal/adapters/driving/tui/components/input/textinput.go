// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

const (
	defaultWidth = 50
	minWidth     = 20
)

// Field wraps a bubbles textinput with a label and focus-aware framing.
type Field struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewField creates an unfocused input labelled label.
func NewField(s *styles.Styles, label, placeholder string, charLimit int) *Field {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Width = defaultWidth

	return &Field{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     defaultWidth,
	}
}

// NewPathField creates the input for the PDF path.
func NewPathField(s *styles.Styles) *Field {
	return NewField(s, "PDF file", "/path/to/document.pdf", 4096)
}

// NewQuestionField creates the input for the question.
func NewQuestionField(s *styles.Styles) *Field {
	return NewField(s, "Question", "Ask a question about the document...", 1000)
}

// Init initialises the input.
func (f *Field) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *Field) Update(msg tea.Msg) (*Field, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the label above the framed input.
func (f *Field) View() string {
	frame := f.styles.InputField
	if f.textinput.Focused() {
		frame = f.styles.FocusedInput
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		f.styles.Label.Render(f.label),
		frame.Render(f.textinput.View()),
	)
}

// Label returns the field label.
func (f *Field) Label() string {
	return f.label
}

// Value returns the current input value.
func (f *Field) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *Field) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (f *Field) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *Field) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *Field) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the width of the input, leaving room for the frame.
func (f *Field) SetWidth(width int) {
	f.width = width
	f.textinput.Width = max(width-6, minWidth)
}

// Width returns the current width.
func (f *Field) Width() int {
	return f.width
}

// Reset clears the input.
func (f *Field) Reset() {
	f.textinput.Reset()
}
