package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

func TestNewField(t *testing.T) {
	f := NewField(nil, "Label", "placeholder", 10)

	require.NotNil(t, f)
	assert.Equal(t, "Label", f.Label())
	assert.Empty(t, f.Value())
	assert.False(t, f.Focused())
	assert.Equal(t, defaultWidth, f.Width())
}

func TestPresetFields(t *testing.T) {
	s := styles.DefaultStyles()

	assert.Equal(t, "PDF file", NewPathField(s).Label())
	assert.Equal(t, "Question", NewQuestionField(s).Label())
}

func TestField_FocusAndBlur(t *testing.T) {
	f := NewQuestionField(nil)

	f.Focus()
	assert.True(t, f.Focused())
	f.Blur()
	assert.False(t, f.Focused())
}

func TestField_TypingWhenFocused(t *testing.T) {
	f := NewQuestionField(nil)
	f.Focus()

	for _, r := range "hello" {
		f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "hello", f.Value())
}

func TestField_TypingIgnoredWhenBlurred(t *testing.T) {
	f := NewQuestionField(nil)

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Empty(t, f.Value())
}

func TestField_CharLimit(t *testing.T) {
	f := NewField(nil, "L", "", 3)
	f.SetValue("abcdef")

	assert.Equal(t, "abc", f.Value())
}

func TestField_SetValueAndReset(t *testing.T) {
	f := NewPathField(nil)

	f.SetValue("/tmp/a.pdf")
	assert.Equal(t, "/tmp/a.pdf", f.Value())

	f.Reset()
	assert.Empty(t, f.Value())
}

func TestField_SetWidth(t *testing.T) {
	f := NewPathField(nil)

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 94, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, minWidth, f.textinput.Width)
}

func TestField_View(t *testing.T) {
	f := NewPathField(nil)
	f.SetValue("/tmp/report.pdf")

	view := f.View()

	assert.Contains(t, view, "PDF file")
	assert.Contains(t, view, "/tmp/report.pdf")
}

func TestField_Init(t *testing.T) {
	assert.NotNil(t, NewPathField(nil).Init())
}
