package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.Len(t, view.Items(), 4)
	assert.Equal(t, 0, view.Selected())
	assert.Equal(t, 80, view.width)
	assert.Equal(t, 24, view.height)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_Init(t *testing.T) {
	assert.Nil(t, NewView(nil, nil).Init())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
	assert.Equal(t, 50, view.height)
}

func TestView_Update_Navigate(t *testing.T) {
	view := NewView(nil, nil)
	down := tea.KeyMsg{Type: tea.KeyDown}
	j := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	k := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}

	view.Update(down)
	assert.Equal(t, 1, view.Selected())

	view.Update(j)
	view.Update(j)
	assert.Equal(t, 3, view.Selected())

	// Boundary
	view.Update(j)
	assert.Equal(t, 3, view.Selected())

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	view.Update(k)
	view.Update(k)
	assert.Equal(t, 0, view.Selected())

	view.Update(k)
	assert.Equal(t, 0, view.Selected())
}

func TestView_Update_Enter(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		want     messages.ViewType
	}{
		{"ask", 0, messages.ViewAsk},
		{"settings", 1, messages.ViewSettings},
		{"help", 2, messages.ViewHelp},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view := NewView(nil, nil)
			view.cursor = tc.selected

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			changed, ok := cmd().(messages.ViewChanged)
			require.True(t, ok)
			assert.Equal(t, tc.want, changed.View)
		})
	}
}

func TestView_Update_Quit(t *testing.T) {
	view := NewView(nil, nil)
	view.cursor = 3

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_View(t *testing.T) {
	view := NewView(nil, nil)
	assert.Contains(t, view.View(), "Initialising")

	view.SetDimensions(80, 24)
	output := view.View()

	assert.Contains(t, output, "docqa")
	assert.Contains(t, output, "Ask")
	assert.Contains(t, output, "Process a PDF and ask questions about it")
	assert.Contains(t, output, "Settings")
	assert.Contains(t, output, "Quit")
	assert.Contains(t, output, "> ")
	assert.Contains(t, output, "1. Ask")
	assert.Contains(t, output, "quit")
	assert.NotContains(t, output, "Document:")
}

func TestView_CurrentFile(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)

	view.SetCurrentFile("/docs/france.pdf")

	assert.Contains(t, view.View(), "Document: /docs/france.pdf")
}

func TestView_Items(t *testing.T) {
	items := NewView(nil, nil).Items()

	assert.Equal(t, "Ask", items[0].Label)
	assert.Equal(t, messages.ViewAsk, items[0].View)
	assert.Equal(t, "Settings", items[1].Label)
	assert.Equal(t, "Help", items[2].Label)
	assert.True(t, items[3].Quit)
}

func TestView_Update_NumberShortcut(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})

	require.NotNil(t, cmd)
	assert.Equal(t, 1, view.Selected())
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSettings}, cmd())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'9'}})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, view.Selected())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
