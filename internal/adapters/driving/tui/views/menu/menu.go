// Package menu is the TUI's start screen.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Selecting an item with Quit set exits the TUI.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

func defaultItems() []Item {
	return []Item{
		{Label: "Ask", Description: "Process a PDF and ask questions about it", View: messages.ViewAsk},
		{Label: "Settings", Description: "Show providers and retrieval settings", View: messages.ViewSettings},
		{Label: "Help", Description: "Key bindings", View: messages.ViewHelp},
		{Label: "Quit", Quit: true},
	}
}

// bindings are the keys the menu reacts to. It satisfies help.KeyMap so the
// footer stays in sync with what is handled.
type bindings struct {
	up, down, choose, quit key.Binding
}

func newBindings(km *keymap.KeyMap) bindings {
	return bindings{
		up:     km.Up,
		down:   km.Down,
		choose: km.Select,
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (b bindings) ShortHelp() []key.Binding {
	return []key.Binding{b.up, b.down, b.choose, b.quit}
}

func (b bindings) FullHelp() [][]key.Binding {
	return [][]key.Binding{b.ShortHelp()}
}

// View lists the items with a cursor. Number keys jump straight to an item.
type View struct {
	styles *styles.Styles
	keys   bindings
	help   help.Model

	items  []Item
	cursor int
	file   string

	width, height int
	ready         bool
}

// NewView builds the menu. Nil arguments fall back to the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keys:   newBindings(km),
		help:   help.New(),
		items:  defaultItems(),
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and emits ViewChanged or tea.Quit on selection.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.up):
			v.cursor = max(v.cursor-1, 0)
		case key.Matches(msg, v.keys.down):
			v.cursor = min(v.cursor+1, len(v.items)-1)
		case key.Matches(msg, v.keys.choose):
			return v, v.choose(v.cursor)
		case key.Matches(msg, v.keys.quit):
			return v, tea.Quit
		default:
			if n, ok := digit(msg); ok && n >= 1 && n <= len(v.items) {
				v.cursor = n - 1
				return v, v.choose(v.cursor)
			}
		}
	}
	return v, nil
}

func digit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '0' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docqa") + "\n\n")
	b.WriteString(v.styles.Muted.Render("Question answering over a PDF document") + "\n")
	if v.file != "" {
		b.WriteString(v.styles.Label.Render("Document: ") + v.styles.Normal.Render(v.file) + "\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		line := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i != v.cursor {
			b.WriteString("  " + v.styles.Normal.Render(line) + "\n")
			continue
		}
		b.WriteString("> " + v.styles.Selected.Render(line))
		if item.Description != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + v.help.View(v.keys))
	return b.String()
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.help.Width = width
	v.ready = true
}

// SetCurrentFile shows the processed document under the title.
func (v *View) SetCurrentFile(path string) {
	v.file = path
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}
