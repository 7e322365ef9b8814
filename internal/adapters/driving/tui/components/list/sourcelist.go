// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

const previewRunes = 80

// SourceList displays the source chunks of an answer. Each chunk shows a
// one-line preview until it is expanded.
type SourceList struct {
	sources  []domain.SourceView
	expanded map[int]bool
	selected int
	styles   *styles.Styles
	width    int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &SourceList{
		expanded: make(map[int]bool),
		styles:   s,
		width:    80,
	}
}

// View renders the source list.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(l.sources)+1)
	blocks = append(blocks, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))))
	for i := range l.sources {
		blocks = append(blocks, l.renderSource(i))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (l *SourceList) renderSource(i int) string {
	src := l.sources[i]

	marker := "▸"
	if l.expanded[i] {
		marker = "▾"
	}
	header := fmt.Sprintf("%s Source chunk %d", marker, src.Chunk)
	if i == l.selected {
		header = l.styles.Selected.Render(header)
	} else {
		header = l.styles.SourceHeader.Render(header)
	}

	if !l.expanded[i] {
		preview := strings.Join(strings.Fields(src.Content), " ")
		return header + "\n" + l.styles.Muted.Render("  "+domain.TruncateContent(preview, previewRunes))
	}

	lines := []string{header, l.styles.SourceBody.Width(max(l.width-4, 20)).Render(src.Content)}
	for _, k := range src.SortedMetadataKeys() {
		lines = append(lines, l.styles.MetadataKey.Render(k+": ")+l.styles.Normal.Render(src.Metadata[k]))
	}
	return strings.Join(lines, "\n")
}

// SetSources replaces the list contents and collapses every chunk.
func (l *SourceList) SetSources(sources []domain.SourceView) {
	l.sources = sources
	l.expanded = make(map[int]bool)
	l.selected = 0
}

// Sources returns the current sources.
func (l *SourceList) Sources() []domain.SourceView {
	return l.sources
}

// Toggle expands or collapses the selected chunk.
func (l *SourceList) Toggle() {
	if len(l.sources) == 0 {
		return
	}
	l.expanded[l.selected] = !l.expanded[l.selected]
}

// Expanded reports whether chunk i is expanded.
func (l *SourceList) Expanded(i int) bool {
	return l.expanded[i]
}

// Selected returns the index of the selected chunk.
func (l *SourceList) Selected() int {
	return l.selected
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetWidth sets the component width.
func (l *SourceList) SetWidth(width int) {
	l.width = width
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}
