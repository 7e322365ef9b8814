package list

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func testSources() []domain.SourceView {
	return []domain.SourceView{
		{Chunk: 1, Content: "The capital of France is Paris.", Metadata: map[string]string{"file_name": "france.pdf", "position": "0"}},
		{Chunk: 2, Content: strings.Repeat("word ", 50), Metadata: map[string]string{"file_name": "france.pdf"}},
	}
}

func TestNewSourceList(t *testing.T) {
	l := NewSourceList(nil)

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Count())
	assert.Empty(t, l.View())
}

func TestSourceList_CollapsedView(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())

	view := l.View()

	assert.Contains(t, view, "Sources (2)")
	assert.Contains(t, view, "Source chunk 1")
	assert.Contains(t, view, "Source chunk 2")
	assert.Contains(t, view, "The capital of France is Paris.")
	assert.NotContains(t, view, "file_name", "metadata is shown only when expanded")
	assert.Contains(t, view, "...", "long chunks are previewed")
}

func TestSourceList_ExpandedView(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())

	l.Toggle()
	view := l.View()

	assert.True(t, l.Expanded(0))
	assert.Contains(t, view, "file_name: ")
	assert.Contains(t, view, "france.pdf")
	assert.Contains(t, view, "position: ")

	l.Toggle()
	assert.False(t, l.Expanded(0))
}

func TestSourceList_Navigation(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())
	l.MoveDown()
	assert.Equal(t, 1, l.Selected())
	l.MoveDown()
	assert.Equal(t, 1, l.Selected())

	l.Toggle()
	assert.True(t, l.Expanded(1))
	assert.False(t, l.Expanded(0))
}

func TestSourceList_SetSourcesResets(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())
	l.MoveDown()
	l.Toggle()

	l.SetSources(testSources()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.False(t, l.Expanded(0))
	assert.Equal(t, 1, l.Count())
}

func TestSourceList_ToggleEmpty(t *testing.T) {
	l := NewSourceList(nil)

	l.Toggle()

	assert.False(t, l.Expanded(0))
}
