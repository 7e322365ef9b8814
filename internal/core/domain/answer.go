package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// NotFoundMessage is returned whenever the uploaded document cannot answer
// the question.
const NotFoundMessage = "I could not find relevant information to answer your question " +
	"in the uploaded document. Please make sure your question is related to the content " +
	"of the PDF you uploaded."

const (
	// MaxSourceContentRunes caps the chunk text shown in a SourceView.
	MaxSourceContentRunes = 500

	// SourceEllipsis marks truncated source content.
	SourceEllipsis = "..."

	// shortAnswerRunes bounds the answers the fallback heuristic inspects.
	shortAnswerRunes = 100
)

// AnswerResult is the outcome of answering a question.
// Sources is nil if and only if the document could not answer the question.
type AnswerResult struct {
	Answer  string       `json:"answer"`
	Sources []SourceView `json:"sources"`
}

// SourceView is the display form of one retrieved chunk.
type SourceView struct {
	// Chunk is the 1-based position of the chunk in the retrieval order.
	Chunk int `json:"chunk"`

	// Content is the chunk text, truncated to MaxSourceContentRunes.
	Content string `json:"content"`

	// Metadata is the chunk metadata without the raw source path.
	Metadata map[string]string `json:"metadata"`
}

// NotFoundResult returns the NotFoundInCorpus outcome.
func NotFoundResult() *AnswerResult {
	return &AnswerResult{Answer: NotFoundMessage, Sources: nil}
}

// IsNotFound reports whether the result is the NotFoundInCorpus outcome.
func (r *AnswerResult) IsNotFound() bool {
	return r != nil && r.Sources == nil
}

// IsNotFoundAnswer applies the relevance fallback heuristic to generated
// answer text. The text is lowercased and trimmed, then treated as not found
// if it equals the fixed message, or if it is shorter than 100 characters
// and mentions both "could not find" and "uploaded document".
func IsNotFoundAnswer(answer string) bool {
	normalised := strings.ToLower(strings.TrimSpace(answer))
	if normalised == strings.ToLower(NotFoundMessage) {
		return true
	}
	return utf8.RuneCountInString(normalised) < shortAnswerRunes &&
		strings.Contains(normalised, "could not find") &&
		strings.Contains(normalised, "uploaded document")
}

// FormatSources converts retrieved chunks into SourceViews, preserving order.
func FormatSources(chunks []Chunk) []SourceView {
	sources := make([]SourceView, 0, len(chunks))
	for i, chunk := range chunks {
		sources = append(sources, SourceView{
			Chunk:    i + 1,
			Content:  TruncateContent(strings.TrimSpace(chunk.Content), MaxSourceContentRunes),
			Metadata: displayMetadata(chunk.Metadata),
		})
	}
	return sources
}

// TruncateContent returns the first limit runes of s followed by an
// ellipsis when s is longer than limit runes, and s unchanged otherwise.
func TruncateContent(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + SourceEllipsis
}

func displayMetadata(metadata map[string]any) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if k == MetadataSource {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// SortedMetadataKeys returns the keys of a SourceView's metadata in a
// stable order for display.
func (s SourceView) SortedMetadataKeys() []string {
	keys := make([]string, 0, len(s.Metadata))
	for k := range s.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
