// Package chunker provides a recursive character text splitting processor.
//
// Text is split on the first separator that occurs in it (paragraph break,
// then line break, then space, then individual characters). Pieces that are
// still longer than the chunk size are split again with the next separator.
// Small pieces are merged back together up to the chunk size, and
// consecutive chunks share up to the configured overlap.
// Lengths are measured in characters (runes), not bytes.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 2000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator list. An empty string separator
// splits into single characters and should come last.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = separators
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name is the key this processor is registered under in pipeline config.
const Name = "chunker"

// Name returns Name.
func (p *Processor) Name() string {
	return Name
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	texts := p.Split(doc.Content)
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    text,
			Position:   i,
			Metadata:   make(map[string]any),
		})
	}

	return chunks, nil
}

// Split returns the chunk texts for content.
func (p *Processor) Split(content string) []string {
	return p.splitText(content, p.separators)
}

func (p *Processor) splitText(text string, separators []string) []string {
	separator, remaining := pickSeparator(text, separators)
	pieces := splitOn(text, separator)

	var (
		out  []string
		good []string
	)
	for _, piece := range pieces {
		if runeLen(piece) < p.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, p.merge(good, separator)...)
			good = nil
		}
		if len(remaining) == 0 {
			out = append(out, piece)
			continue
		}
		out = append(out, p.splitText(piece, remaining)...)
	}
	if len(good) > 0 {
		out = append(out, p.merge(good, separator)...)
	}
	return out
}

// merge joins small pieces into chunks no longer than chunkSize, carrying
// up to overlap characters of trailing pieces into the next chunk.
func (p *Processor) merge(pieces []string, separator string) []string {
	sepLen := runeLen(separator)

	var (
		out     []string
		current []string
		total   int
	)
	joinCost := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n+joinCost() > p.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
				out = append(out, chunk)
			}
			for len(current) > 0 && (total > p.overlap || total+n+joinCost() > p.chunkSize) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}

	if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
		out = append(out, chunk)
	}
	return out
}

// pickSeparator returns the first separator present in text and the
// separators after it.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

func splitOn(text, separator string) []string {
	var pieces []string
	if separator == "" {
		pieces = make([]string, 0, runeLen(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}
	for _, piece := range strings.Split(text, separator) {
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
