// Package metadata stamps every chunk with the metadata shown next to an
// answer's sources.
package metadata

import (
	"context"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Processor copies document identity onto each chunk.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a metadata processor.
func New() *Processor {
	return &Processor{}
}

// Name is the key this processor is registered under in pipeline config.
const Name = "metadata"

// Name returns Name.
func (p *Processor) Name() string {
	return Name
}

// Process sets source, file_name, document_id and position on each chunk,
// plus the page count when the loader reported one. Existing keys are kept.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		m := chunks[i].Metadata
		setDefault(m, domain.MetadataSource, doc.URI)
		if doc.URI != "" {
			setDefault(m, domain.MetadataFileName, filepath.Base(doc.URI))
		}
		setDefault(m, domain.MetadataDocumentID, doc.ID)
		setDefault(m, domain.MetadataPosition, chunks[i].Position)
		if pages, ok := doc.Metadata[domain.MetadataPage]; ok {
			setDefault(m, domain.MetadataPage, pages)
		}
	}
	return chunks, nil
}

func setDefault(m map[string]any, key string, value any) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}
