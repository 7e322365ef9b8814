package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Normaliser extracts plain text from an uploaded file.
type Normaliser interface {
	SupportedMIMETypes() []string

	// Normalise fills Document.Content from raw. It returns
	// domain.ErrUnparseableDocument when the file has no extractable text.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult wraps the extracted document. Splitting into chunks
// happens later, in the post-processor pipeline.
type NormaliseResult struct {
	Document domain.Document
}
