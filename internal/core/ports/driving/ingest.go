package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Ingestor turns a PDF into the current contents of the vector store.
type Ingestor interface {
	// Ingest loads, splits, embeds and stores the document at path,
	// replacing whatever was ingested before.
	//
	// Errors wrap domain.ErrUnreadableFile, domain.ErrUnparseableDocument,
	// domain.ErrEmbeddingUnavailable or domain.ErrStorageWrite.
	Ingest(ctx context.Context, path string) (*domain.IngestReport, error)
}
