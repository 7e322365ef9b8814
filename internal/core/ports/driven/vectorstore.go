package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorStore persists the chunks of the ingested document together with
// their embeddings and answers nearest-neighbour queries.
//
// The store holds a single document. Replace swaps the whole contents in
// one step so readers never observe a partially written store.
type VectorStore interface {
	// Replace discards any previous contents and stores doc with its chunks.
	// Every chunk must carry an embedding and all embeddings share one size.
	// embeddingModel is recorded so queries can be checked against it.
	Replace(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, embeddingModel string) error

	// Search returns at most k chunks ordered by descending similarity.
	// Returns domain.ErrStoreNotInitialized when nothing has been ingested.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Info describes the current contents.
	// Returns domain.ErrStoreNotInitialized when nothing has been ingested.
	Info(ctx context.Context) (*domain.IndexInfo, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk, including its content and metadata.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score.
	Similarity float64
}
