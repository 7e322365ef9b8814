package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// RetrievalChain produces answer text for a question from the chunks
// retrieved for it. The concrete chain is chosen once at configuration time.
type RetrievalChain interface {
	// Run returns the generated answer text.
	Run(ctx context.Context, question string, docs []domain.Chunk) (string, error)

	// Name identifies the chain for logging.
	Name() string
}
