package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerEngine answers questions about the ingested document.
type AnswerEngine interface {
	// Answer retrieves relevant chunks and asks the LLM to answer from them.
	// A question the document cannot answer is a successful result whose
	// Sources is nil.
	//
	// Errors wrap domain.ErrStoreNotInitialized, domain.ErrEmbeddingMismatch,
	// domain.ErrEmbeddingUnavailable, domain.ErrLLMUnavailable or
	// domain.ErrLLMRequestFailed.
	Answer(ctx context.Context, question string) (*domain.AnswerResult, error)
}
