package driven

import "context"

// EmbeddingService turns chunk text and questions into vectors. Chunks and
// the questions asked against them must go through the same model, so the
// vector store records ModelName alongside the vectors.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the length of every vector this service returns.
	Dimensions() int
	ModelName() string

	// Ping makes the cheapest request that proves the provider is reachable
	// and the credentials work.
	Ping(ctx context.Context) error
	Close() error
}
