package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// pdfMIMEType is the content type handed to the normaliser.
const pdfMIMEType = "application/pdf"

// IngestConfig controls how chunks are embedded.
type IngestConfig struct {
	// BatchSize is the number of chunks per embedding request.
	BatchSize int

	// RequestsPerSecond limits embedding requests. Zero means unlimited.
	RequestsPerSecond float64
}

// IngestService loads a PDF, splits it, embeds the chunks and replaces the
// vector store contents with them.
type IngestService struct {
	normaliser driven.Normaliser
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	batchSize  int
	limiter    *rate.Limiter
}

// NewIngestService creates an ingest service. embedder may be nil, in which
// case every ingestion fails with domain.ErrEmbeddingUnavailable.
func NewIngestService(
	normaliser driven.Normaliser,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	cfg IngestConfig,
) *IngestService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &IngestService{
		normaliser: normaliser,
		pipeline:   pipeline,
		embedder:   embedder,
		store:      store,
		batchSize:  cfg.BatchSize,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Ingest replaces the store contents with the document at path.
func (s *IngestService) Ingest(ctx context.Context, path string) (*domain.IngestReport, error) {
	start := time.Now()
	logger.Section("Ingest")

	raw, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Read %s (%d bytes)", raw.URI, len(raw.Content))

	result, err := s.normaliser.Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnparseableDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnparseableDocument, err)
	}
	doc := result.Document
	logger.Elapsed("extract", start)

	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("splitting document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no text chunks in %s", domain.ErrUnparseableDocument, filepath.Base(raw.URI))
	}
	logger.Debug("Split into %d chunks", len(chunks))

	if err := s.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}
	logger.Elapsed("embed", start)

	model := s.embedder.ModelName()
	if err := s.store.Replace(ctx, &doc, chunks, model); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageWrite, err)
	}

	report := &domain.IngestReport{
		DocumentID:     doc.ID,
		FileName:       filepath.Base(raw.URI),
		Chunks:         len(chunks),
		EmbeddingModel: model,
		Duration:       time.Since(start),
	}
	logger.Info("Ingested %s: %d chunks in %s", report.FileName, report.Chunks, report.Duration.Round(time.Millisecond))
	return report, nil
}

// embedChunks fills in the Embedding of every chunk, one rate-limited
// batch at a time.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if s.embedder == nil {
		return fmt.Errorf("%w: no embedding provider is configured", domain.ErrEmbeddingUnavailable)
	}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: expected %d embeddings, got %d",
				domain.ErrEmbeddingUnavailable, len(texts), len(vectors))
		}
		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
		}
		logger.Debug("Embedded chunks %d-%d of %d", start+1, end, len(chunks))
	}
	return nil
}

// readDocument loads the file at path as a RawDocument.
func readDocument(path string) (*domain.RawDocument, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: no file given", domain.ErrUnreadableFile)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnreadableFile, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnreadableFile, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrUnreadableFile, abs)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnreadableFile, err)
	}

	return &domain.RawDocument{
		URI:      abs,
		MIMEType: pdfMIMEType,
		Content:  content,
		Metadata: map[string]any{
			"size":     info.Size(),
			"modified": info.ModTime().UTC().Format(time.RFC3339),
		},
	}, nil
}
