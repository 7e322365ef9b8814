package domain

import "time"

// Metadata keys attached to every chunk at ingestion.
const (
	// MetadataSource holds the raw file path. It is never shown to users.
	MetadataSource = "source"

	// MetadataFileName holds the base name of the ingested file.
	MetadataFileName = "file_name"

	// MetadataDocumentID links the chunk to its Document.
	MetadataDocumentID = "document_id"

	// MetadataPosition is the 0-based chunk position within the document.
	MetadataPosition = "position"

	// MetadataPage is the page count reported by the PDF loader.
	MetadataPage = "pages"
)

// Document represents the ingested document.
// It is the canonical representation after PDF text extraction.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the absolute path of the ingested file.
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs from the loader.
	Metadata map[string]any

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Chunks are immutable once ingested.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation used for similarity search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// IndexInfo describes what is currently held by the vector store.
type IndexInfo struct {
	// Document is the ingested document (Content may be empty when loaded
	// from a backend that does not keep the full text).
	Document Document

	// EmbeddingModel is the model that produced the stored vectors.
	EmbeddingModel string

	// Dimensions is the vector size of the stored embeddings.
	Dimensions int

	// ChunkCount is the number of stored chunks.
	ChunkCount int
}

// IngestReport summarises a completed ingestion.
type IngestReport struct {
	DocumentID     string        `json:"document_id"`
	FileName       string        `json:"file_name"`
	Chunks         int           `json:"chunks"`
	EmbeddingModel string        `json:"embedding_model"`
	Duration       time.Duration `json:"duration"`
}

// RawDocument is the unparsed file handed to a Normaliser.
type RawDocument struct {
	// URI is the absolute path of the file.
	URI string

	// MIMEType is the detected content type.
	MIMEType string

	// Content is the file bytes.
	Content []byte

	// Metadata contains file-level attributes (size, modification time).
	Metadata map[string]any
}
