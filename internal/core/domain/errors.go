package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors, which adapters wrap
// with one of these sentinels using fmt.Errorf("%w: ...").
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// Input errors.

	// ErrUnreadableFile indicates the document path is missing or unreadable.
	ErrUnreadableFile = errors.New("file is missing or unreadable")

	// ErrUnparseableDocument indicates the file is not a PDF or yields no text.
	ErrUnparseableDocument = errors.New("document could not be parsed")

	// ErrEmptyQuestion indicates the question was blank.
	ErrEmptyQuestion = errors.New("question is empty")

	// Provider errors.

	// ErrEmbeddingUnavailable indicates the embedding provider is not
	// configured, unreachable or returned an error.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM is not configured, unreachable
	// or did not answer in time.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrLLMRequestFailed indicates the LLM provider rejected or failed the request.
	ErrLLMRequestFailed = errors.New("LLM request failed")

	// Storage errors.

	// ErrStoreNotInitialized indicates no document has been ingested yet.
	ErrStoreNotInitialized = errors.New("vector store not initialised")

	// ErrStorageRead indicates the vector store exists but could not be
	// read, e.g. a corrupt database or an unreachable Qdrant.
	ErrStorageRead = errors.New("vector store read failed")

	// ErrStorageWrite indicates the vector store could not be written.
	ErrStorageWrite = errors.New("vector store write failed")

	// ErrEmbeddingMismatch indicates the stored vectors were produced by a
	// different embedding model than the one configured.
	ErrEmbeddingMismatch = errors.New("embedding model does not match stored vectors")
)

// ErrorClass groups errors by how the user can recover from them.
type ErrorClass string

// Error classes.
const (
	// ErrorClassInput is user-correctable and shown as a warning.
	ErrorClassInput ErrorClass = "input"

	// ErrorClassProvider is recoverable by retrying.
	ErrorClassProvider ErrorClass = "provider"

	// ErrorClassStorage requires ingesting a document first.
	ErrorClassStorage ErrorClass = "storage"

	// ErrorClassUnknown is anything else.
	ErrorClassUnknown ErrorClass = "unknown"
)

// ClassifyError returns the class of err.
func ClassifyError(err error) ErrorClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnreadableFile),
		errors.Is(err, ErrUnparseableDocument),
		errors.Is(err, ErrEmptyQuestion),
		errors.Is(err, ErrInvalidInput):
		return ErrorClassInput
	case errors.Is(err, ErrEmbeddingUnavailable),
		errors.Is(err, ErrLLMUnavailable),
		errors.Is(err, ErrLLMRequestFailed):
		return ErrorClassProvider
	case errors.Is(err, ErrStoreNotInitialized),
		errors.Is(err, ErrStorageRead),
		errors.Is(err, ErrStorageWrite),
		errors.Is(err, ErrEmbeddingMismatch):
		return ErrorClassStorage
	default:
		return ErrorClassUnknown
	}
}

// IsRetryable reports whether repeating the operation may succeed.
func IsRetryable(err error) bool {
	return ClassifyError(err) == ErrorClassProvider
}

// UserMessage returns the single human-readable line shown for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuestion):
		return "Please enter a question."
	case errors.Is(err, ErrUnreadableFile):
		return "The selected file could not be read. Please choose a PDF file."
	case errors.Is(err, ErrUnparseableDocument):
		return "The file could not be processed as a PDF. Please upload a text-based PDF."
	case errors.Is(err, ErrEmbeddingUnavailable):
		return "The embedding service is unavailable. Please check its settings and try again."
	case errors.Is(err, ErrLLMUnavailable):
		return "The language model is unavailable or timed out. Please try again."
	case errors.Is(err, ErrLLMRequestFailed):
		return "The language model returned an error. Please try again."
	case errors.Is(err, ErrStoreNotInitialized):
		return "No document has been processed yet. Please upload a PDF first."
	case errors.Is(err, ErrEmbeddingMismatch):
		return "The stored document was indexed with a different embedding model. Please upload the PDF again."
	case errors.Is(err, ErrStorageWrite):
		return "The document could not be stored. Please upload the PDF again."
	case errors.Is(err, ErrStorageRead):
		return "The stored document could not be read. Please upload the PDF again."
	default:
		return "Error: " + err.Error()
	}
}
