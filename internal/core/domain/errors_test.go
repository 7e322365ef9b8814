package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrUnreadableFile", ErrUnreadableFile},
		{"ErrUnparseableDocument", ErrUnparseableDocument},
		{"ErrEmptyQuestion", ErrEmptyQuestion},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrLLMRequestFailed", ErrLLMRequestFailed},
		{"ErrStoreNotInitialized", ErrStoreNotInitialized},
		{"ErrStorageRead", ErrStorageRead},
		{"ErrStorageWrite", ErrStorageWrite},
		{"ErrEmbeddingMismatch", ErrEmbeddingMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
			assert.NotEmpty(t, UserMessage(tt.err))
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil", nil, ""},
		{"unreadable file", ErrUnreadableFile, ErrorClassInput},
		{"unparseable document", ErrUnparseableDocument, ErrorClassInput},
		{"empty question", ErrEmptyQuestion, ErrorClassInput},
		{"embedding unavailable", ErrEmbeddingUnavailable, ErrorClassProvider},
		{"llm unavailable", ErrLLMUnavailable, ErrorClassProvider},
		{"llm request failed", ErrLLMRequestFailed, ErrorClassProvider},
		{"store not initialised", ErrStoreNotInitialized, ErrorClassStorage},
		{"storage read", ErrStorageRead, ErrorClassStorage},
		{"wrapped storage read", fmt.Errorf("%w: no such table: chunks", ErrStorageRead), ErrorClassStorage},
		{"storage write", ErrStorageWrite, ErrorClassStorage},
		{"embedding mismatch", ErrEmbeddingMismatch, ErrorClassStorage},
		{"wrapped provider", fmt.Errorf("%w: connection refused", ErrLLMUnavailable), ErrorClassProvider},
		{"double wrapped", fmt.Errorf("answer: %w", fmt.Errorf("%w: x", ErrStoreNotInitialized)), ErrorClassStorage},
		{"unknown", errors.New("boom"), ErrorClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyError(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("%w: timeout", ErrLLMUnavailable)))
	assert.True(t, IsRetryable(ErrEmbeddingUnavailable))
	assert.False(t, IsRetryable(ErrStoreNotInitialized))
	assert.False(t, IsRetryable(ErrEmptyQuestion))
	assert.False(t, IsRetryable(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Contains(t, UserMessage(fmt.Errorf("%w: missing", ErrStoreNotInitialized)), "upload a PDF first")
	assert.Equal(t, "Please enter a question.", UserMessage(ErrEmptyQuestion))
	assert.Equal(t, "Error: boom", UserMessage(errors.New("boom")))
	assert.Equal(t, "The stored document could not be read. Please upload the PDF again.",
		UserMessage(fmt.Errorf("%w: disk I/O error", ErrStorageRead)))

	// Provider failures never read like a not-found answer.
	assert.NotContains(t, UserMessage(ErrLLMUnavailable), "could not find")
}
