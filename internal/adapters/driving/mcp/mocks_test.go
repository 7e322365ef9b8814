package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// mockSession is a mock implementation of driving.Session.
type mockSession struct {
	upload    *driving.UploadResult
	answer    *domain.AnswerResult
	err       error
	file      string
	last      *domain.AnswerResult
	gotPath   string
	questions []string
}

func (m *mockSession) Upload(_ context.Context, path string) (*driving.UploadResult, error) {
	m.gotPath = path
	if m.err != nil {
		return nil, m.err
	}
	return m.upload, nil
}

func (m *mockSession) Ask(_ context.Context, question string) (*domain.AnswerResult, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockSession) LastResult() *domain.AnswerResult { return m.last }

func (m *mockSession) CurrentFile() string { return m.file }

func parisResult() *domain.AnswerResult {
	return &domain.AnswerResult{
		Answer: "The capital of France is Paris.",
		Sources: []domain.SourceView{{
			Chunk:    1,
			Content:  "The capital of France is Paris.",
			Metadata: map[string]string{"file_name": "france.pdf", "position": "0"},
		}},
	}
}
