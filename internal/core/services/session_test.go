package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestSession() (*SessionService, *mockIngestor, *mockAnswerEngine) {
	ingestor := &mockIngestor{}
	engine := &mockAnswerEngine{result: &domain.AnswerResult{
		Answer:  "Paris.",
		Sources: []domain.SourceView{{Chunk: 1, Content: "Paris is the capital of France."}},
	}}
	return NewSessionService(ingestor, engine), ingestor, engine
}

func TestSession_UploadProcessesNewFile(t *testing.T) {
	session, ingestor, _ := newTestSession()
	path := writeTempPDF(t, "a.pdf", "%PDF-1.4")

	result, err := session.Upload(context.Background(), path)

	require.NoError(t, err)
	assert.True(t, result.Processed)
	require.NotNil(t, result.Report)
	assert.Equal(t, 2, result.Report.Chunks)
	assert.Equal(t, []string{path}, ingestor.paths)
	assert.Equal(t, path, session.CurrentFile())
}

func TestSession_UploadSameFileIsSkipped(t *testing.T) {
	session, ingestor, _ := newTestSession()
	path := writeTempPDF(t, "a.pdf", "%PDF-1.4")

	_, err := session.Upload(context.Background(), path)
	require.NoError(t, err)
	result, err := session.Upload(context.Background(), path)

	require.NoError(t, err)
	assert.False(t, result.Processed)
	assert.Nil(t, result.Report)
	assert.Equal(t, 1, ingestor.calls)
}

func TestSession_UploadChangedFileIsReprocessed(t *testing.T) {
	session, ingestor, _ := newTestSession()
	path := writeTempPDF(t, "a.pdf", "%PDF-1.4")

	_, err := session.Upload(context.Background(), path)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	result, err := session.Upload(context.Background(), path)

	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, 2, ingestor.calls)
}

func TestSession_UploadDifferentFile(t *testing.T) {
	session, ingestor, _ := newTestSession()
	first := writeTempPDF(t, "a.pdf", "%PDF-1.4")
	second := writeTempPDF(t, "b.pdf", "%PDF-1.4")

	_, err := session.Upload(context.Background(), first)
	require.NoError(t, err)
	_, err = session.Upload(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, 2, ingestor.calls)
	assert.Equal(t, second, session.CurrentFile())
}

func TestSession_UploadErrors(t *testing.T) {
	t.Run("blank path", func(t *testing.T) {
		session, ingestor, _ := newTestSession()

		_, err := session.Upload(context.Background(), " ")

		assert.ErrorIs(t, err, domain.ErrUnreadableFile)
		assert.Equal(t, 0, ingestor.calls)
	})

	t.Run("missing file", func(t *testing.T) {
		session, ingestor, _ := newTestSession()

		_, err := session.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))

		assert.ErrorIs(t, err, domain.ErrUnreadableFile)
		assert.Equal(t, 0, ingestor.calls)
	})

	t.Run("failed ingestion keeps previous file", func(t *testing.T) {
		session, ingestor, _ := newTestSession()
		good := writeTempPDF(t, "good.pdf", "%PDF-1.4")
		bad := writeTempPDF(t, "bad.pdf", "junk")

		_, err := session.Upload(context.Background(), good)
		require.NoError(t, err)
		ingestor.err = domain.ErrUnparseableDocument
		_, err = session.Upload(context.Background(), bad)

		assert.ErrorIs(t, err, domain.ErrUnparseableDocument)
		assert.Equal(t, good, session.CurrentFile())
	})

	t.Run("failed ingestion is retried", func(t *testing.T) {
		session, ingestor, _ := newTestSession()
		path := writeTempPDF(t, "a.pdf", "%PDF-1.4")
		ingestor.err = errors.New("transient")

		_, err := session.Upload(context.Background(), path)
		require.Error(t, err)
		ingestor.err = nil
		result, err := session.Upload(context.Background(), path)

		require.NoError(t, err)
		assert.True(t, result.Processed)
	})
}

func TestSession_UploadClearsLastResult(t *testing.T) {
	session, _, _ := newTestSession()
	path := writeTempPDF(t, "a.pdf", "%PDF-1.4")

	_, err := session.Ask(context.Background(), "What is the capital?")
	require.NoError(t, err)
	require.NotNil(t, session.LastResult())

	_, err = session.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, session.LastResult())
}

func TestSession_SkippedUploadKeepsLastResult(t *testing.T) {
	session, ingestor, _ := newTestSession()
	path := writeTempPDF(t, "a.pdf", "%PDF-1.4")

	_, err := session.Upload(context.Background(), path)
	require.NoError(t, err)
	result, err := session.Ask(context.Background(), "What is the capital?")
	require.NoError(t, err)

	upload, err := session.Upload(context.Background(), path)

	require.NoError(t, err)
	assert.False(t, upload.Processed)
	assert.Same(t, result, session.LastResult())
	assert.Equal(t, 1, ingestor.calls)
}

func TestSession_Ask(t *testing.T) {
	session, _, engine := newTestSession()

	result, err := session.Ask(context.Background(), "What is the capital of France?")

	require.NoError(t, err)
	assert.Equal(t, "Paris.", result.Answer)
	assert.Same(t, result, session.LastResult())
	assert.Equal(t, 1, engine.calls)
}

func TestSession_AskEmptyQuestion(t *testing.T) {
	session, _, engine := newTestSession()

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := session.Ask(context.Background(), question)
		assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
	}
	assert.Equal(t, 0, engine.calls)
}

func TestSession_AskErrorClearsResult(t *testing.T) {
	session, _, engine := newTestSession()

	_, err := session.Ask(context.Background(), "first")
	require.NoError(t, err)
	engine.err = domain.ErrLLMUnavailable
	engine.result = nil

	_, err = session.Ask(context.Background(), "second")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Nil(t, session.LastResult())
}

func TestSession_EmptyState(t *testing.T) {
	session, _, _ := newTestSession()

	assert.Empty(t, session.CurrentFile())
	assert.Nil(t, session.LastResult())
}
