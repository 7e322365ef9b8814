package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

// onePagePDF builds a minimal single-page PDF showing text in Helvetica.
// Object offsets in the xref table are computed so the file is valid.
func onePagePDF(text string) []byte {
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.Nil(t, normaliser.runner)
	assert.Equal(t, []string{"application/pdf"}, normaliser.SupportedMIMETypes())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_NotAPDF(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "/tmp/notes.txt",
		Content: []byte("just some text"),
	}

	result, err := New().Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrUnparseableDocument)
	assert.Contains(t, err.Error(), "notes.txt")
	assert.Nil(t, result)
}

func TestNormalise_TruncatedPDF(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "/tmp/broken.pdf",
		Content: []byte("%PDF-1.4 fake pdf content"),
	}

	result, err := New().Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrUnparseableDocument)
	assert.Nil(t, result)
}

func TestNormalise_OnePageDocument(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/tmp/france.pdf",
		MIMEType: MIMEType,
		Content:  onePagePDF("The capital of France is Paris."),
		Metadata: map[string]any{"size": 512},
	}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "/tmp/france.pdf", doc.URI)
	assert.Contains(t, doc.Content, "Paris")
	assert.Equal(t, 1, doc.Metadata[domain.MetadataPage])
	assert.Equal(t, "pdf", doc.Metadata["format"])
	assert.Equal(t, 512, doc.Metadata["size"])
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestNormalise_WithMockRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("PDF Title\n\nThis is the content of the PDF.\n")}
	normaliser := NewWithRunner(runner)

	raw := &domain.RawDocument{
		URI:      "/path/to/document.pdf",
		MIMEType: MIMEType,
		Content:  []byte("%PDF-1.4 fake pdf content"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
	doc := result.Document
	assert.Equal(t, "PDF Title", doc.Title)
	assert.Contains(t, doc.Content, "This is the content of the PDF.")
	assert.Equal(t, "application/pdf", doc.Metadata["mime_type"])
	assert.NotContains(t, doc.Metadata, domain.MetadataPage)
}

func TestNormalise_RunnerError(t *testing.T) {
	normaliser := NewWithRunner(&mockRunner{err: errors.New("pdftotext crashed")})
	raw := &domain.RawDocument{URI: "/a.pdf", Content: []byte("%PDF-1.4")}

	result, err := normaliser.Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrUnparseableDocument)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, result)
}

func TestNormalise_NoText(t *testing.T) {
	normaliser := NewWithRunner(&mockRunner{output: []byte("  \n\f\n")})
	raw := &domain.RawDocument{URI: "/scan.pdf", Content: []byte("%PDF-1.7")}

	_, err := normaliser.Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrUnparseableDocument)
	assert.Contains(t, err.Error(), "no text")
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first line as title", "Document Title\n\nSome content here.", "/doc.pdf", "Document Title"},
		{"skip empty lines", "\n\n\nActual Title\nContent", "/doc.pdf", "Actual Title"},
		{"fallback to filename", "", "/path/to/my_document.pdf", "my document"},
		{"skip very long first line", string(make([]byte, 250)) + "\nShort Title\nContent", "/doc.pdf", "Short Title"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestCopyMetadata(t *testing.T) {
	assert.Nil(t, copyMetadata(nil))

	src := map[string]any{"key1": "value1", "key2": 42}
	dst := copyMetadata(src)
	assert.Equal(t, src, dst)

	dst["key3"] = true
	assert.NotContains(t, src, "key3")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
	if err := CheckAvailable(); err != nil {
		assert.ErrorIs(t, err, ErrPDFToolNotFound)
	}
}
