// Package pdf extracts text from PDF files.
//
// Text is extracted in-process with github.com/ledongthuc/pdf. When the
// poppler pdftotext tool is preferred (it copes better with complex
// layouts), NewWithRunner runs it through a CommandRunner instead.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the only content type handled.
const MIMEType = "application/pdf"

const (
	pdfMagic       = "%PDF-"
	maxTitleLength = 200
)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Normaliser converts PDF bytes into a document.
type Normaliser struct {
	// runner is nil when the in-process extractor is used.
	runner CommandRunner
}

// New creates a normaliser using the in-process extractor.
func New() *Normaliser {
	return &Normaliser{}
}

// NewWithRunner creates a normaliser that shells out to pdftotext.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// NewPdftotext creates a normaliser using the installed pdftotext binary.
func NewPdftotext() (*Normaliser, error) {
	if err := CheckAvailable(); err != nil {
		return nil, err
	}
	return NewWithRunner(execRunner{}), nil
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `pdftotext is part of poppler:
  macOS:  brew install poppler
  Debian: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Normalise extracts the text of a PDF.
// Files that are not PDFs, cannot be parsed or contain no text yield
// domain.ErrUnparseableDocument.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !bytes.HasPrefix(bytes.TrimLeft(raw.Content, "\x00\t\r\n "), []byte(pdfMagic)) {
		return nil, fmt.Errorf("%w: %s is not a PDF file", domain.ErrUnparseableDocument, filepath.Base(raw.URI))
	}

	var (
		text  string
		pages int
		err   error
	)
	if n.runner != nil {
		text, err = n.extractWithTool(ctx, raw.Content)
	} else {
		text, pages, err = extractWithLibrary(raw.Content)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnparseableDocument, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: no text could be extracted from %s", domain.ErrUnparseableDocument, filepath.Base(raw.URI))
	}
	logger.Debug("Extracted %d characters from %s", len(text), filepath.Base(raw.URI))

	metadata := copyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["mime_type"] = MIMEType
	metadata["format"] = "pdf"
	if pages > 0 {
		metadata[domain.MetadataPage] = pages
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:        uuid.New().String(),
			URI:       raw.URI,
			Title:     extractTitle(text, raw.URI),
			Content:   text,
			Metadata:  metadata,
			CreatedAt: time.Now(),
		},
	}, nil
}

// extractWithLibrary parses the PDF in memory. The parser panics on some
// malformed inputs, so panics are turned into errors.
func extractWithLibrary(content []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", 0, fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", 0, fmt.Errorf("read pdf buffer: %w", err)
	}

	return buf.String(), reader.NumPage(), nil
}

// extractWithTool writes the PDF to a temp file and runs pdftotext on it.
func (n *Normaliser) extractWithTool(ctx context.Context, content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "docqa-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	out, err := n.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}

// extractTitle uses the first short non-empty line, falling back to the
// file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Trim(line, "\x00") == "" {
			continue
		}
		if len(line) > maxTitleLength {
			continue
		}
		return line
	}

	name := filepath.Base(uri)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
