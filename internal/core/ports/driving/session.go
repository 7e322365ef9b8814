package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Session is the interactive front-end contract shared by the TUI, HTTP and
// MCP adapters. It remembers the last processed file and the last answer.
type Session interface {
	// Upload ingests path unless it is the file already processed.
	// It clears the last answer and reports whether ingestion ran.
	Upload(ctx context.Context, path string) (*UploadResult, error)

	// Ask answers a question. A blank question returns
	// domain.ErrEmptyQuestion without calling the answer engine.
	Ask(ctx context.Context, question string) (*domain.AnswerResult, error)

	// LastResult returns the most recent answer, or nil.
	LastResult() *domain.AnswerResult

	// CurrentFile returns the path of the last processed file, or "".
	CurrentFile() string
}

// UploadResult reports the outcome of Session.Upload.
type UploadResult struct {
	// Processed is false when the file had already been ingested.
	Processed bool `json:"processed"`

	// Report is set when Processed is true.
	Report *domain.IngestReport `json:"report,omitempty"`
}
