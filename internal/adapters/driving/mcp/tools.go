package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"absolute path of the PDF file to ingest"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	Processed  bool   `json:"processed"`
	DocumentID string `json:"document_id,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
	Message    string `json:"message"`
}

// AskInput is the input schema for the ask_document tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"question to answer from the ingested document"`
}

// AskOutput is the output schema for the ask_document tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Found   bool           `json:"found"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one retrieved chunk backing an answer.
type SourceOutput struct {
	Chunk    int               `json:"chunk"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Ingest a PDF so that questions can be asked about it. Replaces any previous document.",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_document",
		Description: "Answer a question using only the ingested PDF. Returns the answer and the chunks it came from.",
	}, s.handleAsk)
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	result, err := s.ports.Session.Upload(ctx, input.Path)
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}

	if !result.Processed || result.Report == nil {
		return nil, IngestOutput{Message: "Document already processed"}, nil
	}

	return nil, IngestOutput{
		Processed:  true,
		DocumentID: result.Report.DocumentID,
		FileName:   result.Report.FileName,
		Chunks:     result.Report.Chunks,
		Message:    "Document processed successfully",
	}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Session.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:  result.Answer,
		Found:   !result.IsNotFound(),
		Sources: make([]SourceOutput, len(result.Sources)),
	}
	for i, src := range result.Sources {
		output.Sources[i] = SourceOutput{
			Chunk:    src.Chunk,
			Content:  src.Content,
			Metadata: src.Metadata,
		}
	}
	return nil, output, nil
}

// toolError replaces err with the line shown to users, keeping the
// sentinel for errors.Is.
func toolError(err error) error {
	return &userError{msg: domain.UserMessage(err), err: err}
}

type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }

func (e *userError) Unwrap() error { return e.err }
