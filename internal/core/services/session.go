package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.Session = (*SessionService)(nil)

// SessionService holds the state of one interactive user: the file last
// processed and the last answer. Upload and Ask are serialised so front
// ends serving concurrent requests run one operation at a time.
type SessionService struct {
	mu       sync.Mutex
	ingestor driving.Ingestor
	engine   driving.AnswerEngine

	currentFile    string
	currentModTime time.Time
	lastResult     *domain.AnswerResult
}

// NewSessionService creates a session over an ingestor and an answer engine.
func NewSessionService(ingestor driving.Ingestor, engine driving.AnswerEngine) *SessionService {
	return &SessionService{
		ingestor: ingestor,
		engine:   engine,
	}
}

// Upload ingests path unless it is the file already processed and has not
// changed since. Processing a new file clears the last answer; a skipped
// upload keeps it.
func (s *SessionService) Upload(ctx context.Context, path string) (*driving.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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

	if abs == s.currentFile && info.ModTime().Equal(s.currentModTime) {
		logger.Debug("%s is already processed", abs)
		return &driving.UploadResult{Processed: false}, nil
	}

	s.lastResult = nil

	report, err := s.ingestor.Ingest(ctx, abs)
	if err != nil {
		return nil, err
	}

	s.currentFile = abs
	s.currentModTime = info.ModTime()
	return &driving.UploadResult{Processed: true, Report: report}, nil
}

// Ask answers question and remembers the result. Failures clear the
// remembered result.
func (s *SessionService) Ask(ctx context.Context, question string) (*domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastResult = nil
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}

	result, err := s.engine.Answer(ctx, question)
	if err != nil {
		return nil, err
	}
	s.lastResult = result
	return result, nil
}

// LastResult returns the most recent answer, or nil.
func (s *SessionService) LastResult() *domain.AnswerResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// CurrentFile returns the path of the last processed file, or "".
func (s *SessionService) CurrentFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFile
}
