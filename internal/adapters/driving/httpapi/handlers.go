package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// uploadField is the multipart field carrying the PDF.
const uploadField = "file"

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Message string `json:"message"`
	driving.UploadResult
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Class     string `json:"class"`
	Retryable bool   `json:"retryable"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, fmt.Errorf("%w: multipart field %q: %v", domain.ErrInvalidInput, uploadField, err))
		return
	}
	defer file.Close()

	path, err := s.saveUpload(header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.session.Upload(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Document already processed"
	if result.Processed {
		message = "Document processed successfully"
	}
	writeJSON(w, http.StatusOK, UploadResponse{Message: message, UploadResult: *result})
}

// saveUpload writes the uploaded file into the upload directory under its
// base name. The file is written beside its target and renamed into place,
// so a failed upload leaves an earlier file of the same name intact.
func (s *Server) saveUpload(name string, src io.Reader) (string, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "", fmt.Errorf("%w: upload has no file name", domain.ErrInvalidInput)
	}

	dir := s.cfg.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	path := filepath.Join(dir, name)
	dst, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	tmp := dst.Name()
	defer func() {
		if tmp != "" {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrInvalidInput, tooLarge.Limit)
		}
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("move upload file: %w", err)
	}
	tmp = ""

	logger.Debug("Saved upload %s", path)
	return path, nil
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: request body: %v", domain.ErrInvalidInput, err))
		return
	}

	result, err := s.session.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	result := s.session.LastResult()
	if result == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: "No question has been answered yet.",
			Class: string(domain.ErrorClassInput),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	file := s.session.CurrentFile()
	if file == "" {
		file = "none"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML(filepath.Base(file)))
}

// statusFor maps an error class to an HTTP status.
func statusFor(err error) int {
	switch domain.ClassifyError(err) {
	case domain.ErrorClassInput:
		return http.StatusBadRequest
	case domain.ErrorClassStorage:
		if errors.Is(err, domain.ErrStorageWrite) || errors.Is(err, domain.ErrStorageRead) {
			return http.StatusInternalServerError
		}
		return http.StatusConflict
	case domain.ErrorClassProvider:
		if errors.Is(err, domain.ErrLLMRequestFailed) {
			return http.StatusBadGateway
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%v", err)
	} else {
		logger.Debug("request rejected: %v", err)
	}
	writeJSON(w, status, ErrorResponse{
		Error:     domain.UserMessage(err),
		Class:     string(domain.ClassifyError(err)),
		Retryable: domain.IsRetryable(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}

func indexHTML(file string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>docqa</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 720px; margin: 48px auto; color: #333F50; }
        form { margin-bottom: 24px; }
        p { color: #7B8088; }
    </style>
</head>
<body>
    <h1>docqa</h1>
    <p>Current document: %s</p>
    <form action="/api/upload" method="post" enctype="multipart/form-data">
        <input type="file" name="file" accept="application/pdf">
        <button type="submit">Upload</button>
    </form>
    <p>Ask with <code>POST /api/ask</code> and a JSON body <code>{"question": "..."}</code>.</p>
</body>
</html>`, html.EscapeString(file))
}
