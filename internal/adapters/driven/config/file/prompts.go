package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults/*.txt defaults/README.md
var defaultsFS embed.FS

const promptExt = ".txt"

// builtin maps prompt names to their embedded templates with the
// not-found sentence filled in.
var builtin = loadBuiltin()

func loadBuiltin() map[string]string {
	entries, err := fs.Glob(defaultsFS, "defaults/*"+promptExt)
	if err != nil {
		panic(err)
	}
	out := make(map[string]string, len(entries))
	for _, path := range entries {
		data, err := defaultsFS.ReadFile(path)
		if err != nil {
			panic(err)
		}
		name := strings.TrimSuffix(filepath.Base(path), promptExt)
		text := strings.ReplaceAll(string(data), "{not_found}", domain.NotFoundMessage)
		out[name] = strings.TrimSpace(text)
	}
	return out
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	prompt, ok := builtin[name]
	return prompt, ok
}

// PromptStore reads prompt templates from a directory the user can edit.
// The directory is seeded with the built-in templates on first use, and a
// template whose file is missing or unreadable falls back to the built-in.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore returns a store over promptDir, or ~/.docqa/prompts when
// promptDir is empty. Nothing touches disk until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}
	return &PromptStore{dir: promptDir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template. Results are cached until Reload.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		fallback, ok := builtin[name]
		if !ok {
			if s.seedErr != nil {
				err = errors.Join(err, s.seedErr)
			}
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		return fallback, nil
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

// Reload forgets cached templates.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed writes any built-in template or README the directory lacks.
// Existing files are never overwritten.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	files := map[string][]byte{}
	for name, text := range builtin {
		files[name+promptExt] = []byte(text + "\n")
	}
	readme, err := defaultsFS.ReadFile("defaults/README.md")
	if err != nil {
		return err
	}
	files["README.md"] = readme

	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, content, 0600); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
	}
	return nil
}
