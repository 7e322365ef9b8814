package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultDirName is the config directory created under the user's home.
const DefaultDirName = ".docqa"

// DefaultDir returns ~/.docqa.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}

// ConfigStore persists settings to config.toml. Values live in a memory
// store under flat dotted keys ("llm.model"); on disk they are written as
// nested tables so a hand-edited file with an [llm] section loads the same.
type ConfigStore struct {
	*memory.ConfigStore

	// writeMu serialises Set and Save so the file always reflects the
	// last successful write.
	writeMu sync.Mutex
	path    string
}

// NewConfigStore opens configDir/config.toml, creating the directory if
// needed. An empty configDir means ~/.docqa.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &ConfigStore{
		ConfigStore: memory.NewConfigStore(),
		path:        filepath.Join(configDir, "config.toml"),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores value and rewrites the file. If the write fails the previous
// value is restored.
func (s *ConfigStore) Set(key string, value any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev, existed := s.Get(key)
	_ = s.ConfigStore.Set(key, value)

	if err := s.write(); err != nil {
		if existed {
			_ = s.ConfigStore.Set(key, prev)
		} else {
			s.Delete(key)
		}
		return err
	}
	return nil
}

// Save rewrites the file from the current values.
func (s *ConfigStore) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write()
}

func (s *ConfigStore) write() error {
	data, err := toml.Marshal(nestMap(s.Snapshot()))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load replaces the in-memory values with the file's contents. A missing
// file loads as empty.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.Replace(flattenMap(tree, ""))
	return nil
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.path
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(tree map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)
	var walk func(map[string]any, string)
	walk = func(m map[string]any, prefix string) {
		for k, v := range m {
			if prefix != "" {
				k = prefix + "." + k
			}
			if child, ok := v.(map[string]any); ok {
				walk(child, k)
				continue
			}
			flat[k] = v
		}
	}
	walk(tree, prefix)
	return flat
}

// nestMap is the inverse of flattenMap. A key that is both a value and a
// table prefix keeps the value.
func nestMap(flat map[string]any) map[string]any {
	tree := make(map[string]any)

	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := tree
		for _, part := range parts[:len(parts)-1] {
			if node == nil {
				break
			}
			switch child := node[part].(type) {
			case map[string]any:
				node = child
			case nil:
				next := make(map[string]any)
				node[part] = next
				node = next
			default:
				node = nil
			}
		}
		if node != nil {
			node[parts[len(parts)-1]] = value
		}
	}

	return tree
}
