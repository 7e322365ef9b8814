// Package vectorstore selects the configured VectorStore backend.
package vectorstore

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultSubdir is where the sqlite backend lives inside the config dir.
const DefaultSubdir = "vectorstore"

// New opens the backend named in settings. configDir is used to place the
// sqlite database when settings.Path is empty.
func New(settings domain.VectorStoreSettings, configDir string) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.VectorStoreSQLite, "":
		path := settings.Path
		if path == "" && configDir != "" {
			path = filepath.Join(configDir, DefaultSubdir)
		}
		store, err := sqlite.NewStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.VectorStoreQdrant:
		store, err := qdrant.NewStore(qdrant.Config{
			Host:       settings.QdrantHost,
			Port:       settings.QdrantPort,
			Collection: settings.Collection,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: vector store backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
