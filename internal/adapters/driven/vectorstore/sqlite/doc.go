// Package sqlite provides the default on-disk vector store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Embeddings are stored as little-endian
// float32 blobs next to the chunk text, and similarity search is a brute-force
// cosine scan. That is fast enough for the chunks of a single PDF.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docqa/vectorstore/vectors.db
//
// # Thread Safety
//
// All operations are thread-safe. Replace runs in a single transaction and the
// database runs in WAL mode, so a concurrent Search sees either the old or the
// new document, never a mix.
package sqlite
