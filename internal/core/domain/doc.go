// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The single ingested PDF and its extracted text
//   - Chunk: A retrievable span of document text with its embedding
//   - AnswerResult: The answer text plus the source chunks shown to the user
//   - AppSettings: Provider, retrieval and storage configuration
//
// It also owns the answer rules that do not depend on any collaborator:
// the fixed not-found message, the relevance fallback heuristic and
// source formatting.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
