// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser: Extracts text from an uploaded PDF
//   - PostProcessor: Splits document text into chunks
//   - EmbeddingService: Generates vector embeddings for chunks and questions
//   - VectorStore: Persists chunk vectors and answers similarity queries
//   - LLMService: Generates grounded answers
//   - RetrievalChain: Turns a question and retrieved chunks into answer text
//   - ConfigStore: Application configuration
//   - PromptStore: Customisable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
