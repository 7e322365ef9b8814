// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IngestService turns a PDF into the vector store contents, AnswerService
// answers questions from them through a RetrievalChain, and SessionService
// holds the per-user state the interactive front ends share.
package services
