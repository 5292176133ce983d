// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentLoader: produces page-level document text from a corpus
//   - Chunker: turns documents into retrievable chunks
//   - EmbeddingService: text -> vector, consumed, never implemented here
//   - VectorIndex: stores chunk records and vectors, answers similarity queries
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
