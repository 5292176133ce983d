// Package domain defines the core business entities for Pagesift.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: per-page extracted text for one source file
//   - DocumentChunk: a retrievable unit, either prose or one structured table
//   - TableRef: a table lifted out of page text into headers and rows
//   - QueryResult: a similarity hit returned by the vector index
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
