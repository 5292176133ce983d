package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates an upsert with a vector width that
	// differs from the width the index was fixed to on first insert.
	// The upsert is rejected and the store is left unchanged.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptSnapshot indicates the two snapshot artifacts disagree:
	// the metadata record count does not match the stored vector count.
	// Callers must fall back to a fresh or rebuilt index.
	ErrCorruptSnapshot = errors.New("corrupt index snapshot")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Neither ingest nor query can run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
