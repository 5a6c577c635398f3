package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Absence is an expected outcome in most read paths and is surfaced
	// as an empty result rather than a failure.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity with the same key is already
	// stored. A canonical insert losing a race reports this and the
	// caller discards its copy.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable indicates the library store could not be
	// reached. It propagates to the caller unchanged; the retrieval
	// path never retries and never returns partial results.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Store adapters that embed client-side cannot operate
	// without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
