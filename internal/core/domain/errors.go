package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUndecodable indicates a file could not be decoded as text.
	// Binary files, non-UTF-8 files and corrupt PDFs are skipped with this error.
	ErrUndecodable = errors.New("undecodable content")

	// ErrConfigMissing indicates a required configuration value is absent.
	ErrConfigMissing = errors.New("missing configuration")

	// ErrUnsupportedProvider indicates an unknown embedding or LLM provider.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	// Query answering and keyword extraction are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store could not be opened.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrEmptyIndex indicates a query or inspection ran against an index with no chunks.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
