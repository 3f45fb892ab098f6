package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters wrap infrastructure failures with the matching sentinel so that
// callers can branch with errors.Is.
var (
	// ErrConfiguration indicates missing or invalid configuration such as an
	// absent knowledge base location or a missing API key.
	// Fatal at start-up.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation indicates data that would corrupt the index, for example
	// an embedding count or dimension that does not match the chunk table.
	// Fatal during index build.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a requested entity does not exist, including an
	// empty knowledge base or a missing file.
	ErrNotFound = errors.New("not found")

	// ErrGenerationDegraded indicates the generation collaborator returned no
	// usable text. It is absorbed by the answer fallback chain and never
	// reaches the end user.
	ErrGenerationDegraded = errors.New("generation degraded")

	// ErrTransientIO indicates a network failure talking to an external
	// collaborator. Only errors of this class are retried.
	ErrTransientIO = errors.New("transient I/O error")

	// ErrInvalidInput indicates malformed or invalid caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotBuilt indicates retrieval was attempted before a corpus was
	// built or restored.
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates a provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
