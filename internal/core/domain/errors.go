package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or processor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrAlreadyEmbedded indicates an attempt to relink a segment whose
	// vector link is already set.
	ErrAlreadyEmbedded = errors.New("segment already embedded")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// The agent cannot run without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and text similarity are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates no external vector index is configured.
	// Similarity falls back to a brute-force scan.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrSearchUnavailable indicates the full-text engine is not configured.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrMissingCredentials indicates a provider needs credentials that were not supplied.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Agent Errors.

	// ErrInvalidAgentConfig indicates an agent persona failed validation.
	ErrInvalidAgentConfig = errors.New("invalid agent config")

	// ErrToolNotRegistered indicates a declared tool has no implementation.
	ErrToolNotRegistered = errors.New("tool not registered")

	// Taxonomy sentinels. Typed errors below match these with errors.Is.

	// ErrProvider indicates an embedding or completion API failure.
	ErrProvider = errors.New("provider error")

	// ErrUnknownTool indicates the model requested a tool outside the dispatch table.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMalformedArguments indicates tool arguments failed to parse or validate.
	ErrMalformedArguments = errors.New("malformed tool arguments")

	// ErrDimensionMismatch indicates a comparison across incompatible embeddings.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ProviderError is an embedding or completion API failure.
// It is retryable by caller policy and never retried internally.
type ProviderError struct {
	// Provider names the backend ("openai", "ollama", "anthropic").
	Provider string

	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int

	// Message is the provider's error message, unchanged.
	Message string

	// RetryAfter is the provider's requested backoff in seconds, if any.
	RetryAfter int

	// Err is the underlying transport error, if any.
	Err error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

// Unwrap returns the underlying transport error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches ErrProvider, and ErrRateLimited for 429 responses.
func (e *ProviderError) Is(target error) bool {
	if target == ErrProvider {
		return true
	}
	return target == ErrRateLimited && e.StatusCode == 429
}

// UnknownToolError reports a tool name that is not in the dispatch table.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Is matches ErrUnknownTool.
func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// MalformedArgumentsError reports tool arguments that failed to parse or
// did not satisfy the tool's parameter schema.
type MalformedArgumentsError struct {
	Tool string
	Err  error
}

func (e *MalformedArgumentsError) Error() string {
	return fmt.Sprintf("malformed arguments for tool %q: %v", e.Tool, e.Err)
}

// Unwrap returns the parse or validation error.
func (e *MalformedArgumentsError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedArguments.
func (e *MalformedArgumentsError) Is(target error) bool {
	return target == ErrMalformedArguments
}

// DimensionMismatchError reports two vectors of different lengths.
type DimensionMismatchError struct {
	Left  int
	Right int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: %d vs %d", e.Left, e.Right)
}

// Is matches ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
