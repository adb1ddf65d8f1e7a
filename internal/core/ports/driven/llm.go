package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// LLMService provides chat completion with tool calling.
// This is an optional service - when nil, the agent is disabled.
//
// Implementations may include:
//   - OpenAI (and OpenAI-compatible servers)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// ChatWithTools sends the full conversation and the declared tools.
	// The response carries either final content or one or more tool calls.
	// Failures are returned as *domain.ProviderError.
	ChatWithTools(
		ctx context.Context,
		messages []domain.Message,
		tools []domain.ToolSchema,
		opts ChatOptions,
	) (*ChatResponse, error)

	// ModelName returns the name of the default model.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatOptions configures one completion request.
type ChatOptions struct {
	// Model overrides the service's default model when set.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	// Content is the assistant text. May be empty when tool calls are present.
	Content string

	// ToolCalls are the tools the model wants to run.
	ToolCalls []domain.ToolCall

	// FinishReason is the provider's stop reason.
	FinishReason string
}

// HasToolCalls reports whether the model requested any tools.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
