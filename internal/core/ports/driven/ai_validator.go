package driven

import "github.com/custodia-labs/rostrum/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider. An unset provider
	// is valid; speeches are then searched by text only.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the chat provider used by the agent. An unset
	// provider is valid.
	ValidateLLM(config *domain.LLMSettings) error
}
