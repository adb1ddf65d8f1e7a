// Package ai builds the embedding and chat providers named in settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	ollamaembed "github.com/custodia-labs/rostrum/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/rostrum/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/rostrum/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/rostrum/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/rostrum/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// pingTimeout bounds each provider reachability check.
const pingTimeout = 5 * time.Second

// provider is what embedding and chat services share.
type provider interface {
	Ping(ctx context.Context) error
	Close() error
}

// InitResult holds the providers that came up. A nil service means the
// provider is unset or unreachable.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string
}

// Close releases both providers.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise connects both providers in parallel. Failures become
// warnings so search keeps working without embeddings or the agent.
func Initialise(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	var embedErr, llmErr error

	var g errgroup.Group
	g.Go(func() error {
		result.EmbeddingService, embedErr = CreateAndValidateEmbeddingService(&settings.Embedding)
		return nil
	})
	g.Go(func() error {
		result.LLMService, llmErr = CreateAndValidateLLMService(&settings.LLM)
		return nil
	})
	_ = g.Wait()

	for _, err := range []error{embedErr, llmErr} {
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}
	}
	return result
}

// CreateAndValidateEmbeddingService returns a reachable embedder, or nil
// when none is configured.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	return connect(domain.ErrEmbeddingUnavailable, func() (driven.EmbeddingService, error) {
		return CreateEmbeddingService(settings)
	})
}

// CreateAndValidateLLMService returns a reachable chat provider, or nil
// when none is configured.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	return connect(domain.ErrLLMUnavailable, func() (driven.LLMService, error) {
		return CreateLLMService(settings)
	})
}

// connect creates a provider and pings it, wrapping failures in kind.
func connect[T provider](kind error, create func() (T, error)) (T, error) {
	var zero T
	svc, err := create()
	if err != nil {
		return zero, fmt.Errorf("%w: %w. run 'rostrum config set' to fix", kind, err)
	}
	if any(svc) == nil {
		return zero, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return zero, fmt.Errorf("%w: service unreachable (%w). run 'rostrum config set' to fix", kind, err)
	}
	return svc, nil
}

// CreateEmbeddingService returns nil when no provider is configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]
	switch settings.Provider {
	case domain.AIProviderOllama:
		if dimensions == 0 {
			dimensions = ollamaembed.DefaultDimensions
		}
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})
	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrUnsupportedType)
	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService returns nil when no provider is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}
