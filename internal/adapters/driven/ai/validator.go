package ai

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator pings providers before 'rostrum config set' saves them.
type ConfigValidator struct{}

// NewConfigValidator creates a validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding returns the raw provider error so the settings
// wizard can show it.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	return ping(svc, err)
}

func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config)
	return ping(svc, err)
}

func ping[T provider](svc T, err error) error {
	if err != nil || any(svc) == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
