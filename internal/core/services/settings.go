package services

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyChunkerSize      = "chunker.size"
	keyChunkerOverlap   = "chunker.overlap"
	keyIndexerBatch     = "indexer.batch_size"
	keyIndexerWorkers   = "indexer.concurrency"
	keyIndexerRate      = "indexer.rate"
	keyIndexerRetries   = "indexer.max_retries"
	keyPgvectorDSN      = "vector.pgvector_dsn"
	keyRedisURL         = "cache.redis_url"
	keyCacheTTL         = "cache.ttl"
	keyGoogleAPIKey     = "search.google_api_key"
	keyGoogleEngineID   = "search.google_cx"
	keyAgentName        = "agent.name"
	keyAPIAddr          = "api.addr"
	keyPipelineStages   = "pipeline.processors"
	keyConceptRelevance = "pipeline.concepts.min_relevance"
)

// Environment variables consulted when the matching key is unset.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
	EnvGoogleAPIKey = "ROSTRUM_GOOGLE_API_KEY"
	EnvGoogleCX     = "ROSTRUM_GOOGLE_CX"
	EnvPgvectorDSN  = "ROSTRUM_PGVECTOR_DSN"
	EnvRedisURL     = "ROSTRUM_REDIS_URL"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider),
			Model:    s.configStore.GetString(keyEmbedModel),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Chunker: domain.ChunkerSettings{
			Size:    s.getInt(keyChunkerSize, defaults.Chunker.Size),
			Overlap: s.getIntOrZero(keyChunkerOverlap, defaults.Chunker.Overlap),
		},
		Indexer: domain.IndexerSettings{
			BatchSize:         s.getInt(keyIndexerBatch, defaults.Indexer.BatchSize),
			Concurrency:       s.getInt(keyIndexerWorkers, defaults.Indexer.Concurrency),
			RequestsPerSecond: s.configStore.GetFloat(keyIndexerRate),
			MaxRetries:        s.getIntOrZero(keyIndexerRetries, defaults.Indexer.MaxRetries),
		},
		Storage: domain.StorageSettings{
			PgvectorDSN: s.getString(keyPgvectorDSN, s.getenv(EnvPgvectorDSN)),
			RedisURL:    s.getString(keyRedisURL, s.getenv(EnvRedisURL)),
			CacheTTL:    s.getDuration(keyCacheTTL, defaults.Storage.CacheTTL),
		},
		WebSearch: domain.WebSearchSettings{
			APIKey:   s.getString(keyGoogleAPIKey, s.getenv(EnvGoogleAPIKey)),
			EngineID: s.getString(keyGoogleEngineID, s.getenv(EnvGoogleCX)),
		},
		Agent: domain.AgentSettings{
			Name: s.getString(keyAgentName, defaults.Agent.Name),
		},
		API: domain.APISettings{
			Addr: s.getString(keyAPIAddr, defaults.API.Addr),
		},
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = s.getenv(EnvOllamaHost)
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = s.getenv(EnvOllamaHost)
	}

	return settings, nil
}

// Save persists application settings. Credentials and DSNs are written
// only when set and different from the environment's value.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyChunkerSize, settings.Chunker.Size},
		{keyChunkerOverlap, settings.Chunker.Overlap},
		{keyIndexerBatch, settings.Indexer.BatchSize},
		{keyIndexerWorkers, settings.Indexer.Concurrency},
		{keyIndexerRate, settings.Indexer.RequestsPerSecond},
		{keyIndexerRetries, settings.Indexer.MaxRetries},
		{keyCacheTTL, settings.Storage.CacheTTL.String()},
		{keyGoogleEngineID, settings.WebSearch.EngineID},
		{keyAgentName, settings.Agent.Name},
		{keyAPIAddr, settings.API.Addr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key   string
		value string
		env   string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, s.envAPIKey(settings.Embedding.Provider)},
		{keyLLMAPIKey, settings.LLM.APIKey, s.envAPIKey(settings.LLM.Provider)},
		{keyGoogleAPIKey, settings.WebSearch.APIKey, s.getenv(EnvGoogleAPIKey)},
		{keyPgvectorDSN, settings.Storage.PgvectorDSN, s.getenv(EnvPgvectorDSN)},
		{keyRedisURL, settings.Storage.RedisURL, s.getenv(EnvRedisURL)},
	}
	for _, v := range secrets {
		if v.value == "" || v.value == v.env {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrUnsupportedType, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingCredentials, provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	if !provider.IsLocal() {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingCredentials, provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	if !provider.IsLocal() {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Chunker.Size <= 0 {
		return fmt.Errorf("%w: chunker.size must be positive", domain.ErrInvalidInput)
	}
	if settings.Chunker.Overlap < 0 || settings.Chunker.Overlap >= settings.Chunker.Size {
		return fmt.Errorf("%w: chunker.overlap must be in [0, %d)", domain.ErrInvalidInput, settings.Chunker.Size)
	}
	if settings.Indexer.BatchSize <= 0 || settings.Indexer.Concurrency <= 0 {
		return fmt.Errorf("%w: indexer.batch_size and indexer.concurrency must be positive", domain.ErrInvalidInput)
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s", domain.ErrMissingCredentials, settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s", domain.ErrMissingCredentials, settings.LLM.Provider)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// The chunker takes its parameters from the chunker settings.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineStages); len(processors) > 0 {
		cfg.Processors = processors
	}

	settings, _ := s.Get()
	cfg.ProcessorConfigs["chunker"] = map[string]any{
		"chunk_size": settings.Chunker.Size,
		"overlap":    settings.Chunker.Overlap,
	}
	if _, ok := s.configStore.Get(keyConceptRelevance); ok {
		cfg.ProcessorConfigs["concepts"] = map[string]any{
			"min_relevance": s.configStore.GetFloat(keyConceptRelevance),
		}
	}

	return cfg
}

// envAPIKey returns the API key the environment holds for provider.
func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntOrZero is getInt for keys where an explicit 0 is meaningful.
func (s *SettingsService) getIntOrZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return ""
	}
	return provider
}
