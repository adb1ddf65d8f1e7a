package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API, or any compatible server.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty means the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty means the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkerSettings controls segmentation.
type ChunkerSettings struct {
	// Size is the maximum segment length in characters.
	Size int

	// Overlap is the number of characters consecutive segments share.
	Overlap int
}

// IndexerSettings controls embedding runs.
type IndexerSettings struct {
	// BatchSize is the number of segments per embedding request.
	BatchSize int

	// Concurrency bounds the documents indexed in parallel.
	Concurrency int

	// RequestsPerSecond throttles embedding requests. Zero uses the
	// provider default.
	RequestsPerSecond float64

	// MaxRetries bounds retries of rate limited requests.
	MaxRetries int
}

// StorageSettings configures the optional external stores.
type StorageSettings struct {
	// PgvectorDSN enables the pgvector nearest-neighbour index.
	PgvectorDSN string

	// RedisURL enables the redis similarity cache and transcript mirror.
	RedisURL string

	// CacheTTL is how long cached similarity matrices live.
	CacheTTL time.Duration
}

// WebSearchSettings configures the web_search agent tool.
type WebSearchSettings struct {
	// APIKey is the Google Custom Search API key.
	APIKey string

	// EngineID is the programmable search engine ID (cx).
	EngineID string
}

// IsConfigured returns true if web search can run.
func (w WebSearchSettings) IsConfigured() bool {
	return w.APIKey != "" && w.EngineID != ""
}

// AgentSettings selects the agent persona.
type AgentSettings struct {
	// Name is the persona to load.
	Name string
}

// APISettings configures the JSON API server.
type APISettings struct {
	// Addr is the listen address.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunker   ChunkerSettings
	Indexer   IndexerSettings
	Storage   StorageSettings
	WebSearch WebSearchSettings
	Agent     AgentSettings
	API       APISettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunker: ChunkerSettings{
			Size:    2000,
			Overlap: 200,
		},
		Indexer: IndexerSettings{
			BatchSize:   100,
			Concurrency: 3,
			MaxRetries:  2,
		},
		Storage: StorageSettings{
			CacheTTL: time.Hour,
		},
		Agent: AgentSettings{
			Name: "researcher",
		},
		API: APISettings{
			Addr: "127.0.0.1:8080",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// chunk into 2000 character segments with 200 of overlap, then tag
// concepts.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "concepts"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 2000,
				"overlap":    200,
			},
		},
	}
}
