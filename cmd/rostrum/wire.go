package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/rostrum/internal/adapters/driven/ai"
	"github.com/custodia-labs/rostrum/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/rostrum/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rostrum/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/rostrum/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/rostrum/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/rostrum/internal/adapters/driven/tools"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/cli"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/core/services"
	"github.com/custodia-labs/rostrum/internal/logger"
	"github.com/custodia-labs/rostrum/internal/normalisers"
	"github.com/custodia-labs/rostrum/internal/postprocessors"
	"github.com/custodia-labs/rostrum/internal/postprocessors/concepts"
	"github.com/custodia-labs/rostrum/internal/postprocessors/quotations"
)

// closers runs cleanup functions in reverse order of registration.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// bootstrap wires stores, AI providers and services for the CLI.
func bootstrap(ctx context.Context, opts cli.Options) (_ *cli.Services, err error) {
	baseDir, err := resolveBaseDir(opts.DataDir)
	if err != nil {
		return nil, err
	}

	var cleanup closers
	defer func() {
		if err != nil {
			_ = cleanup.close()
		}
	}()

	configStore, err := file.NewConfigStore(baseDir)
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(baseDir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	cleanup.add(store.Close)
	logger.Debug("Database at %s", store.Path())

	aiResult := ai.Initialise(settings)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}
	cleanup.add(func() error {
		aiResult.Close()
		return nil
	})
	embedder, llm := aiResult.EmbeddingService, aiResult.LLMService

	vectorIndex := openVectorIndex(ctx, settings, embedder, &cleanup)
	cache, transcripts := openCache(ctx, settings, store, &cleanup)

	pipeline, err := buildPipeline(settingsService.GetPipelineConfig())
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	tagger := concepts.New()

	indexer := services.NewIndexer(store, store, pipeline, embedder, newLimiter(settings), services.IndexerOptions{
		BatchSize:   settings.Indexer.BatchSize,
		Concurrency: settings.Indexer.Concurrency,
		MaxRetries:  settings.Indexer.MaxRetries,
	})
	indexer.SetConceptStore(store)
	if vectorIndex != nil {
		indexer.SetVectorIndex(vectorIndex)
	}

	similarity := services.NewSimilarityEngine(store, vectorIndex, cache, embedder)
	search := services.NewSearchService(store)
	conceptService := services.NewConceptService(store, store, store, tagger)
	conceptService.SetWorldEvents(concepts.DefaultEvents)
	quotationService := services.NewQuotationService(store, store, quotations.New())
	documents := services.NewDocumentService(store, store, vectorIndex)
	ingest := services.NewIngestService(store, store, normalisers.NewDefaultRegistry())
	if vectorIndex != nil {
		ingest.SetVectorIndex(vectorIndex)
	}
	scheduler := services.NewScheduler(domain.DefaultSchedulerConfig(), store.SchedulerStore(), indexer, conceptService)

	prompts, err := file.NewPromptStore(filepath.Join(baseDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("prompt store: %w", err)
	}
	agents, err := file.NewAgentStore(file.AgentStoreConfig{
		Dir:          filepath.Join(baseDir, "agents"),
		Prompts:      prompts,
		DefaultModel: settings.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("agent store: %w", err)
	}

	webSearch, err := tools.NewWebSearch(ctx, tools.WebSearchConfig{
		APIKey:   settings.WebSearch.APIKey,
		EngineID: settings.WebSearch.EngineID,
	})
	if err != nil {
		return nil, err
	}
	toolset := tools.All(tools.Deps{
		Query:      store,
		Search:     search,
		Similarity: similarity,
		Segments:   store,
		Concepts:   conceptService,
		Quotations: quotationService,
		Notes:      store,
		WebSearch:  webSearch,
		FetchURL:   tools.NewFetchURL(0),
	})

	agentFactory := func(name string) (driving.AgentService, error) {
		if llm == nil {
			return nil, domain.ErrLLMUnavailable
		}
		if name == "" {
			name = settings.Agent.Name
		}
		if name == "" {
			name = file.BuiltinAgent
		}

		cfg, err := agents.Load(name)
		if err != nil {
			return nil, err
		}
		dispatcher, err := services.NewToolDispatcher(cfg, toolset...)
		if err != nil {
			return nil, err
		}
		memory := services.NewConversationMemory(cfg.SystemPrompts)
		memory.SetTranscriptStore(transcripts)
		return services.NewAgentOrchestrator(cfg, llm, dispatcher, memory)
	}

	return &cli.Services{
		Similarity: similarity,
		Search:     search,
		Documents:  documents,
		Index:      indexer,
		Ingest:     ingest,
		Concepts:   conceptService,
		Quotations: quotationService,
		Settings:   settingsService,
		Scheduler:  scheduler,
		Notes:      store,
		Config:     configStore,
		Segments:   store,
		Agents:     agentFactory,
		AgentNames: agents.List,
		Close:      cleanup.close,
	}, nil
}

// resolveBaseDir returns the directory holding config, data, prompts
// and personas.
func resolveBaseDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if env := os.Getenv("ROSTRUM_HOME"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".rostrum"), nil
}

// openVectorIndex connects to pgvector when configured. Failures fall
// back to the in-process scan over stored vectors.
func openVectorIndex(
	ctx context.Context, settings *domain.AppSettings, embedder driven.EmbeddingService, cleanup *closers,
) driven.VectorIndex {
	if settings.Storage.PgvectorDSN == "" {
		return nil
	}
	if embedder == nil {
		logger.Warn("pgvector configured but no embedding provider; using in-process similarity")
		return nil
	}

	idx, err := pgvector.New(ctx, pgvector.Config{
		DSN:        settings.Storage.PgvectorDSN,
		Dimensions: embedder.Dimensions(),
	})
	if err != nil {
		logger.Warn("pgvector unavailable, using in-process similarity: %v", err)
		return nil
	}
	cleanup.add(idx.Close)
	return idx
}

// openCache connects to redis when configured. Without it matrices are
// not cached and transcripts go to the SQLite store.
func openCache(
	ctx context.Context, settings *domain.AppSettings, store *sqlite.Store, cleanup *closers,
) (driven.SimilarityCache, driven.TranscriptStore) {
	if settings.Storage.RedisURL == "" {
		return nil, store
	}

	rs, err := redis.NewFromURL(ctx, settings.Storage.RedisURL, settings.Storage.CacheTTL)
	if err != nil {
		logger.Warn("redis unavailable, similarity cache disabled: %v", err)
		return nil, store
	}
	cleanup.add(rs.Close)
	return rs, rs
}

func buildPipeline(cfg domain.PipelineConfig) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	stages := make([]postprocessors.Stage, 0, len(cfg.Processors))
	for _, name := range cfg.Processors {
		stages = append(stages, postprocessors.Stage{Name: name, Config: cfg.GetProcessorConfig(name)})
	}
	return registry.BuildPipeline(stages...)
}

func newLimiter(settings *domain.AppSettings) *ratelimit.Limiter {
	if rps := settings.Indexer.RequestsPerSecond; rps > 0 {
		return ratelimit.New(ratelimit.Config{RequestsPerSecond: rps})
	}
	return ratelimit.ForProvider(string(settings.Embedding.Provider))
}
