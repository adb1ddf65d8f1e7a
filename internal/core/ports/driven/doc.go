// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document persistence
//   - SegmentStore: Segment persistence and transactional vector linking
//   - VectorStore: Vector retrieval for similarity queries
//   - Normaliser / NormaliserRegistry: Raw bytes to Document
//   - PostProcessorPipeline: Document to Segments
//   - ConfigStore: Application configuration
//   - AgentConfigStore: Agent persona loading
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, indexing and text similarity are disabled.
//   - LLMService: Without it, the agent is disabled.
//   - VectorIndex: External ANN index (pgvector). Without it, similarity
//     lookups scan the stored vectors.
//   - SearchEngine: Full-text search (SQLite FTS5).
//   - SimilarityCache: Caches similarity matrices (Redis).
//   - TranscriptStore: Mirrors agent conversations for audit.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser or postprocessor package
package driven
