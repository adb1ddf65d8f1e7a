// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - DocumentStore, SegmentStore, VectorStore: speeches, segments and embeddings
//   - SearchEngine: FTS5 full-text search over segments
//   - QueryRunner: read-only SQL for the agent's sql_query tool
//   - ConceptStore: concept dictionary and segment topics
//   - NoteStore, TranscriptStore: agent notes and conversation history
//   - SchedulerStore: background task state
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// A speeches view exposes document metadata as columns for ad-hoc queries.
//
// # Data Location
//
// By default, the database is stored at ~/.rostrum/data/rostrum.db
//
// # Thread Safety
//
// The store holds a single connection. Multi-row writes run in transactions,
// so a segment and its vector link are always visible together.
package sqlite
