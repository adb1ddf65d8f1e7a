// Package services holds the rostrum core: ingestion, the indexer that
// chunks and embeds speeches, similarity, search, concept tagging, the
// scheduler and the agent loop with its tool dispatcher and memory.
//
// Services only talk to driven ports; stores and AI providers are
// injected by cmd/rostrum.
package services
