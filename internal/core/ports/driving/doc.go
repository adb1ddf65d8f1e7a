// Package driving defines what the CLI, TUI, HTTP API and MCP server can
// ask of the speech corpus: search, similarity, document browsing,
// indexing, concepts, settings and the research agent.
//
// internal/core/services implements these interfaces.
package driving
