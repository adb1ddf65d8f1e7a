package mcp

import (
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// AgentFactory builds a fresh agent for one question. MCP calls are
// independent, so no conversation is shared between them.
type AgentFactory func() (driving.AgentService, error)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Similarity answers similarity queries (required).
	Similarity driving.SimilarityService

	// Search provides full-text search. Optional.
	Search driving.SearchService

	// Document browses ingested speeches. Optional.
	Document driving.DocumentService

	// Agents creates research agents. Optional; without it the ask tool
	// is not offered.
	Agents AgentFactory

	// Version is reported to clients. Defaults to "dev".
	Version string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Similarity == nil {
		return ErrMissingSimilarityService
	}
	return nil
}
