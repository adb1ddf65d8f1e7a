// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Rostrum. It lets AI assistants query speech similarity, search the
// corpus and put questions to the research agent.
package mcp

import "errors"

// ErrMissingSimilarityService is returned when the similarity service is
// not provided.
var ErrMissingSimilarityService = errors.New("mcp: similarity service is required")
