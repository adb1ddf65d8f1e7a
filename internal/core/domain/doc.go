// Package domain defines the core business entities for Rostrum.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested speech with metadata
//   - Segment: An overlapping slice of a document, the unit of embedding
//   - Vector: The embedding of exactly one segment
//   - Message: One entry of an agent conversation
//   - AgentConfig: The immutable persona an agent runs with
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
