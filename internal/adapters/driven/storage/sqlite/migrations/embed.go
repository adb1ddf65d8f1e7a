// Package migrations holds the SQLite schema for speeches, segments,
// embeddings, concepts, world events, quotations, notes and scheduler
// state.
package migrations

import "embed"

// FS holds the numbered up and down migrations.
//
//go:embed *.sql
var FS embed.FS
