// Package pgvector provides a nearest-neighbour VectorIndex backed by
// PostgreSQL with the pgvector extension.
package pgvector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultTable holds one embedding per segment.
const DefaultTable = "segment_vectors"

// Config holds configuration for the pgvector index.
type Config struct {
	// DSN is the PostgreSQL connection string (required).
	DSN string

	// Dimensions is the embedding length (required).
	Dimensions int

	// Table is the table name (default: segment_vectors).
	Table string
}

// Index stores segment embeddings in a pgvector column with an HNSW
// cosine index.
type Index struct {
	db         *sql.DB
	table      string
	dimensions int
}

// New connects to PostgreSQL and creates the extension, table and index
// when missing.
func New(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pgvector: %w: DSN is required", domain.ErrInvalidInput)
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgvector: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgvector: %w: %v", domain.ErrVectorIndexUnavailable, err)
	}

	idx, err := NewWithDB(db, cfg.Dimensions, cfg.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := idx.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgvector: migrate: %w", err)
	}
	return idx, nil
}

// NewWithDB wraps an existing connection without running migrations.
func NewWithDB(db *sql.DB, dimensions int, table string) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("pgvector: %w: dimensions must be positive", domain.ErrInvalidInput)
	}
	if table == "" {
		table = DefaultTable
	}
	return &Index{db: db, table: table, dimensions: dimensions}, nil
}

func (i *Index) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			segment_id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, i.table, i.dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s USING hnsw (embedding vector_cosine_ops)`,
			i.table, i.table),
	}
	for _, stmt := range statements {
		if _, err := i.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Add stores or replaces the embedding of a segment.
func (i *Index) Add(ctx context.Context, segmentID string, embedding []float32) error {
	if err := i.checkDimensions(embedding); err != nil {
		return err
	}
	_, err := i.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (segment_id, embedding) VALUES ($1, $2)
		ON CONFLICT (segment_id) DO UPDATE SET embedding = EXCLUDED.embedding
	`, i.table), segmentID, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("pgvector: add %s: %w", segmentID, err)
	}
	return nil
}

// Delete removes the embedding of a segment. Missing segments are ignored.
func (i *Index) Delete(ctx context.Context, segmentID string) error {
	if _, err := i.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE segment_id = $1", i.table), segmentID); err != nil {
		return fmt.Errorf("pgvector: delete %s: %w", segmentID, err)
	}
	return nil
}

// Search returns the k nearest segments by cosine distance, most similar
// first. Similarity is 1 - cosine distance.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := i.checkDimensions(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := i.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT segment_id, 1 - (embedding <=> $1) AS similarity
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, i.table), pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	hits := make([]driven.VectorHit, 0, k)
	for rows.Next() {
		var hit driven.VectorHit
		if err := rows.Scan(&hit.SegmentID, &hit.Similarity); err != nil {
			return nil, fmt.Errorf("pgvector: scan hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: iterate hits: %w", err)
	}
	return hits, nil
}

// Close closes the database connection.
func (i *Index) Close() error {
	if i.db == nil {
		return errors.New("pgvector: index not open")
	}
	return i.db.Close()
}

func (i *Index) checkDimensions(v []float32) error {
	if len(v) != i.dimensions {
		return &domain.DimensionMismatchError{Left: i.dimensions, Right: len(v)}
	}
	return nil
}
