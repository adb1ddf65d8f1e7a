package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

const documentColumns = "d.id, d.uri, d.title, d.content, d.metadata, d.created_at"

const segmentColumns = "s.id, s.document_id, s.content, s.ordinal, s.vector_id, s.metadata"

// ==================== Document Store ====================

// SaveDocument stores a document. An existing document with the same ID is
// replaced. When its content changed, its segments, vectors, topics and
// quotations are deleted.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var prev string
		err := tx.QueryRowContext(ctx, "SELECT content FROM documents WHERE id = ?", doc.ID).Scan(&prev)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("reading stored document: %w", err)
		case prev != doc.Content:
			if _, err := tx.ExecContext(ctx, "DELETE FROM segments WHERE document_id = ?", doc.ID); err != nil {
				return fmt.Errorf("deleting old segments: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM quotations WHERE document_id = ?", doc.ID); err != nil {
				return fmt.Errorf("deleting old quotations: %w", err)
			}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (id, uri, title, content, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				uri = excluded.uri,
				title = excluded.title,
				content = excluded.content,
				metadata = excluded.metadata,
				created_at = excluded.created_at
		`, doc.ID, doc.URI, doc.Title, doc.Content, string(metadataJSON), formatTime(doc.CreatedAt))
		if err != nil {
			return fmt.Errorf("saving document: %w", err)
		}
		return nil
	})
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents d WHERE d.id = ?", id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, notFound(err, "document "+id)
	}
	return doc, nil
}

// ListDocuments returns documents matching the filter, ordered by year then ID.
func (s *Store) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	where, args := documentFilterSQL(filter)
	query := "SELECT " + documentColumns + " FROM documents d WHERE " + where + " ORDER BY " + yearOrder
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document. Segments, vectors and topics cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Segment Store ====================

// GetSegments retrieves all segments for a document in ordinal order,
// with their concept topics attached.
func (s *Store) GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+segmentColumns+" FROM segments s WHERE s.document_id = ? ORDER BY s.ordinal", documentID)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var segments []domain.Segment //nolint:prealloc // size unknown from query
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		segments = append(segments, *seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}

	if err := s.attachTopics(ctx, documentID, segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// GetSegment retrieves a specific segment by ID.
func (s *Store) GetSegment(ctx context.Context, id string) (*domain.Segment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+segmentColumns+" FROM segments s WHERE s.id = ?", id)
	seg, err := scanSegment(row)
	if err != nil {
		return nil, notFound(err, "segment "+id)
	}
	return seg, nil
}

// SaveSegments stores unembedded segments, replacing earlier rows with the
// same ID. Any existing vector link is cleared.
func (s *Store) SaveSegments(ctx context.Context, segments []domain.Segment) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO segments (id, document_id, ordinal, content, vector_id, metadata)
			VALUES (?, ?, ?, ?, NULL, ?)
			ON CONFLICT(id) DO UPDATE SET
				document_id = excluded.document_id,
				ordinal = excluded.ordinal,
				content = excluded.content,
				vector_id = NULL,
				metadata = excluded.metadata
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for i := range segments {
			seg := &segments[i]
			if err := requireDocument(ctx, tx, seg); err != nil {
				return err
			}
			metadataJSON, err := segmentMetadataJSON(seg)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM vectors WHERE segment_id = ?", seg.ID); err != nil {
				return fmt.Errorf("clearing vector for segment %s: %w", seg.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, seg.ID, seg.DocumentID, seg.Ordinal, seg.Content, metadataJSON); err != nil {
				return fmt.Errorf("saving segment %s: %w", seg.ID, err)
			}
		}
		return nil
	})
}

// SaveEmbedded inserts segments together with their vectors and links.
// Either every item is written or none is.
func (s *Store) SaveEmbedded(ctx context.Context, items []domain.EmbeddedSegment) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range items {
			seg, vec := items[i].Segment, items[i].Vector
			if err := requireDocument(ctx, tx, &seg); err != nil {
				return err
			}

			var existing sql.NullString
			err := tx.QueryRowContext(ctx, "SELECT vector_id FROM segments WHERE id = ?", seg.ID).Scan(&existing)
			switch {
			case err == nil && existing.Valid:
				return fmt.Errorf("segment %s: %w", seg.ID, domain.ErrAlreadyEmbedded)
			case err != nil && !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("checking segment %s: %w", seg.ID, err)
			}

			metadataJSON, err := segmentMetadataJSON(&seg)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO segments (id, document_id, ordinal, content, vector_id, metadata)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					content = excluded.content,
					vector_id = excluded.vector_id,
					metadata = excluded.metadata
			`, seg.ID, seg.DocumentID, seg.Ordinal, seg.Content, vec.ID, metadataJSON)
			if err != nil {
				return fmt.Errorf("saving segment %s: %w", seg.ID, err)
			}

			vec.SegmentID = seg.ID
			if err := insertVector(ctx, tx, vec); err != nil {
				return err
			}
		}
		return nil
	})
}

// LinkVectors inserts vectors for existing unembedded segments and sets
// their links. Fails with domain.ErrAlreadyEmbedded if any segment is
// already linked, in which case nothing is written.
func (s *Store) LinkVectors(ctx context.Context, vectors []domain.Vector) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, vec := range vectors {
			res, err := tx.ExecContext(ctx,
				"UPDATE segments SET vector_id = ? WHERE id = ? AND vector_id IS NULL", vec.ID, vec.SegmentID)
			if err != nil {
				return fmt.Errorf("linking segment %s: %w", vec.SegmentID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				var exists int
				err := tx.QueryRowContext(ctx, "SELECT 1 FROM segments WHERE id = ?", vec.SegmentID).Scan(&exists)
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("segment %s: %w", vec.SegmentID, domain.ErrNotFound)
				}
				return fmt.Errorf("segment %s: %w", vec.SegmentID, domain.ErrAlreadyEmbedded)
			}
			if err := insertVector(ctx, tx, vec); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountUnembedded returns the number of segments without a vector.
func (s *Store) CountUnembedded(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM segments WHERE vector_id IS NULL").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting unembedded segments: %w", err)
	}
	return n, nil
}

// PendingDocuments returns IDs of documents that are not fully embedded.
func (s *Store) PendingDocuments(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT d.id FROM documents d
		WHERE NOT EXISTS (SELECT 1 FROM segments s WHERE s.document_id = d.id)
		   OR EXISTS (SELECT 1 FROM segments s WHERE s.document_id = d.id AND s.vector_id IS NULL)
		ORDER BY ` + yearOrder
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pending documents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending documents: %w", err)
	}
	return ids, nil
}

func requireDocument(ctx context.Context, tx *sql.Tx, seg *domain.Segment) error {
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE id = ?", seg.DocumentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("segment %s: document %s: %w", seg.ID, seg.DocumentID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking document %s: %w", seg.DocumentID, err)
	}
	return nil
}

func insertVector(ctx context.Context, tx *sql.Tx, vec domain.Vector) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO vectors (id, segment_id, model, dimensions, embedding)
		VALUES (?, ?, ?, ?, ?)
	`, vec.ID, vec.SegmentID, vec.Model, len(vec.Values), float32SliceToBytes(vec.Values))
	if err != nil {
		return fmt.Errorf("saving vector for segment %s: %w", vec.SegmentID, err)
	}
	return nil
}

// ==================== Vector Store ====================

// GetVector returns the vector linked to a segment.
func (s *Store) GetVector(ctx context.Context, segmentID string) (*domain.Vector, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, segment_id, model, embedding FROM vectors WHERE segment_id = ?", segmentID)
	vec, err := scanVector(row)
	if err != nil {
		return nil, notFound(err, "vector for segment "+segmentID)
	}
	return vec, nil
}

// ListVectors returns the vectors of embedded segments whose documents
// match the filter, ordered by document then ordinal.
func (s *Store) ListVectors(ctx context.Context, filter domain.DocumentFilter) ([]domain.Vector, error) {
	where, args := documentFilterSQL(filter)
	query := `
		SELECT v.id, v.segment_id, v.model, v.embedding
		FROM vectors v
		JOIN segments s ON s.id = v.segment_id
		JOIN documents d ON d.id = s.document_id
		WHERE s.vector_id = v.id AND ` + where + `
		ORDER BY ` + yearOrder + `, s.ordinal`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var vectors []domain.Vector //nolint:prealloc // size unknown from query
	for rows.Next() {
		vec, err := scanVector(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		vectors = append(vectors, *vec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return vectors, nil
}

// ==================== Scanning ====================

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var metadataJSON, createdAt string

	if err := row.Scan(&doc.ID, &doc.URI, &doc.Title, &doc.Content, &metadataJSON, &createdAt); err != nil {
		return nil, err
	}
	doc.CreatedAt = parseTime(createdAt)

	if err := unmarshalMetadata(metadataJSON, &doc.Metadata); err != nil {
		return nil, err
	}
	normaliseNumbers(doc.Metadata)
	return &doc, nil
}

func scanSegment(row scanner) (*domain.Segment, error) {
	var seg domain.Segment
	var vectorID sql.NullString
	var metadataJSON string

	if err := row.Scan(&seg.ID, &seg.DocumentID, &seg.Content, &seg.Ordinal, &vectorID, &metadataJSON); err != nil {
		return nil, err
	}
	if vectorID.Valid {
		id := vectorID.String
		seg.VectorID = &id
	}
	if err := unmarshalMetadata(metadataJSON, &seg.Metadata); err != nil {
		return nil, err
	}
	return &seg, nil
}

func scanVector(row scanner) (*domain.Vector, error) {
	var vec domain.Vector
	var blob []byte
	if err := row.Scan(&vec.ID, &vec.SegmentID, &vec.Model, &blob); err != nil {
		return nil, err
	}
	vec.Values = bytesToFloat32Slice(blob)
	return &vec, nil
}

func unmarshalMetadata(raw string, dst *map[string]any) error {
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return nil
}

// normaliseNumbers turns whole JSON numbers back into ints so metadata
// read from the database matches what was ingested.
func normaliseNumbers(m map[string]any) {
	for k, v := range m {
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			m[k] = int(f)
		}
	}
}

// segmentMetadataJSON encodes segment metadata without topics, which live
// in segment_topics.
func segmentMetadataJSON(seg *domain.Segment) (string, error) {
	meta := seg.Metadata
	if _, ok := meta[domain.MetaTopics]; ok {
		meta = maps.Clone(meta)
		delete(meta, domain.MetaTopics)
	}
	if len(meta) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshalling segment %s metadata: %w", seg.ID, err)
	}
	return string(b), nil
}
