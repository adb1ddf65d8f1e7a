package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// ==================== Note Store ====================

// SaveNote stores a note, replacing any note with the same ID.
func (s *Store) SaveNote(ctx context.Context, note *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notes (id, title, body, created_at)
		VALUES (?, ?, ?, ?)
	`, note.ID, note.Title, note.Body, formatTime(note.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// ListNotes returns the newest notes first. A limit of 0 returns all.
func (s *Store) ListNotes(ctx context.Context, limit int) ([]domain.Note, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, created_at FROM notes
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var n domain.Note
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		n.CreatedAt = parseTime(createdAt)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

// ==================== Transcript Store ====================

// Append adds messages to the end of a session transcript.
func (s *Store) Append(ctx context.Context, sessionID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var next int
		err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(seq), -1) + 1 FROM transcripts WHERE session_id = ?", sessionID).Scan(&next)
		if err != nil {
			return fmt.Errorf("reading transcript position: %w", err)
		}

		now := formatTime(time.Now())
		for i, m := range msgs {
			b, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshalling message: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO transcripts (session_id, seq, message, created_at) VALUES (?, ?, ?, ?)",
				sessionID, next+i, string(b), now)
			if err != nil {
				return fmt.Errorf("appending message: %w", err)
			}
		}
		return nil
	})
}

// Read returns a session transcript in order. Unknown sessions are empty.
func (s *Store) Read(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT message FROM transcripts WHERE session_id = ? ORDER BY seq", sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying transcript: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		var m domain.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("unmarshalling message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transcript: %w", err)
	}
	return msgs, nil
}

// Delete removes a session transcript.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transcripts WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("deleting transcript: %w", err)
	}
	return nil
}
