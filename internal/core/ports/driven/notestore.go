package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// NoteStore persists research notes written by the agent.
type NoteStore interface {
	// SaveNote stores a note.
	SaveNote(ctx context.Context, note *domain.Note) error

	// ListNotes returns the most recent notes first, at most limit (0 = all).
	ListNotes(ctx context.Context, limit int) ([]domain.Note, error)
}
