package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

const defaultNoteLimit = 20

// SaveNote persists a research finding.
type SaveNote struct {
	notes driven.NoteStore
	now   func() time.Time
}

// NewSaveNote creates the save_note tool.
func NewSaveNote(notes driven.NoteStore) *SaveNote {
	return &SaveNote{notes: notes, now: time.Now}
}

func (t *SaveNote) Name() string { return "save_note" }

func (t *SaveNote) Description() string {
	return "Save a research note so it can be recalled later with list_notes."
}

func (t *SaveNote) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"body": {"type": "string", "minLength": 1}
		},
		"required": ["title", "body"]
	}`)
}

func (t *SaveNote) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}
	if strings.TrimSpace(params.Title) == "" || strings.TrimSpace(params.Body) == "" {
		return "", fmt.Errorf("%w: title and body are required", domain.ErrInvalidInput)
	}

	note := &domain.Note{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(params.Title),
		Body:      params.Body,
		CreatedAt: t.now().UTC(),
	}
	if err := t.notes.SaveNote(ctx, note); err != nil {
		return "", fmt.Errorf("save note: %w", err)
	}
	return encodeResult(map[string]string{"id": note.ID, "status": "saved"})
}

// ListNotes returns saved notes, newest first.
type ListNotes struct {
	notes driven.NoteStore
}

// NewListNotes creates the list_notes tool.
func NewListNotes(notes driven.NoteStore) *ListNotes {
	return &ListNotes{notes: notes}
}

func (t *ListNotes) Name() string { return "list_notes" }

func (t *ListNotes) Description() string {
	return "List saved research notes, newest first."
}

func (t *ListNotes) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"limit": {"type": "integer", "minimum": 1, "maximum": 100, "description": "Maximum notes (default 20)"}
		}
	}`)
}

func (t *ListNotes) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Limit int `json:"limit"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}
	if params.Limit <= 0 {
		params.Limit = defaultNoteLimit
	}

	notes, err := t.notes.ListNotes(ctx, params.Limit)
	if err != nil {
		return "", fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return encodeResult(notes)
}
