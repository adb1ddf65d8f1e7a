package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

func TestNotesCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "notes")

	require.NoError(t, err)
	assert.Contains(t, out, "No notes yet.")
}

func TestNotesCmd_List(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	currentMocks.notes.notes = []domain.Note{
		{ID: "n1", Title: "Small islands", Body: "Climate framing shifts in the 2000s.", CreatedAt: time.Now()},
		{ID: "n2", Title: "Sovereignty", Body: "Peaks after 1991.", CreatedAt: time.Now()},
	}

	out, err := runCommand(t, "notes", "-n", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Small islands")
	assert.Contains(t, out, "Climate framing shifts in the 2000s.")
	assert.NotContains(t, out, "Sovereignty")
}

func TestNotesCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	currentMocks.notes.notes = []domain.Note{{ID: "n1", Title: "Small islands", Body: "body"}}

	out, err := runCommand(t, "notes", "--json")

	require.NoError(t, err)
	var notes []domain.Note
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "n1", notes[0].ID)
}

func TestNotesCmd_NotConfigured(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)

	_, err := runCommand(t, "notes")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "note store not configured")
}
