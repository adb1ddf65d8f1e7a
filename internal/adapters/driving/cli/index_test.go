package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

func TestIndexCmd_All(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "index")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 2 processed, 1 failed")
	assert.Contains(t, out, "Segments:  10 created, 0 reused")
	assert.Contains(t, out, "Vectors:   10 created, 3 already embedded")
	assert.Contains(t, out, "! doc-bad: mock failure")
	require.Len(t, currentMocks.index.calls, 1)
	assert.Empty(t, currentMocks.index.calls[0])
	assert.Equal(t, 0, currentMocks.index.limit)
}

func TestIndexCmd_SelectedWithLimit(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "index", "--limit", "5", "doc-1", "doc-2")

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"doc-1", "doc-2"}}, currentMocks.index.calls)
	assert.Equal(t, 5, currentMocks.index.limit)
}

func TestIndexCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	currentMocks.index.err = domain.ErrEmbeddingUnavailable

	_, err := runCommand(t, "index")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "indexing failed")
}

func TestIndexCmd_NotConfigured(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)

	_, err := runCommand(t, "index")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index service not configured")
}
