package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
	assert.Contains(t, documentCmd.Aliases, "documents")
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "content", "details", "delete", "open"}, commandNames)
}

func TestDocumentList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "list", "--country", "fra", "--from", "2000", "-n", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Title: France, 78th session (2023)")
	assert.Contains(t, out, "Speech: France, 2023")
	assert.Contains(t, out, "Total: 1 documents")

	f := currentMocks.documents.lastFilter
	assert.Equal(t, []string{"FRA"}, f.CountryCodes)
	assert.Equal(t, 2000, f.YearFrom)
	assert.Equal(t, 5, f.Limit)
}

func TestDocumentList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "document", "list", "--country", "xxx")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents found.")
}

func TestDocumentGet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "document", "get", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "URI:      /speeches/FRA_78_2023.txt")
	assert.Contains(t, out, "Created:  2024-01-02 03:04:05")
	assert.Contains(t, out, "country_code: FRA")
	assert.Contains(t, out, "year: 2023")
}

func TestDocumentGet_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "document", "get", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get document")
}

func TestDocumentGet_RequiresArg(t *testing.T) {
	_, err := runCommand(t, "document", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentContent(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "document", "content", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Mr President, climate change threatens us all.")
}

func TestDocumentDetails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "document", "details", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Segments:    4")
	assert.Contains(t, out, "Embedded:    4 (indexed)")
}

func TestDocumentDelete(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "document", "delete", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document doc-1 deleted.")
	assert.Equal(t, []string{"doc-1"}, currentMocks.documents.deleted)
}

func TestDocumentOpen(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "document", "open", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Opened document doc-1")
	assert.Equal(t, []string{"doc-1"}, currentMocks.documents.opened)
}

func TestDocumentCmds_NotConfigured(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)

	cases := [][]string{
		{"document", "list"},
		{"document", "get", "doc-1"},
		{"document", "content", "doc-1"},
		{"document", "details", "doc-1"},
		{"document", "delete", "doc-1"},
		{"document", "open", "doc-1"},
	}
	for _, args := range cases {
		_, err := runCommand(t, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "document service not configured")
	}
}
