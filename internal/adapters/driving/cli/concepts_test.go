package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

func TestConceptsCmd_List(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "concepts")

	require.NoError(t, err)
	assert.Contains(t, out, "climate [environment]")
	assert.Contains(t, out, "Climate change and the environment")
	assert.Contains(t, out, "terms: climate, emissions")
}

func TestConceptsCmd_Tag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "concepts", "tag")

	require.NoError(t, err)
	assert.Contains(t, out, "Tagged 42 segment(s)")
}

func TestConceptsCmd_Trends(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "concepts", "trends", "climate", "--country", "fra, deu")

	require.NoError(t, err)
	assert.Contains(t, out, "Country")
	assert.Contains(t, out, "2010s")
	assert.Contains(t, out, "2020s")
	assert.Equal(t, []string{"FRA", "DEU"}, currentMocks.concepts.lastCodes)
}

func TestConceptsCmd_TrendsJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "concepts", "trends", "climate", "--json")

	require.NoError(t, err)
	var trends []domain.ConceptTrend
	require.NoError(t, json.Unmarshal([]byte(out), &trends))
	require.Len(t, trends, 2)
	assert.Equal(t, 20, trends[1].Mentions)
}

func TestConceptsCmd_TrendsUntagged(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "concepts", "trends", "sovereignty")

	require.NoError(t, err)
	assert.Contains(t, out, `No segments tagged with "sovereignty"`)
}

func TestConceptsCmd_NotConfigured(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)

	for _, args := range [][]string{{"concepts"}, {"concepts", "tag"}, {"concepts", "trends", "climate"}} {
		_, err := runCommand(t, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "concept service not configured")
	}
}

func TestConceptsCmd_EventsList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "concepts", "events")

	require.NoError(t, err)
	assert.Contains(t, out, "Kyoto Protocol adopted [treaty] climate")
	assert.Contains(t, out, "Paris Climate Agreement")
}

func TestConceptsCmd_EventImpacts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "concepts", "events", "climate")

	require.NoError(t, err)
	assert.Contains(t, out, "Change")
	assert.Contains(t, out, "Paris Climate Agreement")
	assert.Contains(t, out, "+15")

	out, err = runCommand(t, "concepts", "events", "sovereignty")
	require.NoError(t, err)
	assert.Contains(t, out, `No world events are linked to "sovereignty"`)
}

func TestConceptsCmd_Regions(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "concepts", "regions", "climate")
	require.NoError(t, err)
	assert.Contains(t, out, "Europe")
	assert.Contains(t, out, "75.0%")

	out, err = runCommand(t, "concepts", "regions", "climate", "--json")
	require.NoError(t, err)
	var trends []domain.RegionalTrend
	require.NoError(t, json.Unmarshal([]byte(out), &trends))
	require.Len(t, trends, 1)
	assert.Equal(t, 30, trends[0].Mentioning)
}
