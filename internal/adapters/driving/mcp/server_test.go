package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

func TestNewServer(t *testing.T) {
	t.Run("nil similarity service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSimilarityService)
	})

	t.Run("similarity only creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Similarity: &mockSimilarityService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("all ports", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Similarity: &mockSimilarityService{},
			Search:     &mockSearchService{},
			Document:   &mockDocumentService{},
			Agents:     func() (driving.AgentService, error) { return &mockAgent{}, nil },
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}
