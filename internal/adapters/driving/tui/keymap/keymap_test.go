package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.Equal(t, []string{"q", "ctrl+c"}, km.Quit.Keys())
	assert.Equal(t, []string{"s"}, km.Similar.Keys())
	assert.Equal(t, []string{"/"}, km.Filter.Keys())
	assert.Equal(t, "similar", km.Similar.Help().Desc)
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.Contains(t, km.ResultsHelp(), km.Similar)

	total := 0
	for _, group := range km.FullHelp() {
		total += len(group)
	}
	assert.Equal(t, 10, total)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		key  string
		want bool
	}{
		{"up", true},
		{"k", true},
		{"down", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.key, km.Up))
		})
	}
}
