package driven

import "github.com/custodia-labs/rostrum/internal/core/domain"

// ConfigStore holds rostrum settings such as providers, chunk sizes and
// storage DSNs. Keys use dot notation ("embedding.provider").
// The typed getters return the zero value for missing or mistyped keys.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat widens integers.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set persists immediately.
	Set(key string, value any) error
	Save() error
	Load() error
	// Path is the backing file, or ":memory:".
	Path() string
}

// AgentConfigStore loads agent personas.
type AgentConfigStore interface {
	// Load returns the validated persona with the given name.
	// Fails with domain.ErrNotFound when no such persona exists and with
	// domain.ErrInvalidAgentConfig when it fails validation.
	Load(name string) (*domain.AgentConfig, error)

	// List returns the names of all available personas.
	List() ([]string, error)
}
