package driven

import (
	"context"
	"encoding/json"
)

// Tool is a capability the agent can invoke.
// Execute receives arguments that already passed schema validation and
// returns a textual payload for the model.
type Tool interface {
	// Name is the identifier the model uses to call the tool.
	Name() string

	// Description tells the model what the tool does.
	Description() string

	// Parameters is the JSON schema of the arguments object.
	Parameters() json.RawMessage

	// Execute runs the tool.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}
