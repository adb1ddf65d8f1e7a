package driving

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// AgentService answers research questions with a tool-calling agent.
type AgentService interface {
	// Ask appends the question to the conversation and runs the agent until
	// it answers or reaches its step limit.
	Ask(ctx context.Context, question string) (*domain.AgentOutcome, error)

	// Reset clears the conversation back to its system-seeded state.
	Reset()
}
