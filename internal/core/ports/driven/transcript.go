package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// TranscriptStore mirrors agent conversations for later inspection.
// It is write-behind only; the agent never reads its own history from it.
type TranscriptStore interface {
	// Append adds messages to the end of a session transcript.
	Append(ctx context.Context, sessionID string, msgs ...domain.Message) error

	// Read returns a session transcript in order.
	Read(ctx context.Context, sessionID string) ([]domain.Message, error)

	// Delete removes a session transcript.
	Delete(ctx context.Context, sessionID string) error
}
