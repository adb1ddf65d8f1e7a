package driving

import "context"

// Scheduler embeds newly ingested speeches and retags concepts in the
// background while `rostrum serve` runs.
type Scheduler interface {
	// Start blocks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error
	// Stop waits for an in-flight task to finish.
	Stop() error
}
