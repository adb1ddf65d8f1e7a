package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// SchedulerStore keeps background reindex and concept tagging tasks
// across restarts.
type SchedulerStore interface {
	// GetTask returns nil and no error for an unknown task.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)
	// SaveTask upserts by ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error
	DeleteTask(ctx context.Context, taskID string) error

	RecordResult(ctx context.Context, result *domain.TaskResult) error
	// GetTaskHistory returns the newest runs first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
	// PruneHistory keeps the newest keep runs of each task.
	PruneHistory(ctx context.Context, keep int) error
}
