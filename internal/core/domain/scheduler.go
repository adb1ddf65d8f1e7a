package domain

import "time"

// Built-in background tasks.
const (
	// TaskIDReindex embeds segments of newly ingested speeches.
	TaskIDReindex = "reindex"

	// TaskIDConceptTag re-scores all segments against the concept dictionary.
	TaskIDConceptTag = "concept-tag"
)

// ScheduledTask is the persisted state of a recurring task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time
	// LastError is empty after a successful run.
	LastError string
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !now.Before(t.NextRun)
}

// TaskResult records one run of a task.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string
	// ItemsProcessed counts segments embedded or tagged.
	ItemsProcessed int
}

// Duration is how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig switches the scheduler and its tasks on and off.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// TaskConfig configures one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the zero TaskConfig for unknown tasks.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig reindexes hourly and retags concepts daily.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDReindex:    {Enabled: true, Interval: time.Hour},
			TaskIDConceptTag: {Enabled: true, Interval: 24 * time.Hour},
		},
	}
}
