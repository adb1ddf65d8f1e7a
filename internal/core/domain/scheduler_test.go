package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.Len(t, config.TaskConfigs, 2)

	reindex := config.TaskConfigs[TaskIDReindex]
	assert.True(t, reindex.Enabled)
	assert.Equal(t, 1*time.Hour, reindex.Interval)

	tag := config.TaskConfigs[TaskIDConceptTag]
	assert.True(t, tag.Enabled)
	assert.Equal(t, 24*time.Hour, tag.Interval)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.GetTaskConfig(TaskIDReindex).Enabled)

	unknown := config.GetTaskConfig("unknown-task")
	assert.False(t, unknown.Enabled)
	assert.Equal(t, time.Duration(0), unknown.Interval)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{Enabled: true}

	cfg := config.GetTaskConfig("any-task")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Interval)
}

func TestScheduledTask_Due(t *testing.T) {
	now := time.Date(2024, 9, 24, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{"past", ScheduledTask{Enabled: true, NextRun: now.Add(-time.Minute)}, true},
		{"exactly now", ScheduledTask{Enabled: true, NextRun: now}, true},
		{"future", ScheduledTask{Enabled: true, NextRun: now.Add(time.Minute)}, false},
		{"disabled", ScheduledTask{NextRun: now.Add(-time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Due(now))
		})
	}
}

func TestTaskResult_Duration(t *testing.T) {
	start := time.Date(2024, 9, 24, 12, 0, 0, 0, time.UTC)
	r := TaskResult{StartedAt: start, EndedAt: start.Add(90 * time.Second)}

	assert.Equal(t, 90*time.Second, r.Duration())
}
