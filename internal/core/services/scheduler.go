package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// taskHistoryLimit is the number of results kept per task.
const taskHistoryLimit = 100

// Scheduler manages background task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	indexer  driving.IndexService
	concepts driving.ConceptService
	tick     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration. Tasks whose
// service is nil are skipped.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	indexer driving.IndexService,
	concepts driving.ConceptService,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		indexer:  indexer,
		concepts: concepts,
		tick:     time.Minute,
		now:      time.Now,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Info("Scheduler disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx, stop)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	tasks := []struct {
		id, name string
		enabled  bool
	}{
		{domain.TaskIDReindex, "Re-index", s.indexer != nil},
		{domain.TaskIDConceptTag, "Concept tagging", s.concepts != nil},
	}

	for _, t := range tasks {
		cfg := s.config.GetTaskConfig(t.id)
		if !cfg.Enabled || !t.enabled || cfg.Interval <= 0 {
			continue
		}
		if err := s.ensureTask(ctx, t.id, t.name, cfg); err != nil {
			return err
		}
	}

	return nil
}

// ensureTask creates or updates a task in the store.
// A new task is due immediately.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  s.now(),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = s.now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stop <-chan struct{}) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks runs the enabled tasks that are due, one at a time.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.now()
	var due []domain.ScheduledTask
	for i := range tasks {
		task := tasks[i]
		if task.Due(now) {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()
	for i := range due {
		s.runTask(ctx, &due[i])
	}
}

// runTask executes a single task and records its result.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: s.now(),
	}

	var err error
	switch {
	case task.ID == domain.TaskIDReindex && s.indexer != nil:
		result.ItemsProcessed, err = s.runReindex(ctx)
	case task.ID == domain.TaskIDConceptTag && s.concepts != nil:
		result.ItemsProcessed, err = s.runConceptTag(ctx)
	default:
		logger.Warn("scheduler: no service for task %s", task.ID)
		return
	}

	result.EndedAt = s.now()
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		task.LastError = err.Error()
		logger.Warn("scheduler: task %s failed: %v", task.ID, err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
		logger.Info("scheduler: task %s processed %d item(s) in %s", task.ID, result.ItemsProcessed, result.Duration())
	}

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, taskHistoryLimit); pruneErr != nil {
		logger.Warn("scheduler: failed to prune history: %v", pruneErr)
	}
}

// runReindex embeds segments of documents that are not fully indexed.
func (s *Scheduler) runReindex(ctx context.Context) (int, error) {
	report, err := s.indexer.Index(ctx, nil, 0)
	if err != nil {
		return 0, err
	}
	if report.DocumentsFailed > 0 {
		return report.EmbeddingsCreated, fmt.Errorf("%d document(s) failed to index", report.DocumentsFailed)
	}
	return report.EmbeddingsCreated, nil
}

// runConceptTag re-tags all segments.
func (s *Scheduler) runConceptTag(ctx context.Context) (int, error) {
	return s.concepts.Tag(ctx)
}
