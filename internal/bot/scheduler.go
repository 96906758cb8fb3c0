package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/homeworkbot/internal/bot/tasks"
	"github.com/edgard/homeworkbot/internal/config"
)

// Scheduler manages scheduled tasks using the gocron library.
// Every job runs in singleton mode: a run that overlaps the next tick makes gocron
// skip that tick instead of starting a second run.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	halted    chan error
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a new scheduler instance using gocron.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler(gocron.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		cfg:       cfg,
		taskMap:   taskMap,
		halted:    make(chan error, 1),
	}, nil
}

// Halted delivers the first task error marked with tasks.ErrHalt.
func (s *Scheduler) Halted() <-chan error {
	return s.halted
}

// Start schedules all enabled tasks and starts the scheduler. Task runs use
// contexts derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler is already running")
	}

	s.logger.Debug("Configuring scheduler jobs...")

	if s.cfg == nil || len(s.cfg.Tasks) == 0 {
		s.logger.Warn("No scheduler tasks configured.")
		s.scheduler.Start()
		s.running = true
		return nil
	}

	names := make([]string, 0, len(s.cfg.Tasks))
	for name := range s.cfg.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	scheduledCount := 0
	for _, taskName := range names {
		taskConfig := s.cfg.Tasks[taskName]
		if !taskConfig.Enabled {
			s.logger.Info("Skipping disabled task", "task_name", taskName)
			continue
		}

		taskFunc, exists := s.taskMap[taskName]
		if !exists {
			s.logger.Warn("Scheduled task configured but not found in registry, skipping", "task_name", taskName)
			continue
		}

		definition, err := jobDefinition(taskConfig)
		if err != nil {
			s.logger.Warn("Scheduled task has no usable timing, skipping", "task_name", taskName, "error", err)
			continue
		}

		opts := []gocron.JobOption{
			gocron.WithName(taskName),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}
		if taskConfig.RunOnStart {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}

		name, fn := taskName, taskFunc
		_, err = s.scheduler.NewJob(definition, gocron.NewTask(func() { s.run(ctx, name, fn) }), opts...)
		if err != nil {
			s.logger.Error("Failed to schedule task", "task_name", taskName, "error", err)
			continue
		}

		s.logger.Info("Scheduled task", "task_name", taskName,
			"interval", taskConfig.Interval,
			"schedule", taskConfig.Schedule,
			"run_on_start", taskConfig.RunOnStart)
		scheduledCount++
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler initialized and started", "tasks_scheduled", scheduledCount)

	return nil
}

// run wraps a task with logging and halt propagation.
func (s *Scheduler) run(ctx context.Context, name string, fn tasks.ScheduledTaskFunc) {
	if ctx.Err() != nil {
		return
	}

	s.logger.Debug("Running scheduled task", "task_name", name)
	startTime := time.Now()

	taskErr := fn(ctx)
	duration := time.Since(startTime)

	if taskErr == nil {
		s.logger.Debug("Finished scheduled task", "task_name", name, "duration", duration)
		return
	}

	s.logger.Error("Scheduled task failed", "task_name", name, "error", taskErr, "duration", duration)
	if errors.Is(taskErr, tasks.ErrHalt) {
		select {
		case s.halted <- taskErr:
		default:
		}
	}
}

// Stop stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("Scheduler is not running, nothing to stop.")
		return nil
	}

	s.logger.Debug("Stopping scheduler gracefully (waiting for jobs)...")
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}

func jobDefinition(task config.TaskConfig) (gocron.JobDefinition, error) {
	switch {
	case task.Interval > 0:
		return gocron.DurationJob(task.Interval), nil
	case task.Schedule != "":
		// true = the expression includes a seconds field
		return gocron.CronJob(task.Schedule, true), nil
	default:
		return nil, errors.New("neither interval nor schedule set")
	}
}
