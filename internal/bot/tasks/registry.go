package tasks

import (
	"context"
	"errors"

	"github.com/edgard/homeworkbot/internal/config"
)

// ErrHalt marks a task error that must stop the whole bot, not just this run.
var ErrHalt = errors.New("halting scheduler")

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns all scheduled tasks keyed by the name used in the
// scheduler section of the configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		config.TaskPollStatuses:   newPollStatusesTask(deps),
		config.TaskSQLMaintenance: newSQLMaintenanceTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
