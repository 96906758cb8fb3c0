// Package tasks implements the scheduled tasks of the homework status bot:
// the status poll and database maintenance.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/homeworkbot/internal/config"
	"github.com/edgard/homeworkbot/internal/database"
	"github.com/edgard/homeworkbot/internal/poller"
)

// StatusPoller runs one poll iteration.
type StatusPoller interface {
	Poll(ctx context.Context, st poller.State) (poller.State, error)
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Poller  StatusPoller
	Tracker *poller.Tracker
}
