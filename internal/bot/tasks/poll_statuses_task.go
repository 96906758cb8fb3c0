package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edgard/homeworkbot/internal/database"
)

// newPollStatusesTask creates the task that runs one poll iteration per tick.
//
// The state is read from and written back to the tracker, and persisted when it
// changed. The poller logs and reports a failed iteration itself, so the task only
// returns it with poller.fail_fast, marked with ErrHalt so the scheduler stops the bot.
func newPollStatusesTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "poll_statuses")

	return func(ctx context.Context) error {
		startTime := time.Now()
		st := deps.Tracker.State()

		next, pollErr := deps.Poller.Poll(ctx, st)
		deps.Tracker.Record(next, startTime, pollErr)

		if next != st {
			saveErr := deps.Store.SavePollState(context.WithoutCancel(ctx), database.PollState{
				Cursor:      next.Cursor,
				LastMessage: next.LastMessage,
			})
			if saveErr != nil {
				log.WarnContext(ctx, "Failed to persist poll state", "error", saveErr)
			}
		}

		duration := time.Since(startTime)

		switch {
		case pollErr == nil:
			log.InfoContext(ctx, "Poll completed", "cursor", next.Cursor, "duration", duration)
			return nil
		case errors.Is(pollErr, context.Canceled):
			log.InfoContext(ctx, "Poll cancelled", "duration", duration)
			return nil
		case deps.Config.Poller.FailFast:
			return fmt.Errorf("%w: poll failed: %w", ErrHalt, pollErr)
		default:
			log.DebugContext(ctx, "Poll failed, retrying on next tick", "duration", duration)
			return nil
		}
	}
}
