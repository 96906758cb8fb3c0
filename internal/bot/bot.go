// Package bot implements lifecycle management and component orchestration
// for the homework status bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/homeworkbot/internal/database"
	"github.com/edgard/homeworkbot/internal/poller"
)

// Listener receives Telegram updates until ctx is done. *bot.Bot implements it.
type Listener interface {
	Start(ctx context.Context)
}

// Server is a component that serves until ctx is done.
type Server interface {
	Run(ctx context.Context) error
}

// Bot owns the running components: the scheduler and, when enabled, the
// Telegram command listener and the status server.
type Bot struct {
	logger    *slog.Logger
	scheduler *Scheduler
	listener  Listener
	server    Server
}

// NewBot creates the orchestrator. listener and server may be nil when disabled.
func NewBot(logger *slog.Logger, scheduler *Scheduler, listener Listener, server Server) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		scheduler: scheduler,
		listener:  listener,
		server:    server,
	}
}

// Run starts all components and blocks until ctx is cancelled or a component fails.
// A halting task error from the scheduler is returned as is.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		var runErr error
		select {
		case <-gCtx.Done():
			b.logger.Info("Shutdown signal received, stopping scheduler...")
		case runErr = <-b.scheduler.Halted():
			b.logger.Error("Scheduler halted by task failure", "error", runErr)
		}

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return runErr
	})

	if b.listener != nil {
		g.Go(func() error {
			b.logger.Info("Starting Telegram bot listener...")
			b.listener.Start(gCtx)
			b.logger.Info("Telegram bot listener stopped.")

			if gCtx.Err() == nil {
				b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
				return errors.New("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	if b.server != nil {
		g.Go(func() error {
			return b.server.Run(gCtx)
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// RestoreState returns the persisted loop state, or a fresh one starting at now
// when nothing was saved or the store cannot be read.
func RestoreState(ctx context.Context, store database.Store, now time.Time, logger *slog.Logger) poller.State {
	saved, found, err := store.LoadPollState(ctx)
	switch {
	case err != nil:
		logger.Warn("Failed to load saved poll state, starting fresh", "error", err)
	case found:
		logger.Info("Restored poll state", "cursor", saved.Cursor, "updated_at", saved.UpdatedAt)
		return poller.State{Cursor: saved.Cursor, LastMessage: saved.LastMessage}
	default:
		logger.Info("No saved poll state, starting from now")
	}
	return poller.State{Cursor: now.Unix()}
}
