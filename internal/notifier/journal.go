package notifier

import (
	"context"
	"log/slog"

	"github.com/edgard/homeworkbot/internal/database"
	"github.com/edgard/homeworkbot/internal/logger"
)

// Sender is anything that can deliver text to a chat.
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}

// Journaled records every delivery attempt of the wrapped sender in the store.
// Journal write failures are logged and never change the delivery result.
type Journaled struct {
	next   Sender
	store  database.Store
	logger *slog.Logger
}

// WithJournal wraps next so that each attempt is appended to the notification journal.
func WithJournal(next Sender, store database.Store, log *slog.Logger) *Journaled {
	if log == nil {
		log = logger.Discard()
	}
	return &Journaled{
		next:   next,
		store:  store,
		logger: log.With("component", "notification_journal"),
	}
}

// Send delivers through the wrapped sender and records the outcome.
func (j *Journaled) Send(ctx context.Context, chatID, text string) error {
	sendErr := j.next.Send(ctx, chatID, text)

	entry := database.Notification{
		ChatID:    chatID,
		Text:      text,
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}

	// The journal write must not be cut short by a send that used up the deadline.
	if err := j.store.RecordNotification(context.WithoutCancel(ctx), entry); err != nil {
		j.logger.WarnContext(ctx, "Failed to record notification", "error", err)
	}

	return sendErr
}
