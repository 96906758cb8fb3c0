// Package notifier delivers status messages to a Telegram chat.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/homeworkbot/internal/homework"
	"github.com/edgard/homeworkbot/internal/logger"
)

// MessageSender is the part of *bot.Bot the notifier needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram sends messages through the Bot API. It never retries.
type Telegram struct {
	sender  MessageSender
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a notifier. A non-positive timeout leaves the caller's deadline in charge.
func New(sender MessageSender, timeout time.Duration, log *slog.Logger) *Telegram {
	if log == nil {
		log = logger.Discard()
	}
	return &Telegram{
		sender:  sender,
		timeout: timeout,
		logger:  log.With("component", "notifier"),
	}
}

// Send delivers text to chatID. A failure is logged and returned as *homework.NotificationError.
func (t *Telegram) Send(ctx context.Context, chatID, text string) error {
	log := t.logger.With("chat_id", chatID)
	log.InfoContext(ctx, "Sending message", "text", text)

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	msg, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err)
		return &homework.NotificationError{ChatID: chatID, Err: err}
	}

	if msg != nil {
		log.DebugContext(ctx, "Message sent", "message_id", msg.ID)
	}
	return nil
}
