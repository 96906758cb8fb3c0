// Package poller implements one iteration of the poll/compare/notify loop.
//
// An iteration fetches statuses changed since the cursor, validates the answer,
// formats the most recent homework and notifies the chat when the message
// differs from the last one delivered. State is passed in and returned; the
// poller itself holds none.
package poller

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/edgard/homeworkbot/internal/homework"
	"github.com/edgard/homeworkbot/internal/logger"
)

// FailurePrefix starts every failure notification.
const FailurePrefix = "Сбой в работе программы: "

// Fetcher returns the raw decoded API answer for statuses changed since fromDate.
type Fetcher interface {
	HomeworkStatuses(ctx context.Context, fromDate int64) (any, error)
}

// Notifier delivers a message to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID, text string) error
}

// State is everything carried from one iteration to the next.
type State struct {
	// Cursor is the from_date of the next request, Unix seconds.
	Cursor int64
	// LastMessage is the last text delivered successfully, status or failure.
	LastMessage string
}

// Poller runs iterations against one API and one chat.
type Poller struct {
	fetcher  Fetcher
	notifier Notifier
	chatID   string
	logger   *slog.Logger
}

// New creates a Poller.
func New(fetcher Fetcher, notifier Notifier, chatID string, log *slog.Logger) *Poller {
	if log == nil {
		log = logger.Discard()
	}
	return &Poller{
		fetcher:  fetcher,
		notifier: notifier,
		chatID:   chatID,
		logger:   log.With("component", "poller"),
	}
}

// Poll runs one iteration and returns the next state.
//
// On success the cursor advances to the server's current_date. When fetching,
// validation or formatting fails, a failure message is sent (unless it equals
// the last delivered message), the cursor is kept, and the stage error is
// returned so the caller can choose between continuing and stopping.
// Notification failures never produce an error; they only leave LastMessage as is.
func (p *Poller) Poll(ctx context.Context, st State) (State, error) {
	log := p.logger.With("poll_id", uuid.NewString(), "from_date", st.Cursor)

	next, err := p.poll(ctx, st, log)
	if err == nil {
		return next, nil
	}

	if ctx.Err() != nil {
		log.WarnContext(ctx, "Poll interrupted", "error", err)
		return st, ctx.Err()
	}

	log.ErrorContext(ctx, "Poll failed", "error", err)
	return p.notifyChanged(ctx, st, FailureMessage(err), log), err
}

func (p *Poller) poll(ctx context.Context, st State, log *slog.Logger) (State, error) {
	raw, err := p.fetcher.HomeworkStatuses(ctx, st.Cursor)
	if err != nil {
		return st, err
	}

	resp, err := homework.CheckResponse(raw)
	if err != nil {
		return st, err
	}

	if len(resp.Homeworks) == 0 {
		log.DebugContext(ctx, "No homework status changes", "current_date", resp.CurrentDate)
	} else {
		message, err := homework.ParseStatus(resp.Homeworks[0])
		if err != nil {
			return st, err
		}
		st = p.notifyChanged(ctx, st, message, log)
	}

	st.Cursor = resp.CurrentDate
	return st, nil
}

// notifyChanged sends message unless it equals the last delivered one.
func (p *Poller) notifyChanged(ctx context.Context, st State, message string, log *slog.Logger) State {
	if message == st.LastMessage {
		log.DebugContext(ctx, "Message unchanged, not sending")
		return st
	}

	if err := p.notifier.Send(ctx, p.chatID, message); err != nil {
		log.WarnContext(ctx, "Notification not delivered", "error", err)
		return st
	}

	st.LastMessage = message
	return st
}

// FailureMessage is the chat text reporting err.
func FailureMessage(err error) string {
	return FailurePrefix + err.Error()
}
