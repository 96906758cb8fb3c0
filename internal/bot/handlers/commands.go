package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return replyHandler{deps: deps, command: "start", text: func() string { return msgWelcome }}.Handle
}

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return replyHandler{deps: deps, command: "help", text: func() string { return msgHelp }}.Handle
}

// NewStatusHandler returns a handler for the /status command.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return replyHandler{deps: deps, command: "status", text: func() string {
		return formatStatus(deps.Tracker.Snapshot())
	}}.Handle
}

// replyHandler answers a command in the chat it came from.
// text is evaluated per update so replies see the current tracker state.
type replyHandler struct {
	deps    HandlerDeps
	command string
	text    func() string
}

func (h replyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("command", h.command)

	if update.Message == nil {
		log.WarnContext(ctx, "Command update without message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.text()}); err != nil {
		log.ErrorContext(ctx, "Command reply not delivered", "error", err, "chat_id", chatID)
		return
	}
	log.DebugContext(ctx, "Command answered", "chat_id", chatID)
}
