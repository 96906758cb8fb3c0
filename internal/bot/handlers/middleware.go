// Package handlers contains Telegram bot command handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ConfiguredChatOnly drops updates that do not come from the notification chat.
// The bot serves a single subscriber, so other chats get no answer at all.
func ConfiguredChatOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil {
				return
			}

			chatID := update.Message.Chat.ID
			if strconv.FormatInt(chatID, 10) != deps.Config.Telegram.ChatID {
				deps.Logger.With("middleware", "ConfiguredChatOnly").
					WarnContext(ctx, "Ignoring command from foreign chat", "chat_id", chatID)
				return
			}

			next(ctx, bot, update)
		}
	}
}
