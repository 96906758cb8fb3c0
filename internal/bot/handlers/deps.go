package handlers

import (
	"log/slog"

	"github.com/edgard/homeworkbot/internal/config"
	"github.com/edgard/homeworkbot/internal/poller"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Tracker *poller.Tracker
}
