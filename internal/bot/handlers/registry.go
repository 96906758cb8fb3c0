package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware and match rules.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns all bot commands keyed by their slash name.
// Every command answers only in the configured chat.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	chatOnly := []tgbot.Middleware{ConfiguredChatOnly(deps)}

	command := func(pattern string, h tgbot.HandlerFunc) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  chatOnly,
		}
	}

	return map[string]RegisteredHandler{
		"/start":  command("start", NewStartHandler(deps)),
		"/help":   command("help", NewHelpHandler(deps)),
		"/status": command("status", NewStatusHandler(deps)),
	}
}
