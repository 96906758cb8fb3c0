// Package main contains the entrypoint for the homework status bot.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/homeworkbot/internal/bot"
	"github.com/edgard/homeworkbot/internal/bot/handlers"
	"github.com/edgard/homeworkbot/internal/bot/tasks"
	"github.com/edgard/homeworkbot/internal/config"
	"github.com/edgard/homeworkbot/internal/database"
	"github.com/edgard/homeworkbot/internal/logger"
	"github.com/edgard/homeworkbot/internal/notifier"
	"github.com/edgard/homeworkbot/internal/poller"
	"github.com/edgard/homeworkbot/internal/practicum"
	"github.com/edgard/homeworkbot/internal/statusapi"
	"github.com/edgard/homeworkbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, storage, the Bot API client, the poller and the scheduler,
// then blocks until shutdown. It returns the process exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	store, closeStore, err := openStore(cfg.Database, log)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer closeStore()

	botOpts := []tgbot.Option{
		tgbot.WithSkipGetMe(),
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(context.Context, *tgbot.Bot, *models.Update) {}),
	}
	if cfg.Telegram.ServerURL != "" {
		botOpts = append(botOpts, tgbot.WithServerURL(cfg.Telegram.ServerURL))
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	sender := notifier.WithJournal(notifier.New(tg, cfg.Telegram.SendTimeout, log), store, log)
	client := practicum.NewClient(cfg.Practicum, log)
	statusPoller := poller.New(client, sender, cfg.Telegram.ChatID, log)
	tracker := poller.NewTracker(bot.RestoreState(ctx, store, time.Now(), log))

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		Poller:  statusPoller,
		Tracker: tracker,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var listener bot.Listener
	if cfg.Telegram.CommandsEnabled {
		hDeps := handlers.HandlerDeps{Logger: log, Config: cfg, Tracker: tracker}
		if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
			log.Error("Failed to register Telegram handlers", "error", err)
			return 1
		}
		listener = tg
	}

	var server bot.Server
	if cfg.HTTP.Addr != "" {
		server = statusapi.New(cfg.HTTP.Addr, tracker, store, log)
	}

	app := bot.NewBot(log, sched, listener, server)

	log.Info("Starting bot...", "fail_fast", cfg.Poller.FailFast, "commands", cfg.Telegram.CommandsEnabled, "http_addr", cfg.HTTP.Addr)
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		if errors.Is(runErr, tasks.ErrHalt) {
			log.Error("Bot halted after a failed poll", "error", runErr)
		} else {
			log.Error("Bot stopped due to error", "error", runErr)
		}
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}

// openStore opens the sqlite store, or an in-memory one when no path is configured.
func openStore(cfg config.DatabaseConfig, log *slog.Logger) (database.Store, func(), error) {
	if cfg.Path == "" {
		log.Warn("Database path is empty, poll state will not survive restarts")
		return database.NewMemoryStore(), func() {}, nil
	}

	db, err := database.NewDB(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return database.NewStore(db, log), func() { database.CloseDB(db) }, nil
}
