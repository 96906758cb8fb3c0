package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultPracticumEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultPracticumTimeout  = 30 * time.Second

	DefaultTelegramSendTimeout = 30 * time.Second

	DefaultTelegramCommands    = true
	DefaultPollInterval        = 600 * time.Second
	DefaultMaintenanceSchedule = "0 0 4 * * *" // daily at 04:00, seconds field included
	DefaultDatabasePath        = "homeworkbot.db"
	DefaultJournalRetention    = 30 * 24 * time.Hour
)

// Environment variables holding the credentials. They keep their historical
// names rather than the HWBOT_ prefix used by the other settings.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

var defaults = map[string]any{
	"log.level": DefaultLogLevel,
	"log.json":  false,

	"practicum.endpoint": DefaultPracticumEndpoint,
	"practicum.timeout":  DefaultPracticumTimeout,

	"telegram.send_timeout":     DefaultTelegramSendTimeout,
	"telegram.commands_enabled": DefaultTelegramCommands,
	"telegram.server_url":       "",

	"poller.fail_fast": false,

	"scheduler.tasks." + TaskPollStatuses + ".enabled":      true,
	"scheduler.tasks." + TaskPollStatuses + ".interval":     DefaultPollInterval,
	"scheduler.tasks." + TaskPollStatuses + ".run_on_start": true,

	"scheduler.tasks." + TaskSQLMaintenance + ".enabled":  true,
	"scheduler.tasks." + TaskSQLMaintenance + ".schedule": DefaultMaintenanceSchedule,

	"database.path":      DefaultDatabasePath,
	"database.retention": DefaultJournalRetention,
	"http.addr":          "",
}
