// Package config provides configuration loading, validation, and defaults
// for the homework status bot. Values come from defaults, an optional
// config.yaml and environment variables.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration wraps every error returned by Load.
var ErrConfiguration = errors.New("configuration error")

// Scheduled task names, shared by the config file and the task registry.
const (
	TaskPollStatuses   = "poll_statuses"
	TaskSQLMaintenance = "sql_maintenance"
)

// Config defines the application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Practicum PracticumConfig `mapstructure:"practicum"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Poller    PollerConfig    `mapstructure:"poller"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// PracticumConfig describes the homework review API.
type PracticumConfig struct {
	Token    string        `mapstructure:"token"    validate:"required"`
	Endpoint string        `mapstructure:"endpoint" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// TelegramConfig describes the notification chat and the bot.
type TelegramConfig struct {
	Token           string        `mapstructure:"token"            validate:"required"`
	ChatID          string        `mapstructure:"chat_id"          validate:"required"`
	SendTimeout     time.Duration `mapstructure:"send_timeout"     validate:"min=1s,max=5m"`
	CommandsEnabled bool          `mapstructure:"commands_enabled"`
	// ServerURL overrides the Bot API address; empty means api.telegram.org.
	ServerURL string `mapstructure:"server_url" validate:"omitempty,url"`
}

// PollerConfig controls the failure model of the poll loop.
type PollerConfig struct {
	// FailFast stops the bot after the first failed iteration instead of retrying on the next tick.
	FailFast bool `mapstructure:"fail_fast"`
}

// SchedulerConfig lists the scheduled tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig schedules one task either on a fixed interval or on a cron expression.
type TaskConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"     validate:"omitempty,min=1s"`
	Schedule   string        `mapstructure:"schedule"`
	RunOnStart bool          `mapstructure:"run_on_start"`
}

// DatabaseConfig locates the state database. With a path set, a restart resumes from the
// saved cursor and last message instead of the current time, so changes made while the bot
// was down are still reported. An empty path keeps state in memory only.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	// Retention is how long notification journal entries survive maintenance.
	Retention time.Duration `mapstructure:"retention" validate:"min=1h"`
}

// HTTPConfig controls the status server. An empty address disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}
