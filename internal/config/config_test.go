package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv(EnvPracticumToken, "practicum-token")
	t.Setenv(EnvTelegramToken, "123456:telegram-token")
	t.Setenv(EnvTelegramChatID, "42")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load() unexpected error: %v", err)
	}

	if cfg.Practicum.Token != "practicum-token" || cfg.Telegram.Token != "123456:telegram-token" || cfg.Telegram.ChatID != "42" {
		t.Errorf("credentials not loaded from env: %+v %+v", cfg.Practicum, cfg.Telegram)
	}
	if cfg.Practicum.Endpoint != DefaultPracticumEndpoint {
		t.Errorf("Endpoint = %q, want %q", cfg.Practicum.Endpoint, DefaultPracticumEndpoint)
	}
	if cfg.Practicum.Timeout != DefaultPracticumTimeout {
		t.Errorf("Practicum.Timeout = %v, want %v", cfg.Practicum.Timeout, DefaultPracticumTimeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Poller.FailFast {
		t.Error("Poller.FailFast should default to false")
	}

	poll := cfg.Scheduler.Tasks[TaskPollStatuses]
	if !poll.Enabled || poll.Interval != 600*time.Second || !poll.RunOnStart {
		t.Errorf("poll task = %+v, want enabled every 600s from start", poll)
	}
	maint := cfg.Scheduler.Tasks[TaskSQLMaintenance]
	if !maint.Enabled || maint.Schedule != DefaultMaintenanceSchedule {
		t.Errorf("maintenance task = %+v", maint)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv(EnvPracticumToken, "")
	t.Setenv(EnvTelegramToken, "token")
	t.Setenv(EnvTelegramChatID, "")

	_, err := load(viper.New(), t.TempDir())
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("load() error = %v, want ErrConfiguration", err)
	}
	for _, name := range []string{EnvPracticumToken, EnvTelegramChatID} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
	if strings.Contains(err.Error(), EnvTelegramToken+",") {
		t.Errorf("error %q names a variable that is set", err)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	setCredentials(t)
	dir := writeConfig(t, `
log:
  level: debug
  json: true
poller:
  fail_fast: true
practicum:
  timeout: 5s
scheduler:
  tasks:
    poll_statuses:
      interval: 1m
    sql_maintenance:
      enabled: false
database:
  path: ""
http:
  addr: "127.0.0.1:9090"
`)
	t.Setenv("HWBOT_TELEGRAM_SEND_TIMEOUT", "7s")

	cfg, err := load(viper.New(), dir)
	if err != nil {
		t.Fatalf("load() unexpected error: %v", err)
	}

	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Poller.FailFast {
		t.Error("Poller.FailFast not read from file")
	}
	if cfg.Practicum.Timeout != 5*time.Second {
		t.Errorf("Practicum.Timeout = %v, want 5s", cfg.Practicum.Timeout)
	}
	if cfg.Telegram.SendTimeout != 7*time.Second {
		t.Errorf("Telegram.SendTimeout = %v, want 7s from env", cfg.Telegram.SendTimeout)
	}
	if got := cfg.Scheduler.Tasks[TaskPollStatuses].Interval; got != time.Minute {
		t.Errorf("poll interval = %v, want 1m", got)
	}
	if cfg.Scheduler.Tasks[TaskSQLMaintenance].Enabled {
		t.Error("maintenance task should be disabled")
	}
	if cfg.Database.Path != "" {
		t.Errorf("Database.Path = %q, want empty", cfg.Database.Path)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9090" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad log level", body: "log:\n  level: verbose\n"},
		{name: "timeout too short", body: "practicum:\n  timeout: 10ms\n"},
		{name: "bad endpoint", body: "practicum:\n  endpoint: not a url\n"},
		{name: "poll task disabled", body: "scheduler:\n  tasks:\n    poll_statuses:\n      enabled: false\n"},
		{name: "task without timing", body: "scheduler:\n  tasks:\n    extra:\n      enabled: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCredentials(t)
			_, err := load(viper.New(), writeConfig(t, tt.body))
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("load() error = %v, want ErrConfiguration", err)
			}
		})
	}
}
