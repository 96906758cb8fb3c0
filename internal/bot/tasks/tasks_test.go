package tasks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/edgard/homeworkbot/internal/config"
	"github.com/edgard/homeworkbot/internal/database"
	"github.com/edgard/homeworkbot/internal/homework"
	"github.com/edgard/homeworkbot/internal/logger"
	"github.com/edgard/homeworkbot/internal/notifier"
	"github.com/edgard/homeworkbot/internal/poller"
	"github.com/edgard/homeworkbot/internal/practicum"
	"github.com/edgard/homeworkbot/internal/telegram/telegramtest"
)

// fakePracticum serves scripted answers and records the from_date of each request.
type fakePracticum struct {
	mu      sync.Mutex
	answers []func(w http.ResponseWriter)
	from    []string
}

func (f *fakePracticum) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.from = append(f.from, r.URL.Query().Get("from_date"))
	answer := f.answers[0]
	if len(f.answers) > 1 {
		f.answers = f.answers[1:]
	}
	f.mu.Unlock()
	answer(w)
}

func (f *fakePracticum) fromDates() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.from, ",")
}

func jsonAnswer(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func statusAnswer(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		http.Error(w, "internal error", code)
	}
}

type harness struct {
	api     *fakePracticum
	tg      *telegramtest.Server
	store   database.Store
	tracker *poller.Tracker
	task    ScheduledTaskFunc
}

func newHarness(t *testing.T, failFast bool, answers ...func(w http.ResponseWriter)) *harness {
	t.Helper()
	return newHarnessWithLogger(t, failFast, logger.Discard(), answers...)
}

func newHarnessWithLogger(t *testing.T, failFast bool, log *slog.Logger, answers ...func(w http.ResponseWriter)) *harness {
	t.Helper()

	api := &fakePracticum{answers: answers}
	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)

	tg := telegramtest.NewServer()
	t.Cleanup(tg.Close)
	b, err := tg.NewBot()
	if err != nil {
		t.Fatalf("NewBot() unexpected error: %v", err)
	}

	cfg := &config.Config{
		Practicum: config.PracticumConfig{Token: "secret", Endpoint: apiSrv.URL, Timeout: time.Second},
		Telegram:  config.TelegramConfig{ChatID: "42", SendTimeout: time.Second},
		Poller:    config.PollerConfig{FailFast: failFast},
		Database:  config.DatabaseConfig{Retention: time.Hour},
	}

	store := database.NewMemoryStore()
	tracker := poller.NewTracker(poller.State{Cursor: 0})
	send := notifier.WithJournal(notifier.New(b, cfg.Telegram.SendTimeout, log), store, log)
	p := poller.New(practicum.NewClient(cfg.Practicum, log), send, cfg.Telegram.ChatID, log)

	deps := TaskDeps{Logger: log, Config: cfg, Store: store, Poller: p, Tracker: tracker}
	return &harness{
		api:     api,
		tg:      tg,
		store:   store,
		tracker: tracker,
		task:    RegisterAllTasks(deps)[config.TaskPollStatuses],
	}
}

const (
	proj1Reviewing = `{"homeworks":[{"homework_name":"proj1","status":"reviewing"}],"current_date":1000}`
	proj1Message   = `Изменился статус проверки работы "proj1". Работа взята на проверку ревьюером.`
)

func TestPollTaskEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newHarness(t, false,
		jsonAnswer(proj1Reviewing),
		jsonAnswer(`{"homeworks":[{"homework_name":"proj1","status":"reviewing"}],"current_date":1600}`),
	)

	if err := h.task(ctx); err != nil {
		t.Fatalf("first run unexpected error: %v", err)
	}
	sent := h.tg.Sent()
	if len(sent) != 1 || sent[0].Text != proj1Message || sent[0].ChatID != "42" {
		t.Fatalf("sent after first run = %+v", sent)
	}
	if got := h.tracker.State().Cursor; got != 1000 {
		t.Errorf("cursor = %d, want 1000", got)
	}

	if err := h.task(ctx); err != nil {
		t.Fatalf("second run unexpected error: %v", err)
	}
	if sent := h.tg.Sent(); len(sent) != 1 {
		t.Errorf("second run sent a duplicate: %+v", sent)
	}
	if got := h.tracker.State().Cursor; got != 1600 {
		t.Errorf("cursor = %d, want 1600", got)
	}

	if got := h.api.fromDates(); got != "0,1000" {
		t.Errorf("from_date sequence = %s, want 0,1000", got)
	}

	saved, found, err := h.store.LoadPollState(ctx)
	if err != nil || !found || saved.Cursor != 1600 || saved.LastMessage != proj1Message {
		t.Errorf("persisted state = %+v, found %v, err %v", saved, found, err)
	}
	journal, _ := h.store.RecentNotifications(ctx, 10)
	if len(journal) != 1 || !journal[0].Delivered {
		t.Errorf("journal = %+v", journal)
	}
}

func TestPollTaskServerErrorContinues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := newHarnessWithLogger(t, false, log, statusAnswer(http.StatusInternalServerError), jsonAnswer(proj1Reviewing))

	if err := h.task(ctx); err != nil {
		t.Fatalf("task error = %v, want nil in continue mode", err)
	}
	if got := strings.Count(logs.String(), `"level":"ERROR"`); got != 1 {
		t.Errorf("failed poll logged %d error records, want 1:\n%s", got, logs.String())
	}
	if got := h.tracker.State().Cursor; got != 0 {
		t.Errorf("cursor = %d, want unchanged 0", got)
	}
	snap := h.tracker.Snapshot()
	if !strings.Contains(snap.LastError, "status 500") || snap.Polls != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	sent := h.tg.Sent()
	if len(sent) != 1 || !strings.HasPrefix(sent[0].Text, poller.FailurePrefix) {
		t.Fatalf("failure notification = %+v", sent)
	}

	if err := h.task(ctx); err != nil {
		t.Fatalf("next run unexpected error: %v", err)
	}
	if got := h.tracker.State().Cursor; got != 1000 {
		t.Errorf("cursor after recovery = %d, want 1000", got)
	}
	if sent := h.tg.Sent(); len(sent) != 2 || sent[1].Text != proj1Message {
		t.Errorf("sent after recovery = %+v", sent)
	}
}

func TestPollTaskFailFastHalts(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true, statusAnswer(http.StatusInternalServerError))

	err := h.task(context.Background())
	if !errors.Is(err, ErrHalt) {
		t.Fatalf("task error = %v, want ErrHalt", err)
	}
	var statusErr *homework.UnexpectedStatusError
	if !errors.As(err, &statusErr) {
		t.Errorf("task error = %v, want wrapped *UnexpectedStatusError", err)
	}
	if sent := h.tg.Sent(); len(sent) != 1 {
		t.Errorf("failure notification not attempted before halting: %+v", sent)
	}
}

func TestPollTaskFailFastIgnoresEmptyList(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true, jsonAnswer(`{"homeworks":[],"current_date":50}`))

	if err := h.task(context.Background()); err != nil {
		t.Fatalf("task error = %v, want nil for empty list", err)
	}
	if sent := h.tg.Sent(); len(sent) != 0 {
		t.Errorf("sent = %+v, want nothing", sent)
	}
	if got := h.tracker.State().Cursor; got != 50 {
		t.Errorf("cursor = %d, want 50", got)
	}
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := database.NewMemoryStore()
	_ = store.RecordNotification(ctx, database.Notification{ChatID: "42", Text: "old", CreatedAt: time.Now().Add(-2 * time.Hour)})
	_ = store.RecordNotification(ctx, database.Notification{ChatID: "42", Text: "new"})

	deps := TaskDeps{
		Logger:  logger.Discard(),
		Config:  &config.Config{Database: config.DatabaseConfig{Retention: time.Hour}},
		Store:   store,
		Tracker: poller.NewTracker(poller.State{}),
	}
	if err := RegisterAllTasks(deps)[config.TaskSQLMaintenance](ctx); err != nil {
		t.Fatalf("maintenance task unexpected error: %v", err)
	}

	left, _ := store.RecentNotifications(ctx, 10)
	if len(left) != 1 || left[0].Text != "new" {
		t.Errorf("journal after maintenance = %+v", left)
	}
}
