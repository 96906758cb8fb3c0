package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/homeworkbot/internal/logger"
)

// Store defines the interface for persistence operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// LoadPollState returns the saved loop state; found is false when nothing was saved yet.
	LoadPollState(ctx context.Context) (state PollState, found bool, err error)

	// SavePollState replaces the saved loop state.
	SavePollState(ctx context.Context, state PollState) error

	// RecordNotification appends a delivery attempt to the journal.
	RecordNotification(ctx context.Context, n Notification) error

	// RecentNotifications returns up to limit journal entries, newest first.
	RecentNotifications(ctx context.Context, limit int) ([]Notification, error)

	// RunSQLMaintenance prunes journal entries older than before and compacts the database.
	RunSQLMaintenance(ctx context.Context, before time.Time) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store backed by a connected, migrated sqlx.DB.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store"),
		now:    time.Now,
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) LoadPollState(ctx context.Context) (PollState, bool, error) {
	var row pollStateRow
	err := s.db.GetContext(ctx, &row, `SELECT cursor, last_message, updated_at FROM poll_state WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return PollState{}, false, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load poll state", "error", err)
		return PollState{}, false, fmt.Errorf("failed to load poll state: %w", err)
	}

	return PollState{
		Cursor:      row.Cursor,
		LastMessage: row.LastMessage,
		UpdatedAt:   time.Unix(row.UpdatedAt, 0).UTC(),
	}, true, nil
}

func (s *sqlxStore) SavePollState(ctx context.Context, state PollState) error {
	const query = `
		INSERT INTO poll_state (id, cursor, last_message, updated_at)
		VALUES (1, :cursor, :last_message, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			cursor = excluded.cursor,
			last_message = excluded.last_message,
			updated_at = excluded.updated_at`

	row := pollStateRow{
		Cursor:      state.Cursor,
		LastMessage: state.LastMessage,
		UpdatedAt:   s.now().Unix(),
	}
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save poll state", "cursor", state.Cursor, "error", err)
		return fmt.Errorf("failed to save poll state: %w", err)
	}

	s.logger.DebugContext(ctx, "Saved poll state", "cursor", state.Cursor)
	return nil
}

func (s *sqlxStore) RecordNotification(ctx context.Context, n Notification) error {
	const query = `
		INSERT INTO notifications (chat_id, text, delivered, error, created_at)
		VALUES (:chat_id, :text, :delivered, :error, :created_at)`

	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	row := notificationRow{
		ChatID:    n.ChatID,
		Text:      n.Text,
		Delivered: n.Delivered,
		Error:     n.Error,
		CreatedAt: createdAt.Unix(),
	}
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record notification", "chat_id", n.ChatID, "error", err)
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

func (s *sqlxStore) RecentNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, chat_id, text, delivered, error, created_at
		FROM notifications
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list notifications", "error", err)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// RunSQLMaintenance deletes old journal entries and then runs VACUUM,
// which SQLite only allows outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context, before time.Time) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before maintenance", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance...", "prune_before", before)

	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE created_at < ?`, before.Unix())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to prune notifications", "error", err)
		return fmt.Errorf("failed to prune notifications: %w", err)
	}
	pruned, _ := res.RowsAffected()

	_, err = s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed successfully", "pruned", pruned)
	return nil
}
