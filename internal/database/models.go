package database

import "time"

// PollState is the persisted loop state. There is at most one row.
type PollState struct {
	Cursor      int64     `db:"cursor"`
	LastMessage string    `db:"last_message"`
	UpdatedAt   time.Time `db:"-"`
}

// Notification is one delivery attempt recorded in the journal.
type Notification struct {
	ID        int64     `db:"id"`
	ChatID    string    `db:"chat_id"`
	Text      string    `db:"text"`
	Delivered bool      `db:"delivered"`
	Error     string    `db:"error"`
	CreatedAt time.Time `db:"-"`
}

// Timestamps are stored as Unix seconds.
type pollStateRow struct {
	Cursor      int64  `db:"cursor"`
	LastMessage string `db:"last_message"`
	UpdatedAt   int64  `db:"updated_at"`
}

type notificationRow struct {
	ID        int64  `db:"id"`
	ChatID    string `db:"chat_id"`
	Text      string `db:"text"`
	Delivered bool   `db:"delivered"`
	Error     string `db:"error"`
	CreatedAt int64  `db:"created_at"`
}

func (r notificationRow) model() Notification {
	return Notification{
		ID:        r.ID,
		ChatID:    r.ChatID,
		Text:      r.Text,
		Delivered: r.Delivered,
		Error:     r.Error,
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
	}
}
