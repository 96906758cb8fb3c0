package database

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryStore keeps state for the lifetime of the process only.
type memoryStore struct {
	mu            sync.Mutex
	state         *PollState
	notifications []Notification
	nextID        int64
}

// NewMemoryStore returns a Store that persists nothing across restarts.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) Ping(context.Context) error {
	return nil
}

func (m *memoryStore) LoadPollState(context.Context) (PollState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return PollState{}, false, nil
	}
	return *m.state, true, nil
}

func (m *memoryStore) SavePollState(_ context.Context, state PollState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	m.state = &state
	return nil
}

func (m *memoryStore) RecordNotification(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n.ID = m.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC().Truncate(time.Second)
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memoryStore) RecentNotifications(_ context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, 0, limit)
	for i := len(m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.notifications[i])
	}
	return out, nil
}

func (m *memoryStore) RunSQLMaintenance(ctx context.Context, before time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if !n.CreatedAt.Before(before.Truncate(time.Second)) {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
	return nil
}
