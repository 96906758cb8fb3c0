package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/edgard/homeworkbot/internal/poller"
)

// formatStatus renders the /status reply.
func formatStatus(snap poller.Snapshot) string {
	var sb strings.Builder

	last := snap.LastMessage
	if last == "" {
		last = msgNoNotifications
	}
	fmt.Fprintf(&sb, "Последнее уведомление: %s\n", last)
	fmt.Fprintf(&sb, "Изменения запрашиваются с: %s\n", time.Unix(snap.Cursor, 0).UTC().Format(time.RFC3339))

	if snap.LastPollAt.IsZero() {
		fmt.Fprintf(&sb, "Последний опрос: %s", msgNeverPolled)
	} else {
		fmt.Fprintf(&sb, "Последний опрос: %s", snap.LastPollAt.UTC().Format(time.RFC3339))
	}

	if snap.LastError != "" {
		fmt.Fprintf(&sb, "\nОшибка последнего опроса: %s", snap.LastError)
	}
	return sb.String()
}
