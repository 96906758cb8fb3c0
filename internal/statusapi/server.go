// Package statusapi serves a read-only HTTP view of the poll loop.
package statusapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edgard/homeworkbot/internal/database"
	"github.com/edgard/homeworkbot/internal/poller"
)

const (
	defaultLimit    = 20
	maxLimit        = 100
	shutdownTimeout = 5 * time.Second
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Cursor      int64      `json:"cursor"`
	CursorTime  time.Time  `json:"cursor_time"`
	LastMessage string     `json:"last_message"`
	LastPollAt  *time.Time `json:"last_poll_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Polls       int        `json:"polls"`
}

// NotificationResponse is one journal entry of GET /notifications.
type NotificationResponse struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	Text      string    `json:"text"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Server exposes health, loop status and the notification journal.
type Server struct {
	addr    string
	tracker *poller.Tracker
	store   database.Store
	logger  *slog.Logger
	router  *gin.Engine
}

// New builds the router. Call Run to start listening on addr.
func New(addr string, tracker *poller.Tracker, store database.Store, logger *slog.Logger) *Server {
	s := &Server{
		addr:    addr,
		tracker: tracker,
		store:   store,
		logger:  logger.With("component", "status_api"),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.GET("/healthz", s.health)
	router.GET("/status", s.status)
	router.GET("/notifications", s.notifications)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "path": c.Request.URL.Path})
	})
	s.router = router

	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	s.logger.Info("Status server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) status(c *gin.Context) {
	snap := s.tracker.Snapshot()
	resp := StatusResponse{
		Cursor:      snap.Cursor,
		CursorTime:  time.Unix(snap.Cursor, 0).UTC(),
		LastMessage: snap.LastMessage,
		LastError:   snap.LastError,
		Polls:       snap.Polls,
	}
	if !snap.LastPollAt.IsZero() {
		at := snap.LastPollAt.UTC()
		resp.LastPollAt = &at
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) notifications(c *gin.Context) {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit)})
			return
		}
		limit = n
	}

	entries, err := s.store.RecentNotifications(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list notifications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	resp := make([]NotificationResponse, 0, len(entries))
	for _, n := range entries {
		resp = append(resp, NotificationResponse{
			ID:        n.ID,
			ChatID:    n.ChatID,
			Text:      n.Text,
			Delivered: n.Delivered,
			Error:     n.Error,
			CreatedAt: n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}
