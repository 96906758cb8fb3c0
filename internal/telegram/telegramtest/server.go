// Package telegramtest provides a fake Telegram Bot API server for tests.
package telegramtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
)

// Token is accepted by the fake server.
const Token = "123456:test-token"

// SentMessage is one recorded sendMessage call.
type SentMessage struct {
	ChatID string
	Text   string
}

// Server records sendMessage calls and can be switched to fail them.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	sent     []SentMessage
	failSend bool
}

// NewServer starts a fake Bot API. Close it when done.
func NewServer() *Server {
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Options returns the bot options that point a *bot.Bot at this server.
func (s *Server) Options() []bot.Option {
	return []bot.Option{
		bot.WithServerURL(s.URL),
		bot.WithSkipGetMe(),
	}
}

// NewBot creates a bot talking to this server.
func (s *Server) NewBot(opts ...bot.Option) (*bot.Bot, error) {
	return bot.New(Token, append(s.Options(), opts...)...)
}

// FailSend makes subsequent sendMessage calls fail (or succeed again).
func (s *Server) FailSend(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSend = fail
}

// Sent returns a copy of the recorded messages.
func (s *Server) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + Token + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error_code": 401, "description": "Unauthorized"})
		return
	}

	switch method := strings.TrimPrefix(r.URL.Path, prefix); method {
	case "getMe":
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": map[string]any{
			"id": 1, "is_bot": true, "first_name": "Homework", "username": "homework_bot",
		}})
	case "sendMessage":
		s.sendMessage(w, r)
	case "getUpdates":
		select {
		case <-r.Context().Done():
		case <-time.After(50 * time.Millisecond):
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": []any{}})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": true})
	}
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: " + err.Error()})
			return
		}
	}
	msg := SentMessage{ChatID: r.FormValue("chat_id"), Text: r.FormValue("text")}

	s.mu.Lock()
	fail := s.failSend
	if !fail {
		s.sent = append(s.sent, msg)
	}
	id := len(s.sent)
	s.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": map[string]any{
		"message_id": id,
		"date":       time.Now().Unix(),
		"chat":       map[string]any{"id": 42, "type": "private"},
		"text":       msg.Text,
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
