package practicum

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edgard/homeworkbot/internal/config"
	"github.com/edgard/homeworkbot/internal/homework"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(config.PracticumConfig{
		Token:    "secret",
		Endpoint: url + "/api/user_api/homework_statuses/",
		Timeout:  timeout,
	}, nil)
}

func TestHomeworkStatusesSendsAuthAndCursor(t *testing.T) {
	t.Parallel()

	var gotAuth, gotFrom, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFrom = r.URL.Query().Get("from_date")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"homeworks":[{"homework_name":"proj1","status":"reviewing"}],"current_date":1000}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL, time.Second).HomeworkStatuses(context.Background(), 1234)
	if err != nil {
		t.Fatalf("HomeworkStatuses() unexpected error: %v", err)
	}

	if gotAuth != "OAuth secret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "OAuth secret")
	}
	if gotFrom != "1234" {
		t.Errorf("from_date = %q, want 1234", gotFrom)
	}
	if gotPath != "/api/user_api/homework_statuses/" {
		t.Errorf("path = %q", gotPath)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T, want map", raw)
	}
	if n, ok := obj["current_date"].(json.Number); !ok || n.String() != "1000" {
		t.Errorf("current_date = %#v, want json.Number 1000", obj["current_date"])
	}
}

func TestHomeworkStatusesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				var statusErr *homework.UnexpectedStatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("error = %v, want *UnexpectedStatusError", err)
				}
				if statusErr.StatusCode != http.StatusInternalServerError || statusErr.Body != "boom\n" {
					t.Errorf("got status %d body %q", statusErr.StatusCode, statusErr.Body)
				}
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":"not_authenticated"}`))
			},
			check: func(t *testing.T, err error) {
				var statusErr *homework.UnexpectedStatusError
				if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
					t.Fatalf("error = %v, want 401 *UnexpectedStatusError", err)
				}
			},
		},
		{
			name: "html body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>maintenance</html>`))
			},
			check: func(t *testing.T, err error) {
				var payloadErr *homework.MalformedPayloadError
				if !errors.As(err, &payloadErr) {
					t.Fatalf("error = %v, want *MalformedPayloadError", err)
				}
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			check: func(t *testing.T, err error) {
				var payloadErr *homework.MalformedPayloadError
				if !errors.As(err, &payloadErr) {
					t.Fatalf("error = %v, want *MalformedPayloadError", err)
				}
			},
		},
		{
			name: "trailing garbage",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"homeworks":[]} {"x":1}`))
			},
			check: func(t *testing.T, err error) {
				var payloadErr *homework.MalformedPayloadError
				if !errors.As(err, &payloadErr) {
					t.Fatalf("error = %v, want *MalformedPayloadError", err)
				}
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			check: func(t *testing.T, err error) {
				var transportErr *homework.TransportError
				if !errors.As(err, &transportErr) {
					t.Fatalf("error = %v, want *TransportError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL, 200*time.Millisecond).HomeworkStatuses(context.Background(), 0)
			tt.check(t, err)
		})
	}
}

func TestHomeworkStatusesConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, time.Second).HomeworkStatuses(context.Background(), 0)
	var transportErr *homework.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
}
