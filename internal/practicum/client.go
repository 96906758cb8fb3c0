// Package practicum implements the client for the homework review API.
package practicum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/edgard/homeworkbot/internal/config"
	"github.com/edgard/homeworkbot/internal/homework"
	"github.com/edgard/homeworkbot/internal/logger"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 4 << 20

// Client fetches homework statuses from the review API.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the configured endpoint. Every request is bounded by cfg.Timeout.
func NewClient(cfg config.PracticumConfig, log *slog.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.With("component", "practicum_client"),
	}
}

// HomeworkStatuses requests the statuses changed since fromDate (Unix seconds) and
// returns the decoded JSON body as-is. Numbers are decoded as json.Number.
//
// Errors are *homework.TransportError, *homework.UnexpectedStatusError or
// *homework.MalformedPayloadError.
func (c *Client) HomeworkStatuses(ctx context.Context, fromDate int64) (any, error) {
	reqURL, err := c.buildURL(fromDate)
	if err != nil {
		return nil, &homework.TransportError{URL: c.endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &homework.TransportError{URL: c.endpoint, Err: err}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "Requesting homework statuses", "endpoint", c.endpoint, "from_date", fromDate)
	startTime := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &homework.TransportError{URL: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &homework.TransportError{URL: c.endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.DebugContext(ctx, "Received homework statuses",
		"status_code", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(startTime))

	if resp.StatusCode != http.StatusOK {
		return nil, &homework.UnexpectedStatusError{URL: c.endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	payload, err := decodeJSON(body)
	if err != nil {
		return nil, &homework.MalformedPayloadError{Err: err}
	}
	return payload, nil
}

func (c *Client) buildURL(fromDate int64) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
