package homework

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxBodyInError bounds how much of an unexpected response body ends up in error text.
const maxBodyInError = 512

// TransportError reports that the request to the review API could not be completed
// (connection refused, DNS failure, timeout, interrupted body).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnexpectedStatusError reports a non-200 response from the review API.
type UnexpectedStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	body := e.Body
	if len(body) > maxBodyInError {
		n := maxBodyInError
		for n > 0 && !utf8.RuneStart(body[n]) {
			n--
		}
		body = body[:n] + "..."
	}
	// The text ends up in a Telegram message, which must be valid UTF-8.
	body = strings.ToValidUTF8(body, "\uFFFD")
	return fmt.Sprintf("unexpected response from %s: status %d, body: %s", e.URL, e.StatusCode, body)
}

// MalformedPayloadError reports a response body that is not valid JSON.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("response body is not valid JSON: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

// SchemaError reports JSON that does not match the expected contract.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "invalid API response: " + e.Reason
	}
	return fmt.Sprintf("invalid API response: field %q %s", e.Field, e.Reason)
}

// UnknownStatusError reports a homework status outside the verdict table.
type UnknownStatusError struct {
	Homework string
	Status   string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("homework %q has unknown status %q", e.Homework, e.Status)
}

// NotificationError reports a failed delivery to the chat.
type NotificationError struct {
	ChatID string
	Err    error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("failed to send message to chat %s: %v", e.ChatID, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
