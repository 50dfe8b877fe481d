package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// NetworkErrorMessage is shown to the user whenever the transport itself
// fails. Raw transport errors are never surfaced.
const NetworkErrorMessage = "Network error. Please check your connection and try again."

var (
	// ErrUnauthenticated signals a 401 from an authenticated endpoint.
	// Callers should re-check session state rather than retry.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound signals a 404 for an addressed resource.
	ErrNotFound = errors.New("not found")
)

// ServerError carries a non-2xx status and the server-supplied error text
// decoded from an {"error": "..."} body.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *ServerError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// ResponseError converts a non-2xx response into a *ServerError, reading
// the server's error text when the body carries one. The fallback message
// is used when the body is absent or not in the expected shape.
func ResponseError(resp *http.Response, fallback string) error {
	var body struct {
		Error string `json:"error"`
	}
	message := fallback
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		message = body.Error
	}
	return &ServerError{StatusCode: resp.StatusCode, Message: message}
}

// UserMessage maps an error to the text shown to the user: server text
// passes through, transport failures collapse to the generic network
// message, anything else falls back to the default.
func UserMessage(err error, defaultMessage string) string {
	if err == nil {
		return defaultMessage
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NetworkErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultMessage
}
