package api

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// AuthHeaders builds the header set for an API request. The bearer header
// is only present when a token is held. The JSON content type is omitted
// for multipart uploads, where the body writer must set the header itself
// with its boundary parameter.
func AuthHeaders(token string, includeContentType bool) http.Header {
	headers := http.Header{}
	if token != "" {
		headers.Set(headerAuthorization, "Bearer "+token)
	}
	if includeContentType {
		headers.Set(headerContentType, contentTypeJSON)
	}
	return headers
}

// NewRequest builds a request carrying the standard headers plus a
// generated request ID for backend log correlation.
func NewRequest(ctx context.Context, method, url string, body io.Reader, token string, jsonBody bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header = AuthHeaders(token, jsonBody)
	req.Header.Set(headerRequestID, uuid.New().String())
	return req, nil
}
