// Package support submits support/contact requests. The endpoint accepts
// unauthenticated callers; the server's answer (including the current
// "feature disabled" notice) is surfaced verbatim.
package support

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/jobtrackapp/go-jobtrack-client/api"
)

// Request is a support form submission.
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type Client struct {
	endpoints api.Endpoints
	client    api.Doer
}

type ClientOption func(*Client)

func WithHTTPClient(client api.Doer) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

func NewClient(endpoints api.Endpoints, options ...ClientOption) *Client {
	c := &Client{
		endpoints: endpoints,
		client:    http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Submit posts the support request. A non-2xx answer comes back as a
// *api.ServerError carrying the server's message.
func (c *Client) Submit(ctx context.Context, request Request) error {
	body, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "[support.Submit] marshal")
	}

	req, err := api.NewRequest(ctx, http.MethodPost, c.endpoints.Support(), bytes.NewReader(body), "", true)
	if err != nil {
		return errors.Wrap(err, "[support.Submit] build request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "[support.Submit] request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return api.ResponseError(resp, "Failed to submit support request")
	}
	return nil
}
