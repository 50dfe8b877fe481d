package applications

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"

	"github.com/jobtrackapp/go-jobtrack-client/api"
)

// TokenProvider supplies the current access token. *session.Manager
// satisfies it; requests go out unauthenticated when the token is empty.
type TokenProvider interface {
	Token() string
}

// Client calls the job-application endpoints with bearer credentials
// taken from the token provider on every request.
type Client struct {
	endpoints api.Endpoints
	client    api.Doer
	tokens    TokenProvider
}

// ClientOption modifies a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the transport (primarily for testing).
func WithHTTPClient(client api.Doer) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a job-applications client.
func NewClient(endpoints api.Endpoints, tokens TokenProvider, options ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("[applications.NewClient] token provider is required")
	}

	c := &Client{
		endpoints: endpoints,
		client:    http.DefaultClient,
		tokens:    tokens,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// List returns all applications, newest applied date first.
func (c *Client) List(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := c.getJSON(ctx, c.endpoints.RecentApplications(), &apps); err != nil {
		return nil, errors.Wrap(err, "[Client.List]")
	}
	return apps, nil
}

// Get fetches a single application by ID.
func (c *Client) Get(ctx context.Context, id int64) (*Application, error) {
	var app Application
	if err := c.getJSON(ctx, c.endpoints.Application(id), &app); err != nil {
		return nil, errors.Wrap(err, "[Client.Get]")
	}
	return &app, nil
}

// Create submits a new application, optionally with a resume attachment.
// The body is a multipart form either way; the JSON content-type header
// is omitted so the multipart writer can set its own with the boundary.
func (c *Client) Create(ctx context.Context, draft Draft, resume *ResumeFile) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	for key, value := range draft.formValues() {
		if err := form.WriteField(key, value); err != nil {
			return errors.Wrap(err, "[Client.Create] write field")
		}
	}
	if resume != nil {
		part, err := form.CreateFormFile("resume", resume.Name)
		if err != nil {
			return errors.Wrap(err, "[Client.Create] create file part")
		}
		if _, err := io.Copy(part, resume.Content); err != nil {
			return errors.Wrap(err, "[Client.Create] copy resume")
		}
	}
	if err := form.Close(); err != nil {
		return errors.Wrap(err, "[Client.Create] close form")
	}

	req, err := api.NewRequest(ctx, http.MethodPost, c.endpoints.AddApplication(), &buf, c.tokens.Token(), false)
	if err != nil {
		return errors.Wrap(err, "[Client.Create] build request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.Create] request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return api.ResponseError(resp, "Failed to submit application")
	}
	return nil
}

// Update replaces an application's fields and returns the updated record.
func (c *Client) Update(ctx context.Context, id int64, draft Draft) (*Application, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Update] marshal")
	}

	req, err := api.NewRequest(ctx, http.MethodPut, c.endpoints.UpdateApplication(id), bytes.NewReader(body), c.tokens.Token(), true)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Update] build request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Update] request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, api.ResponseError(resp, "Failed to update application")
	}

	var app Application
	if err := json.NewDecoder(resp.Body).Decode(&app); err != nil {
		return nil, errors.Wrap(err, "[Client.Update] decode response")
	}
	return &app, nil
}

// Delete removes an application.
func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := api.NewRequest(ctx, http.MethodDelete, c.endpoints.DeleteApplication(id), nil, c.tokens.Token(), true)
	if err != nil {
		return errors.Wrap(err, "[Client.Delete] build request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.Delete] request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return api.ResponseError(resp, "Failed to delete application")
	}
	return nil
}

// Stats returns the dashboard counts by status.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.getJSON(ctx, c.endpoints.JobStats(), &stats); err != nil {
		return nil, errors.Wrap(err, "[Client.Stats]")
	}
	return &stats, nil
}

// UpcomingInterviews lists the next scheduled interviews.
func (c *Client) UpcomingInterviews(ctx context.Context) ([]Interview, error) {
	var interviews []Interview
	if err := c.getJSON(ctx, c.endpoints.UpcomingInterviews(), &interviews); err != nil {
		return nil, errors.Wrap(err, "[Client.UpcomingInterviews]")
	}
	return interviews, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := api.NewRequest(ctx, http.MethodGet, url, nil, c.tokens.Token(), true)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return api.ResponseError(resp, "request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
