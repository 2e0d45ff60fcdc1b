package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reviewd/internal/config"
	"reviewd/internal/domain"
	"reviewd/internal/port"
	"reviewd/internal/review"
)

const authTicketHeader = "X-Auth-Ticket"

// Client implements port.ReviewBackend against the upstream review API.
type Client struct {
	baseURL    string
	authTicket string
	client     *http.Client
}

// NewClient creates a backend client from config.
func NewClient(cfg *config.BackendConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authTicket: cfg.AuthTicket,
		client:     &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTPClient creates a client with a custom http.Client (for testing).
func NewClientWithHTTPClient(cfg *config.BackendConfig, hc *http.Client) *Client {
	c := NewClient(cfg)
	c.client = hc
	return c
}

// statusResponse is the upstream status envelope.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// backendStates maps upstream status words onto job lifecycle states.
// Unknown words are treated as still-processing so polling continues
// instead of terminating on a vocabulary the client has not learned.
var backendStates = map[string]domain.JobState{
	"queued":     domain.JobQueued,
	"pending":    domain.JobQueued,
	"processing": domain.JobProcessing,
	"running":    domain.JobProcessing,
	"completed":  domain.JobCompleted,
	"success":    domain.JobCompleted,
	"failed":     domain.JobFailed,
	"error":      domain.JobFailed,
}

func (c *Client) Status(ctx context.Context, jobID string) (*port.JobStatus, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/jobs/%s/status", url.PathEscape(jobID)))
	if err != nil {
		return nil, err
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}

	state, ok := backendStates[strings.ToLower(strings.TrimSpace(resp.Status))]
	if !ok {
		state = domain.JobProcessing
	}
	return &port.JobStatus{State: state, Message: resp.Message}, nil
}

func (c *Client) Result(ctx context.Context, jobID string) (json.RawMessage, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/jobs/%s/result", url.PathEscape(jobID)))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) ReportURL(jobID string, format domain.ReportFormat) string {
	return fmt.Sprintf("%s/api/jobs/%s/download?format=%s",
		c.baseURL, url.PathEscape(jobID), url.QueryEscape(string(format)))
}

func (c *Client) FetchReport(ctx context.Context, jobID string, format domain.ReportFormat) (*port.ReportStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReportURL(jobID, format), nil)
	if err != nil {
		return nil, fmt.Errorf("creating report request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching report: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		return nil, domain.ErrAuthRequired
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("backend report error (status %d)", resp.StatusCode)
	}

	return &port.ReportStream{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

// get performs a GET against the backend and returns the response body.
// HTTP 401 and redirect-marker payloads both surface as ErrAuthRequired:
// the SSO layer answers some unauthenticated requests with 200 plus a
// redirect envelope instead of a proper status code.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrAuthRequired
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend error (status %d): %s", resp.StatusCode, string(body))
	}

	if review.HasRedirectMarker(body) {
		return nil, domain.ErrAuthRequired
	}

	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.authTicket != "" {
		req.Header.Set(authTicketHeader, c.authTicket)
	}
}
