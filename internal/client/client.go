// Package client provides an HTTP client for the Ganbatte server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ganbatte-hq/ganbatte/internal/metrics"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// ErrNotFound indicates the requested resource does not exist on the server.
var ErrNotFound = errors.New("not found")

// Client is a REST client for the Ganbatte server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
// If endpoint is empty, uses GANBATTE_SERVER_URL env var or defaults to localhost:8383.
// Timeout can be configured via GANBATTE_CLIENT_TIMEOUT env var (default 2m for LLM turns).
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("GANBATTE_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8383"
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	timeout := 2 * time.Minute // Default: LLM extraction turns can be slow
	if t := os.Getenv("GANBATTE_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// errorResponse is the server's error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// do sends a request with an optional JSON body and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		var errResp errorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s", errResp.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(raw))
	}

	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// =============================================================================
// TYPES (matching the server API)
// =============================================================================

// TurnRequest is one intake conversation turn.
type TurnRequest struct {
	SessionID     string `json:"session_id,omitempty"`
	Message       string `json:"message"`
	OverrideField string `json:"override_field,omitempty"`
}

// TurnResponse is the server's reply to a turn. When NeedsClarification is
// set, Draft holds the partial job and Message the follow-up question;
// otherwise Job holds the persisted delivery job.
type TurnResponse struct {
	SessionID          string              `json:"session_id"`
	NeedsClarification bool                `json:"needs_clarification"`
	Field              string              `json:"field,omitempty"`
	Message            string              `json:"message,omitempty"`
	Draft              *models.DraftJob    `json:"draft,omitempty"`
	Job                *models.DeliveryJob `json:"job,omitempty"`
}

// Stats holds server-side counters.
type Stats struct {
	Jobs       map[models.JobStatus]int `json:"jobs"`
	Sessions   int                      `json:"sessions"`
	Operations *metrics.Snapshot        `json:"operations,omitempty"`
}

// =============================================================================
// INTAKE OPERATIONS
// =============================================================================

// ProcessTurn sends one conversation turn to the intake pipeline.
func (c *Client) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	var resp TurnResponse
	if err := c.do(ctx, http.MethodPost, "/v1/intake/turn", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// JOB OPERATIONS
// =============================================================================

// GetJob retrieves a job by ID.
func (c *Client) GetJob(ctx context.Context, id string) (*models.DeliveryJob, error) {
	var job models.DeliveryJob
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobsOptions configures job listing.
type ListJobsOptions struct {
	Status *models.JobStatus
	Limit  int
}

// ListJobs returns jobs, most recent first.
func (c *Client) ListJobs(ctx context.Context, opts ListJobsOptions) ([]models.DeliveryJob, error) {
	q := url.Values{}
	if opts.Status != nil {
		q.Set("status", string(*opts.Status))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/v1/jobs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Jobs []models.DeliveryJob `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// UpdateStatus transitions a job to a new lifecycle status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.JobStatus) (*models.DeliveryJob, error) {
	var job models.DeliveryJob
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPost, "/v1/jobs/"+url.PathEscape(id)+"/status", body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetStats returns server counters.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health checks server and database availability.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// =============================================================================
// STREAMING OPERATIONS
// =============================================================================

// WatchJob subscribes to status updates for a job over a WebSocket. The
// onUpdate callback is invoked with the current job immediately and again on
// every status change. Return an error from onUpdate to abort. WatchJob
// returns nil once the job reaches a terminal status and the server closes
// the feed.
func (c *Client) WatchJob(ctx context.Context, id string, onUpdate func(job models.DeliveryJob) error) error {
	wsEndpoint := c.baseURL
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint + "/ws/jobs/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("websocket connect: %w", err)
	}

	// Track connection state for proper cleanup
	var mu sync.Mutex
	closed := false
	closeConn := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			conn.Close()
		}
	}
	defer closeConn()

	// Handle context cancellation in a separate goroutine
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	for {
		var job models.DeliveryJob
		if err := conn.ReadJSON(&job); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read update: %w", err)
		}
		if err := onUpdate(job); err != nil {
			return err
		}
	}
}
