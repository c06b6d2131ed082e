// SPDX-License-Identifier: MIT

// Package worker implements the scia-worker side of the job protocol:
// an authenticated long-poll client and a bounded execution pool.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/viktor-platform/scia-bridge/internal/jobs"
)

// Client speaks the worker protocol against the bridge daemon.
type Client struct {
	base     string
	token    string
	workerID string
	http     *http.Client
}

// NewClient builds a protocol client. leaseWait bounds the server-side
// long poll; the HTTP timeout leaves headroom above it.
func NewClient(base, token, workerID string, leaseWait time.Duration) *Client {
	return &Client{
		base:     base,
		token:    token,
		workerID: workerID,
		http: &http.Client{
			Timeout: leaseWait + 15*time.Second,
		},
	}
}

// CloseIdleConnections releases pooled connections, for clean worker
// shutdown.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.http.Do(req)
}

// decodeAPIError turns a non-2xx response into an error carrying the
// server's message.
func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}

// Next long-polls for the next job. (nil, nil) means the poll drained
// without work.
func (c *Client) Next(ctx context.Context) (*jobs.Job, error) {
	payload, err := json.Marshal(map[string]string{"worker_id": c.workerID})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/worker/jobs/next", bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, fmt.Errorf("poll next job: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
		var job jobs.Job
		if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
			return nil, fmt.Errorf("decode leased job: %w", err)
		}
		return &job, nil
	default:
		return nil, decodeAPIError(resp)
	}
}

// Upload stores one artifact on the daemon.
func (c *Client) Upload(ctx context.Context, jobID uuid.UUID, name string, data []byte) error {
	path := fmt.Sprintf("/api/v1/worker/jobs/%s/artifacts/%s", jobID, name)
	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/octet-stream")
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload %s: %w", name, decodeAPIError(resp))
	}
	return nil
}

// Complete reports success; the daemon attaches the uploaded artifacts.
func (c *Client) Complete(ctx context.Context, jobID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/worker/jobs/%s/complete", jobID)
	resp, err := c.do(ctx, http.MethodPost, path, nil, "")
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("complete job: %w", decodeAPIError(resp))
	}
	return nil
}

// Fail reports failure with the engine's reason.
func (c *Client) Fail(ctx context.Context, jobID uuid.UUID, reason string) error {
	payload, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/api/v1/worker/jobs/%s/fail", jobID)
	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fail job: %w", decodeAPIError(resp))
	}
	return nil
}

// FetchTemplate downloads the esa template into path. A 503 means the
// daemon has no template; that is reported as os-level absence to the
// caller via the returned bool.
func (c *Client) FetchTemplate(ctx context.Context, path string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/worker/template", nil, "")
	if err != nil {
		return false, fmt.Errorf("fetch esa template: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusServiceUnavailable {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("fetch esa template: %w", decodeAPIError(resp))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read esa template: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return false, err
	}
	return true, nil
}
