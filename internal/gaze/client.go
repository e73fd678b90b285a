package gaze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Path is the gaze endpoint relative to the backend base URL.
const Path = "/api/gaze"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// ErrNoEndpoint is returned when no backend URL is configured.
var ErrNoEndpoint = errors.New("no backend endpoint configured")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gaze backend returned status %d", e.Code)
}

// Client fetches samples over HTTP. It never caches and never retries.
type Client struct {
	http *http.Client
}

// NewClient creates a Client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint joins baseURL and Path.
func Endpoint(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + Path
}

// Fetch requests one sample from the backend at baseURL.
func (c *Client) Fetch(ctx context.Context, baseURL string) (Sample, error) {
	if strings.TrimSpace(baseURL) == "" {
		return Sample{}, ErrNoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, Endpoint(baseURL), nil)
	if err != nil {
		return Sample{}, fmt.Errorf("creating gaze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return Sample{}, fmt.Errorf("requesting gaze: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return Sample{}, &StatusError{Code: resp.StatusCode}
	}

	var s Sample
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&s); err != nil {
		return Sample{}, fmt.Errorf("decoding gaze response: %w", err)
	}
	return s, nil
}
