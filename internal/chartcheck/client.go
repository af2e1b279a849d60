package chartcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// maxBody bounds how much of a response is read.
const maxBody = 16 << 20

// Client is a small JSON client for the chart API.
type Client struct {
	client   *http.Client
	baseURL  string
	requests atomic.Int64
}

// NewClient creates a client with the given per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Requests returns the number of requests sent so far.
func (c *Client) Requests() int64 { return c.requests.Load() }

// get fetches path and decodes a 200 body into v. Any other status is
// returned as a *StatusError.
func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	c.requests.Add(1)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrRequest, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrRequest, path, err)
	}

	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Path: path, Status: resp.StatusCode}
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &e) == nil {
			se.Code, se.Message = e.Code, e.Message
		}
		return se
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrRequest, path, err)
	}
	return nil
}
