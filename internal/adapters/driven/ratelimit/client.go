package ratelimit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client exchanges JSON with one provider API. POSTs wait on the limiter
// and feed its quota; GETs are used for health checks and skip it.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	limiter  *Limiter
	header   http.Header
}

// NewClient creates a client for provider rooted at baseURL. rps <= 0
// disables throttling. header is sent with every request.
func NewClient(provider, baseURL string, timeout time.Duration, rps float64, header http.Header) *Client {
	if header == nil {
		header = http.Header{}
	}
	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		limiter:  New(rps, 1),
		header:   header,
	}
}

// Limiter returns the client's limiter.
func (c *Client) Limiter() *Limiter {
	return c.limiter
}

// PostJSON sends in to path and decodes the 200 reply into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Get fetches path. A nil out discards the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return TransportError(c.provider, err)
	}
	defer resp.Body.Close()
	c.limiter.Observe(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportError(c.provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return ResponseError(c.provider, resp, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return MalformedError(c.provider, "decode response", err)
	}
	return nil
}
