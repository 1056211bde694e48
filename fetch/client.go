// SPDX-License-Identifier: EPL-2.0

// Package fetch is the HTTP plumbing shared by audio loading and the chat
// backend. Requests are sent once; nothing is retried.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultMaxBody = 64 << 20

	errorBodyLimit = 512
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxBody caps the bytes Get will read.
func WithMaxBody(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

type Client struct {
	http    *http.Client
	timeout time.Duration
	maxBody int64
	log     zerolog.Logger
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout: DefaultTimeout,
		maxBody: DefaultMaxBody,
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}

	return c
}

// Get downloads url and returns the whole body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("read %s: %w", url, ErrBodyTooLarge)
	}

	c.log.Debug().Str("url", url).Int("bytes", len(data)).Msg("fetched")

	return data, nil
}

// PostJSON sends payload as JSON. On success the caller owns resp.Body.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.Do(req)
}

// Do sends req and turns any non-2xx status into a *FetchError. The body
// of a failed response is consumed and closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	url := req.URL.String()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		ferr := &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		c.log.Warn().Err(ferr).Str("method", req.Method).Msg("request failed")

		return nil, ferr
	}

	return resp, nil
}
