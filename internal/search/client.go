// Package search is the boundary to the search cluster's REST API. It
// exposes the three calls the rest of the system is built on: listing
// indices, fetching index mappings, and fetching documents, plus the
// maintenance-job catalog. Transport failures wrap ErrUnavailable;
// non-2xx answers surface as *BackendError.
package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Client calls the search cluster's REST API. It is safe for concurrent
// use.
type Client struct {
	cfg    Config
	opts   RequestOptions
	client *http.Client
	logger *slog.Logger
}

// New creates a Client for the configured cluster. A nil logger
// discards debug output.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("search cluster url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid search cluster url %q: %w", cfg.URL, err)
	}

	opts, err := cfg.DecodeOptions()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport
	if cfg.SkipTLSVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		cfg:  cfg,
		opts: opts,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

// newRequest builds a request for the path elements joined onto the
// cluster base URL.
func (c *Client) newRequest(ctx context.Context, method string, query url.Values, body any, elems ...string) (*http.Request, error) {
	target, err := url.JoinPath(c.cfg.URL, elems...)
	if err != nil {
		return nil, fmt.Errorf("building request url: %w", err)
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// do executes the request and returns the response body. Transport
// failures wrap ErrUnavailable; non-2xx statuses become *BackendError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	c.logger.Debug("search request", "method", req.Method, "url", req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: truncateBody(data)}
	}
	return data, nil
}
