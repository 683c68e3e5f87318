// Package upstream is the HTTP client for the remote product and order
// API. Wire records are decoded here into domain types; nothing outside
// this package sees the upstream's field spellings.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"camisfut-storefront/internal/domain"
)

const (
	DefaultBaseURL = "http://localhost:8081/api"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 512
)

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	Logger    *slog.Logger
	Transport http.RoundTripper
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	logger     *slog.Logger
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &BearerTransport{Base: base, Logger: opts.Logger},
		},
		retries: max(opts.Retries, 0),
		logger:  opts.Logger,
	}
}

// do sends one request. in is JSON-encoded when non-nil; out is decoded
// when non-nil and the body is not empty.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s %s: %w", domain.ErrUpstreamUnavailable, method, path, ctxErr)
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		tok := tokenFrom(ctx)
		return &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
			kind:   classify(resp.StatusCode, tok != "" && !domain.IsTempToken(tok)),
		}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", domain.ErrUpstreamUnavailable, method, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// get retries GET requests that failed because the upstream was
// unavailable. Cancellation is never retried.
func (c *Client) get(ctx context.Context, path string, out any) error {
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * 200 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, ctx.Err())
			case <-time.After(wait):
			}
			c.logger.Warn("retrying upstream request", "path", path, "attempt", attempt, "error", err)
		}
		err = c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil || !errors.Is(err, domain.ErrUpstreamUnavailable) || ctx.Err() != nil {
			return err
		}
	}
	return err
}
