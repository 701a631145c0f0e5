// Package fetch retrieves MEI documents over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrFetch wraps every retrieval failure.
	ErrFetch = errors.New("fetch document")

	// ErrTooLarge indicates a document over the configured size limit.
	ErrTooLarge = errors.New("document too large")
)

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return "retryable error: " + truncate(e.Message, 200)
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	AllowHTTP bool
}

// Client fetches documents by URL.
type Client struct {
	httpClient *http.Client
	maxBytes   int64
	allowHTTP  bool
	log        *slog.Logger

	// backoff is swapped in tests.
	backoff func(int) time.Duration
}

func NewClient(opts Options, log *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxBytes:  opts.MaxBytes,
		allowHTTP: opts.AllowHTTP,
		log:       log,
		backoff:   Backoff,
	}
}

// Get downloads the document at rawURL.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	switch {
	case u.Scheme == "https":
	case u.Scheme == "http" && c.allowHTTP:
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrFetch, u.Scheme)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}
	httpReq.Header.Set("Accept", "application/mei+xml, application/xml, text/xml")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, &RetryableError{Message: err.Error()})
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %w", ErrFetch, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		})
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %s: status %d: %s", ErrFetch, rawURL, resp.StatusCode, string(respBody))
	}

	body := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		if resp.ContentLength > c.maxBytes {
			return nil, fmt.Errorf("%w: %w (%d bytes)", ErrFetch, ErrTooLarge, resp.ContentLength)
		}
		body = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %w (over %d bytes)", ErrFetch, ErrTooLarge, c.maxBytes)
	}
	return data, nil
}

// GetWithRetry calls Get, retrying transient failures with backoff.
func (c *Client) GetWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := range MaxRetries {
		data, err := c.Get(ctx, rawURL)
		if err == nil || !IsRetryable(err) {
			return data, err
		}
		lastErr = err
		c.log.Warn("retryable fetch error", "url", rawURL, "attempt", attempt, "error", err)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(c.backoff(attempt)):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrFetch, ctx.Err())
		}
	}
	return nil, lastErr
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
