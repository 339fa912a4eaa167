// Package fetch provides the single outbound-request primitive used for
// every call to the metadata provider: a bounded per-attempt timeout and a
// bounded, fixed-delay retry loop. Fallback policy lives with the callers;
// an exhausted retry budget surfaces the last failure unchanged.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	retry "github.com/avast/retry-go/v4"
)

const (
	defaultAttemptTimeout = 5 * time.Second
	defaultRetryDelay     = 500 * time.Millisecond
	// Two extra attempts on top of the first try.
	defaultAttempts = 3
)

// StatusError reports a non-success HTTP status. The retry loop treats it
// the same as a transport failure.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Config tunes the primitive. Zero values fall back to the defaults above.
type Config struct {
	HTTPClient     *http.Client
	AttemptTimeout time.Duration
	RetryDelay     time.Duration
	Attempts       uint
}

// Client issues resilient GET requests against the provider.
type Client struct {
	httpClient     *http.Client
	attemptTimeout time.Duration
	retryDelay     time.Duration
	attempts       uint
}

// NewClient returns a fetch client with sane defaults when fields are unset.
func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}
	return &Client{
		httpClient:     cfg.HTTPClient,
		attemptTimeout: cfg.AttemptTimeout,
		retryDelay:     cfg.RetryDelay,
		attempts:       cfg.Attempts,
	}
}

// Get fetches the URL, retrying transport failures and non-success statuses
// with a fixed delay. A cancellation initiated through ctx is never retried;
// it propagates to the caller immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			b, err := c.attempt(ctx, url)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// attempt performs one request under the per-attempt timeout. A response
// arriving after the timeout fires is discarded by the transport.
func (c *Client) attempt(ctx context.Context, url string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
