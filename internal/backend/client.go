package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pixil98/go-log"
)

const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 2 * time.Second
	DefaultTimeout     = 5 * time.Second
)

// RetryPolicy bounds steady-state delivery. The decision is a pure function
// of the attempt count so it can be tested without network I/O.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// ShouldRetry reports whether another attempt is allowed after attempt
// failures.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxAttempts
}

// Client posts JSON payloads to the backend collaborator. Send applies the
// bounded retry policy; SendUntilReachable polls indefinitely and is reserved
// for world-init, which cannot proceed without the backend.
type Client struct {
	baseURL    string
	policy     RetryPolicy
	httpClient *http.Client
}

func NewClient(baseURL string, opts ...ClientOpt) *Client {
	c := &Client{
		baseURL: baseURL,
		policy: RetryPolicy{
			MaxAttempts: DefaultMaxAttempts,
			Delay:       DefaultRetryDelay,
		},
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send delivers payload to the endpoint, retrying per the policy. On
// exhaustion the last error is returned to the caller; nothing panics past
// the tick loop boundary.
func (c *Client) Send(ctx context.Context, endpoint string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling payload for %s: %w", endpoint, err)
	}

	logger := log.GetLogger(ctx)
	for attempt := 1; ; attempt++ {
		err = c.post(ctx, endpoint, data)
		if err == nil {
			return nil
		}

		if !c.policy.ShouldRetry(attempt) {
			return fmt.Errorf("sending to %s after %d attempts: %w", endpoint, attempt, err)
		}

		logger.Warnf("attempt %d sending to %s failed: %s. Retrying in %s", attempt, endpoint, err, c.policy.Delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.policy.Delay):
		}
	}
}

// SendUntilReachable delivers payload, retrying without bound until the
// backend answers or the context is cancelled.
func (c *Client) SendUntilReachable(ctx context.Context, endpoint string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling payload for %s: %w", endpoint, err)
	}

	logger := log.GetLogger(ctx)
	for {
		err = c.post(ctx, endpoint, data)
		if err == nil {
			return nil
		}

		logger.Warnf("waiting for backend: %s", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.policy.Delay):
		}
	}
}

func (c *Client) post(ctx context.Context, endpoint string, data []byte) error {
	// An in-flight attempt is bounded by the client timeout, not cut off by
	// shutdown: cancellation is honored between attempts instead.
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost,
		fmt.Sprintf("%s/%s", c.baseURL, endpoint), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	return nil
}
