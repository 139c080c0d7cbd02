package backend

import (
	"time"
)

type ClientOpt func(*Client)

// WithRetryPolicy overrides the bounded retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOpt {
	return func(c *Client) {
		c.policy = p
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) ClientOpt {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}
