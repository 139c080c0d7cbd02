package command

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-gamesim/internal/backend"
)

const defaultBackendURL = "http://127.0.0.1:8000"

type BackendConfig struct {
	URL         string `json:"url"`
	Timeout     string `json:"timeout"`
	MaxAttempts int    `json:"max_attempts"`
	RetryDelay  string `json:"retry_delay"`
}

func (c *BackendConfig) validate() error {
	el := errors.NewErrorList()

	if c.URL != "" {
		_, err := url.Parse(c.URL)
		if err != nil {
			el.Add(fmt.Errorf("parsing url: %w", err))
		}
	}
	if c.Timeout != "" {
		_, err := time.ParseDuration(c.Timeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing timeout: %w", err))
		}
	}
	if c.MaxAttempts < 0 {
		el.Add(fmt.Errorf("max_attempts must not be negative"))
	}
	if c.RetryDelay != "" {
		_, err := time.ParseDuration(c.RetryDelay)
		if err != nil {
			el.Add(fmt.Errorf("parsing retry_delay: %w", err))
		}
	}

	return el.Err()
}

func (c *BackendConfig) buildClient() (*backend.Client, error) {
	baseURL := c.URL
	if baseURL == "" {
		baseURL = defaultBackendURL
	}

	var opts []backend.ClientOpt

	policy := backend.RetryPolicy{
		MaxAttempts: backend.DefaultMaxAttempts,
		Delay:       backend.DefaultRetryDelay,
	}
	if c.MaxAttempts > 0 {
		policy.MaxAttempts = c.MaxAttempts
	}
	if c.RetryDelay != "" {
		d, err := time.ParseDuration(c.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("parsing retry_delay: %w", err)
		}
		policy.Delay = d
	}
	opts = append(opts, backend.WithRetryPolicy(policy))

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing timeout: %w", err)
		}
		opts = append(opts, backend.WithTimeout(d))
	}

	return backend.NewClient(baseURL, opts...), nil
}
