package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

const (
	defaultTickInterval    = 500 * time.Millisecond
	defaultDisplayInterval = 200 * time.Millisecond
)

type Config struct {
	TickInterval    string          `json:"tick_interval"`
	DisplayInterval string          `json:"display_interval"`
	Backend         BackendConfig   `json:"backend"`
	Listener        ListenerConfig  `json:"listener"`
	Consoles        []ConsoleConfig `json:"consoles"`
	Nats            NatsConfig      `json:"nats"`
	World           WorldConfig     `json:"world"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(validateInterval("tick_interval", c.TickInterval))
	el.Add(validateInterval("display_interval", c.DisplayInterval))

	for i, l := range c.Consoles {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("console %d: %w", i, err))
		}
	}

	el.Add(c.Backend.validate())
	el.Add(c.Listener.validate())
	el.Add(c.Nats.validate())
	el.Add(c.World.validate())

	return el.Err()
}

func validateInterval(name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

func (c *Config) tickInterval() time.Duration {
	return intervalOrDefault(c.TickInterval, defaultTickInterval)
}

func (c *Config) displayInterval() time.Duration {
	return intervalOrDefault(c.DisplayInterval, defaultDisplayInterval)
}

// intervalOrDefault assumes the value already passed Validate.
func intervalOrDefault(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
