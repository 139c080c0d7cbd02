package driver

import (
	"context"
	"time"

	"github.com/pixil98/go-log"
)

const (
	DefaultInterval = 500 * time.Millisecond
)

// Ticker is a unit of periodic work driven by the engine driver.
type Ticker interface {
	Tick(context.Context) error
}

// Driver runs its tickers on a fixed interval until the context is
// cancelled. A ticker error is logged and the loop keeps going: one bad tick
// must never halt the simulation.
type Driver struct {
	interval time.Duration
	tickers  []Ticker
}

func NewDriver(tickers []Ticker, opts ...DriverOpt) *Driver {
	d := &Driver{
		interval: DefaultInterval,
		tickers:  tickers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs every ticker once. Errors are contained here.
func (d *Driver) Tick(ctx context.Context) {
	for _, t := range d.tickers {
		err := t.Tick(ctx)
		if err != nil {
			log.GetLogger(ctx).Errorf("tick: %s", err)
		}
	}
}
