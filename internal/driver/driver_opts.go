package driver

import "time"

type DriverOpt func(*Driver)

func WithInterval(interval time.Duration) DriverOpt {
	return func(d *Driver) {
		d.interval = interval
	}
}
