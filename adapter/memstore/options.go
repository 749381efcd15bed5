package memstore

import "time"

// WithClock sets the function used to stamp blob upload dates.
func WithClock(c func() time.Time) Option {
	return func(d *Dialer) {
		if c != nil {
			d.clock = c
		}
	}
}

// Option configures the dialer through the functional options pattern.
type Option func(*Dialer)
