package timegetter

import "time"

// WithLocation sets the time zone of the returned times.
func WithLocation(l *time.Location) Option {
	return func(t *TimeGetter) {
		if l != nil {
			t.location = l
		}
	}
}

// Option configures the time getter through the functional options pattern.
type Option func(*TimeGetter)
