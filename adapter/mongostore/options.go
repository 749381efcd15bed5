package mongostore

import "go.mongodb.org/mongo-driver/mongo/options"

// WithClientOptions adds driver options applied after the ones derived from
// the configuration, such as monitors or TLS settings.
func WithClientOptions(o ...*options.ClientOptions) Option {
	return func(d *Dialer) {
		d.extra = append(d.extra, o...)
	}
}

// Option configures the dialer through the functional options pattern.
type Option func(*Dialer)
