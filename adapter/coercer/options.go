package coercer

import (
	"time"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// WithContentStore sets the store used by content store columns.
func WithContentStore(c domain.ContentStore) Option {
	return func(co *Coercer) {
		co.contentStore = c
	}
}

// WithLocation sets the time zone used to parse and format temporal values.
func WithLocation(l *time.Location) Option {
	return func(co *Coercer) {
		if l != nil {
			co.location = l
		}
	}
}

// Option configures the coercer through the functional options pattern.
type Option func(*Coercer)
