// Package timegetter contains the default [domain.TimeGetter] implementation.
package timegetter

import (
	"time"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// TimeGetter implements [domain.TimeGetter].
type TimeGetter struct {
	location *time.Location
}

// NewTimeGetter returns a new implementation of domain.TimeGetter. Times are
// reported in the local time zone unless [WithLocation] is given.
func NewTimeGetter(opts ...Option) domain.TimeGetter {
	t := TimeGetter{location: time.Local}
	for _, opt := range opts {
		opt(&t)
	}
	return &t
}

// GetTime implements [domain.TimeGetter]. Provenance dates are stored with
// second precision, so the result is truncated.
func (t *TimeGetter) GetTime() time.Time {
	return time.Now().In(t.location).Truncate(time.Second)
}
