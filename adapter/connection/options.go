package connection

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/mongorm/config"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// WithDialer sets the driver used to open sessions.
func WithDialer(d domain.Dialer) Option {
	return func(m *Manager) {
		if d != nil {
			m.dialer = d
		}
	}
}

// WithConfig sets the connection configuration.
func WithConfig(c config.Config) Option {
	return func(m *Manager) {
		m.cfg = c
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithMaxTries sets how many times dialing is attempted. Zero means no limit.
func WithMaxTries(n uint) Option {
	return func(m *Manager) {
		m.maxTries = n
	}
}

// WithRetryDelay sets the delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.delay = d
	}
}

// WithTransientCheck sets the function telling which dial errors are worth
// retrying.
func WithTransientCheck(f func(error) bool) Option {
	return func(m *Manager) {
		if f != nil {
			m.transient = f
		}
	}
}

// Option configures the manager through the functional options pattern.
type Option func(*Manager)
