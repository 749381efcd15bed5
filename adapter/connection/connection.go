// Package connection contains the default implementation of
// [domain.ConnectionManager].
package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/mongostore"
	"github.com/vinicius-lino-figueiredo/mongorm/config"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/ctxsync"
)

// Retry defaults.
const (
	DefaultMaxTries   uint = 5
	DefaultRetryDelay      = 500 * time.Millisecond
)

// Manager implements [domain.ConnectionManager]. The session is dialed on
// first use and shared by every caller until [Manager.Reset].
type Manager struct {
	mu        *ctxsync.Mutex
	db        domain.Database
	dialer    domain.Dialer
	cfg       config.Config
	log       zerolog.Logger
	maxTries  uint
	delay     time.Duration
	transient func(error) bool
}

// NewManager returns a new implementation of [domain.ConnectionManager]. It
// does not connect.
func NewManager(opts ...Option) *Manager {
	m := Manager{
		mu:        ctxsync.NewMutex(),
		dialer:    mongostore.NewDialer(),
		cfg:       config.DefaultConfig,
		log:       zerolog.Nop(),
		maxTries:  DefaultMaxTries,
		delay:     DefaultRetryDelay,
		transient: mongostore.IsTransient,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return &m
}

// Config returns the configuration used to dial.
func (m *Manager) Config() config.Config {
	return m.cfg
}

// Database implements [domain.ConnectionManager]. Transient failures are
// retried with a constant delay. Any failure, including ctx ending while
// another caller dials, is returned wrapped in [domain.ErrConnection].
func (m *Manager) Database(ctx context.Context) (domain.Database, error) {
	if err := m.mu.Lock(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}

	db, err := backoff.Retry(ctx, m.dial(ctx),
		backoff.WithBackOff(backoff.NewConstantBackOff(m.delay)),
		backoff.WithMaxTries(m.maxTries),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			m.log.Warn().Err(err).Dur("delay", next).Msg("trying to reconnect")
		}),
	)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		m.log.Error().Err(err).Str("address", m.cfg.Address()).Msg("cannot connect")
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}

	m.log.Debug().Str("database", db.Name()).Msg("connected")
	m.db = db
	return db, nil
}

func (m *Manager) dial(ctx context.Context) backoff.Operation[domain.Database] {
	return func() (domain.Database, error) {
		db, err := m.dialer.Dial(ctx, m.cfg)
		if err != nil && !m.transient(err) {
			return nil, backoff.Permanent(err)
		}
		return db, err
	}
}

// Collection implements [domain.ConnectionManager].
func (m *Manager) Collection(ctx context.Context, name string) (domain.Collection, error) {
	db, err := m.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Reset implements [domain.ConnectionManager].
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.mu.Lock(ctx); err != nil {
		return err
	}
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	db := m.db
	m.db = nil
	m.log.Debug().Str("database", db.Name()).Msg("disconnecting")
	return db.Close(ctx)
}

// Drop deletes the whole database and resets the session. It is meant for
// tearing down test databases.
func (m *Manager) Drop(ctx context.Context) error {
	db, err := m.Database(ctx)
	if err != nil {
		return err
	}
	if err := db.Drop(ctx); err != nil {
		return err
	}
	m.log.Info().Str("database", db.Name()).Msg("database dropped")
	return m.Reset(ctx)
}
