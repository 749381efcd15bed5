// Package memstore contains an in-memory implementation of the store driver
// interfaces of [domain]. It understands the subset of mongo-like queries and
// updates produced by the other adapters, and is selected with the
// "memory://" URI scheme.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/vinicius-lino-figueiredo/mongorm/config"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// Scheme is the URI scheme served by this driver.
const Scheme = "memory"

// Dialer implements [domain.Dialer]. Databases live as long as the dialer, so
// dialing again after a reset sees the same data, like reconnecting to a
// server.
type Dialer struct {
	clock     func() time.Time
	mu        sync.Mutex
	databases map[string]*Database
}

// NewDialer returns a new in-memory implementation of [domain.Dialer].
func NewDialer(opts ...Option) domain.Dialer {
	d := Dialer{
		clock:     time.Now,
		databases: make(map[string]*Database),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return &d
}

// Dial implements [domain.Dialer].
func (d *Dialer) Dial(ctx context.Context, cfg config.Config) (domain.Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	db, ok := d.databases[cfg.Name]
	if !ok {
		db = newDatabase(cfg.Name, d)
		d.databases[cfg.Name] = db
	}
	return db, nil
}

func (d *Dialer) forget(db *Database) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.databases[db.name] == db {
		delete(d.databases, db.name)
	}
}

// Database implements [domain.Database].
type Database struct {
	name        string
	dialer      *Dialer
	mu          sync.Mutex
	collections map[string]*Collection
	buckets     map[string]*Bucket
}

func newDatabase(name string, dialer *Dialer) *Database {
	return &Database{
		name:        name,
		dialer:      dialer,
		collections: make(map[string]*Collection),
		buckets:     make(map[string]*Bucket),
	}
}

// Name implements [domain.Database].
func (db *Database) Name() string {
	return db.name
}

// Collection implements [domain.Database].
func (db *Database) Collection(name string) domain.Collection {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.collections[name]
	if !ok {
		c = newCollection(name)
		db.collections[name] = c
	}
	return c
}

// Bucket implements [domain.Database].
func (db *Database) Bucket(name string) domain.Bucket {
	db.mu.Lock()
	defer db.mu.Unlock()
	b, ok := db.buckets[name]
	if !ok {
		b = newBucket(name, db.dialer.clock)
		db.buckets[name] = b
	}
	return b
}

// Ping implements [domain.Database].
func (db *Database) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Drop implements [domain.Database]. Handles obtained before dropping keep
// working on the discarded data.
func (db *Database) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	db.collections = make(map[string]*Collection)
	db.buckets = make(map[string]*Bucket)
	db.mu.Unlock()

	db.dialer.forget(db)
	return nil
}

// Close implements [domain.Database].
func (db *Database) Close(ctx context.Context) error {
	return ctx.Err()
}
