// Package mongostore contains the MongoDB implementation of the store driver
// interfaces of [domain], built on the official driver and GridFS.
package mongostore

import (
	"context"
	"errors"
	"net/url"

	"github.com/vinicius-lino-figueiredo/mongorm/config"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// Server error codes raised while the replica set changes its primary.
var transientCodes = []int{
	10107, // NotWritablePrimary
	13435, // NotPrimaryNoSecondaryOk
	13436, // NotPrimaryOrSecondary
	189,   // PrimarySteppedDown
	91,    // ShutdownInProgress
	11600, // InterruptedAtShutdown
	11602, // InterruptedDueToReplStateChange
}

// IsTransient reports whether err was caused by a topology change that may
// resolve itself, such as a primary election.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsNetworkError(err) {
		return true
	}
	if errors.Is(err, topology.ErrServerSelectionTimeout) ||
		errors.As(err, new(topology.ServerSelectionError)) {
		return true
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		if se.HasErrorLabel("RetryableWriteError") {
			return true
		}
		for _, code := range transientCodes {
			if se.HasErrorCode(code) {
				return true
			}
		}
	}
	return false
}

// ClientOptions builds the driver options for cfg:
//   - with a replica set, the configured URI is used verbatim and reads prefer
//     the primary but fall back to secondaries;
//   - otherwise, with a user, the URI carries the credentials and the database;
//   - otherwise the client connects directly to a single node.
//
// Credentials are applied with the configured auth mechanism whatever the
// topology.
func ClientOptions(cfg config.Config) *options.ClientOptions {
	opts := options.Client()
	switch {
	case cfg.ReplicaSet != "":
		opts.ApplyURI(cfg.URI)
		opts.SetReplicaSet(cfg.ReplicaSet)
		opts.SetReadPreference(readpref.PrimaryPreferred())
	case cfg.HasAuth():
		u := url.URL{
			Scheme: "mongodb",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   cfg.Address(),
			Path:   "/" + cfg.Name,
		}
		opts.ApplyURI(u.String())
	default:
		opts.SetHosts([]string{cfg.Address()})
		opts.SetDirect(true)
	}
	if cfg.HasAuth() {
		opts.SetAuth(options.Credential{
			AuthMechanism: cfg.AuthMechanism,
			AuthSource:    cfg.Name,
			Username:      cfg.User,
			Password:      cfg.Password,
			PasswordSet:   true,
		})
	}
	if cfg.RequestTimeout > 0 {
		opts.SetTimeout(cfg.RequestTimeout)
	}
	opts.SetBSONOptions(&options.BSONOptions{
		DefaultDocumentM: true,
		BinaryAsSlice:    true,
	})
	return opts
}

// Dialer implements [domain.Dialer].
type Dialer struct {
	extra []*options.ClientOptions
}

// NewDialer returns a MongoDB implementation of [domain.Dialer].
func NewDialer(opts ...Option) domain.Dialer {
	d := Dialer{}
	for _, opt := range opts {
		opt(&d)
	}
	return &d
}

// Dial implements [domain.Dialer]. The connection is checked with a ping so
// topology errors surface here instead of on the first query.
func (d *Dialer) Dial(ctx context.Context, cfg config.Config) (domain.Database, error) {
	opts := append([]*options.ClientOptions{ClientOptions(cfg)}, d.extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}

	db := &Database{client: client, db: client.Database(cfg.Name)}
	if err := db.Ping(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return db, nil
}

// Database implements [domain.Database].
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// Name implements [domain.Database].
func (d *Database) Name() string {
	return d.db.Name()
}

// Collection implements [domain.Database].
func (d *Database) Collection(name string) domain.Collection {
	return &Collection{coll: d.db.Collection(name)}
}

// Bucket implements [domain.Database].
func (d *Database) Bucket(name string) domain.Bucket {
	return &Bucket{db: d.db, name: name}
}

// Ping implements [domain.Database].
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.PrimaryPreferred())
}

// Drop implements [domain.Database].
func (d *Database) Drop(ctx context.Context) error {
	if err := d.db.Drop(ctx); err != nil {
		return domain.ErrStoreOperation{Op: "dropDatabase", Err: err}
	}
	return nil
}

// Close implements [domain.Database].
func (d *Database) Close(ctx context.Context) error {
	err := d.client.Disconnect(ctx)
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return nil
	}
	return err
}
