// Package mongorm provides a typed record API, with integer ids, typed
// columns and tuple based filters, on top of MongoDB.
//
// The basic usage starts with creating a new [ORM] instance with [New],
// registering schemas with [ORM.Register] and getting the [Model] of a
// registered schema with [ORM.Model].
//
// A configuration whose URI uses the "memory://" scheme stores everything in
// process, which is useful for tests.
package mongorm

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/connection"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/memstore"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/model"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/mongostore"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/registry"
	"github.com/vinicius-lino-figueiredo/mongorm/config"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

var (
	// ErrConnection is returned when the store cannot be reached within
	// the retry envelope.
	ErrConnection = domain.ErrConnection
	// ErrTranslation matches errors caused by malformed filters and sort
	// specifications.
	ErrTranslation = domain.ErrTranslation
	// ErrCoercionFailed matches every [ErrCoercion].
	ErrCoercionFailed = domain.ErrCoercionFailed
	// ErrAccessDenied matches every [ErrPermission].
	ErrAccessDenied = domain.ErrAccessDenied
	// ErrDuplicateKey is matched by store errors caused by a unique index.
	ErrDuplicateKey = domain.ErrDuplicateKey
	// ErrTargetNil is returned when a nil target is given to
	// [Model.ReadInto].
	ErrTargetNil = domain.ErrTargetNil
)

// Model is the record API of one registered schema.
type Model = domain.Model

// Schema describes a model.
type Schema = domain.Schema

// Column describes one field of a [Schema].
type Column = domain.Column

// Record is a typed business entity.
type Record = domain.Record

// Filter is a list of clauses combined with AND.
type Filter = domain.Filter

// Clause is a single filter condition.
type Clause = domain.Clause

// ErrCoercion is returned when a value does not fit its column.
type ErrCoercion = domain.ErrCoercion

// ErrPermission is returned when an operation is denied.
type ErrPermission = domain.ErrPermission

// ErrStoreOperation wraps a failure reported by the store.
type ErrStoreOperation = domain.ErrStoreOperation

// ErrUnknownModel is returned for names that were not registered.
type ErrUnknownModel = domain.ErrUnknownModel

// ErrUnknownField is returned when values reference an undeclared column.
type ErrUnknownField = domain.ErrUnknownField

// ORM holds the session shared by every model and the registered schemas.
// It is safe for concurrent use.
type ORM struct {
	cfg        config.Config
	dialer     domain.Dialer
	log        zerolog.Logger
	registry   *registry.Registry
	authorizer domain.Authorizer
	names      domain.NameResolver
	timeGetter domain.TimeGetter
	manager    *connection.Manager

	mu     sync.Mutex
	models map[string]domain.Model
}

// New creates an [ORM]. Without [WithConfig] the configuration is loaded with
// [config.Load]. It does not connect: the session is established by the
// first operation that needs it.
func New(options ...Option) (*ORM, error) {
	o := ORM{
		log:    zerolog.Nop(),
		models: make(map[string]domain.Model),
	}
	for _, opt := range options {
		opt(&o)
	}

	if o.cfg == (config.Config{}) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		o.cfg = *cfg
	}
	if o.dialer == nil {
		o.dialer = dialerFor(o.cfg)
	}
	if o.registry == nil {
		o.registry = registry.NewRegistry()
	}

	o.manager = connection.NewManager(
		connection.WithDialer(o.dialer),
		connection.WithConfig(o.cfg),
		connection.WithLogger(o.log),
	)
	return &o, nil
}

func dialerFor(cfg config.Config) domain.Dialer {
	if strings.HasPrefix(cfg.URI, memstore.Scheme+"://") {
		return memstore.NewDialer()
	}
	return mongostore.NewDialer()
}

// Register adds a schema. A schema inheriting from another must be
// registered after its parent.
func (o *ORM) Register(schema Schema) error {
	return o.registry.Register(schema)
}

// Names returns the registered model names.
func (o *ORM) Names() []string {
	return o.registry.Names()
}

// Model returns the model of a registered schema. The first call for each
// name prepares its collection with [Model.Init].
func (o *ORM) Model(ctx context.Context, name string) (Model, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if m, ok := o.models[name]; ok {
		return m, nil
	}

	schema, err := o.registry.Get(name)
	if err != nil {
		return nil, err
	}

	opts := []model.Option{model.WithLogger(o.log)}
	if o.authorizer != nil {
		opts = append(opts, model.WithAuthorizer(o.authorizer))
	}
	if o.names != nil {
		opts = append(opts, model.WithNameResolver(o.names))
	}
	if o.timeGetter != nil {
		opts = append(opts, model.WithTimeGetter(o.timeGetter))
	}

	m, err := model.NewModel(schema, o.manager, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Init(ctx); err != nil {
		return nil, err
	}
	o.models[name] = m
	return m, nil
}

// Config returns the resolved configuration.
func (o *ORM) Config() config.Config {
	return o.cfg
}

// Reset closes the session. Models are prepared again on their next use.
func (o *ORM) Reset(ctx context.Context) error {
	o.forget()
	return o.manager.Reset(ctx)
}

// DropDatabase permanently deletes the database and resets the session. It
// is meant for tearing down test databases.
func (o *ORM) DropDatabase(ctx context.Context) error {
	o.forget()
	return o.manager.Drop(ctx)
}

// Close releases the session.
func (o *ORM) Close(ctx context.Context) error {
	return o.Reset(ctx)
}

func (o *ORM) forget() {
	o.mu.Lock()
	defer o.mu.Unlock()
	clear(o.models)
}
