package mongorm

import (
	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/registry"
	"github.com/vinicius-lino-figueiredo/mongorm/config"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// WithConfig sets the connection configuration instead of loading it from the
// environment.
func WithConfig(c config.Config) Option {
	return func(o *ORM) {
		o.cfg = c
	}
}

// WithDialer sets the store driver. By default it is chosen by the URI
// scheme.
func WithDialer(d domain.Dialer) Option {
	return func(o *ORM) {
		o.dialer = d
	}
}

// WithLogger sets the logger used by the session and the models.
func WithLogger(l zerolog.Logger) Option {
	return func(o *ORM) {
		o.log = l
	}
}

// WithAuthorizer sets the permission check consulted by every model.
func WithAuthorizer(a domain.Authorizer) Option {
	return func(o *ORM) {
		o.authorizer = a
	}
}

// WithNameResolver sets the resolver of user display names.
func WithNameResolver(n domain.NameResolver) Option {
	return func(o *ORM) {
		o.names = n
	}
}

// WithTimeGetter sets the clock used for provenance stamps.
func WithTimeGetter(t domain.TimeGetter) Option {
	return func(o *ORM) {
		o.timeGetter = t
	}
}

// WithRegistry sets the schema registry, which can be shared by several
// instances.
func WithRegistry(r *registry.Registry) Option {
	return func(o *ORM) {
		o.registry = r
	}
}

// Option configures an [ORM] through the functional options pattern.
type Option func(*ORM)
