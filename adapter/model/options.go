package model

import (
	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// WithAllocator sets the id allocator.
func WithAllocator(a domain.IDAllocator) Option {
	return func(m *Model) {
		m.allocator = a
	}
}

// WithTranslator sets the filter translator.
func WithTranslator(t domain.Translator) Option {
	return func(m *Model) {
		m.translator = t
	}
}

// WithOrderParser sets the sort specification parser.
func WithOrderParser(p domain.OrderParser) Option {
	return func(m *Model) {
		m.orderParser = p
	}
}

// WithCoercer sets the field coercer.
func WithCoercer(c domain.Coercer) Option {
	return func(m *Model) {
		m.coercer = c
	}
}

// WithContentStore sets the content store used to remove blobs on unlink.
// When no coercer is given, the default coercer uses it too.
func WithContentStore(c domain.ContentStore) Option {
	return func(m *Model) {
		m.contentStore = c
	}
}

// WithDecoder sets the decoder used by ReadInto.
func WithDecoder(d domain.Decoder) Option {
	return func(m *Model) {
		m.decoder = d
	}
}

// WithAuthorizer sets the permission check. Without it every operation is
// allowed.
func WithAuthorizer(a domain.Authorizer) Option {
	return func(m *Model) {
		m.authorizer = a
	}
}

// WithNameResolver sets the resolver of user display names used by
// PermRead.
func WithNameResolver(n domain.NameResolver) Option {
	return func(m *Model) {
		m.names = n
	}
}

// WithTimeGetter sets the clock used for provenance stamps.
func WithTimeGetter(t domain.TimeGetter) Option {
	return func(m *Model) {
		m.timeGetter = t
	}
}

// WithUsersModel sets the model referenced by provenance user fields.
func WithUsersModel(name string) Option {
	return func(m *Model) {
		if name != "" {
			m.usersModel = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) {
		m.log = l
	}
}

// Option configures the model through the functional options pattern.
type Option func(*Model)
