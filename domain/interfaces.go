// Package domain contains domain-specific interfaces, entities and option types
// for mongorm.
//
// This package defines the core interfaces that must be implemented by
// adapters, as well as functional options for configuring store queries,
// reads and searches.
package domain

import (
	"context"
	"io"
	"time"

	"github.com/vinicius-lino-figueiredo/mongorm/config"
)

// Dialer opens a session to a document store.
type Dialer interface {
	// Dial connects using the resolved configuration. Implementations
	// should return errors that the connection manager can classify as
	// transient or permanent.
	Dial(ctx context.Context, cfg config.Config) (Database, error)
}

// Database is a live handle to one logical database of the store.
type Database interface {
	// Name returns the database name.
	Name() string
	// Collection returns a handle to the named collection. It does not
	// contact the store.
	Collection(name string) Collection
	// Bucket returns a handle to the named binary content bucket.
	Bucket(name string) Bucket
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	// Drop permanently deletes the database.
	Drop(ctx context.Context) error
	// Close releases the session.
	Close(ctx context.Context) error
}

// Collection provides the fixed set of native verbs used by the adapter.
type Collection interface {
	// Name returns the collection name.
	Name() string
	// InsertOne stores a new document.
	InsertOne(ctx context.Context, doc Document) error
	// Find returns every document matching filter.
	Find(ctx context.Context, filter Document, options ...FindOption) ([]Document, error)
	// CountDocuments returns the number of documents matching filter.
	CountDocuments(ctx context.Context, filter Document) (int64, error)
	// UpdateMany applies update operators to every matching document.
	UpdateMany(ctx context.Context, filter Document, update Document) (StoreResult, error)
	// DeleteMany removes every matching document.
	DeleteMany(ctx context.Context, filter Document) (StoreResult, error)
	// FindOneAndUpdate atomically modifies the first matching document
	// and returns it. A nil document and nil error mean nothing matched.
	FindOneAndUpdate(ctx context.Context, filter Document, update Document, options ...UpdateOption) (Document, error)
	// EnsureIndex creates an index if it does not exist yet.
	EnsureIndex(ctx context.Context, options ...EnsureIndexOption) error
}

// Bucket stores binary payloads addressed by opaque handles.
type Bucket interface {
	// Upload always creates a new blob and returns its handle.
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	// Download copies the blob content to w.
	Download(ctx context.Context, handle string, w io.Writer) (int64, error)
	// Exists reports whether a blob exists.
	Exists(ctx context.Context, handle string) (bool, error)
	// Delete removes a blob. Deleting an unknown handle is not an error.
	Delete(ctx context.Context, handle string) error
	// Find lists blobs uploaded under filename, newest first.
	Find(ctx context.Context, filename string) ([]BlobInfo, error)
}

// ConnectionManager owns the lazily established store session.
type ConnectionManager interface {
	// Database returns the live database handle, dialing if needed.
	Database(ctx context.Context) (Database, error)
	// Collection returns a live collection handle, dialing if needed.
	Collection(ctx context.Context, name string) (Collection, error)
	// Reset tears down the current session. The next call dials again.
	Reset(ctx context.Context) error
}

// Translator converts filters to native predicate documents.
type Translator interface {
	// Translate returns the native predicate for filter. It has no side
	// effects.
	Translate(filter Filter) (Document, error)
}

// OrderParser parses sort specifications such as "name desc, id asc".
type OrderParser interface {
	// Parse returns the sort described by spec. model is only used in
	// error messages.
	Parse(model string, spec string) (Sort, error)
}

// FieldTarget describes the field a value is coerced for.
type FieldTarget struct {
	Ref    FieldRef
	Column Column
	// Current is the value currently stored in the record, used by
	// content store columns to supersede previous blobs.
	Current any
}

// Coercer converts values between the typed API and stored documents.
type Coercer interface {
	// OnWrite converts a typed value into its stored representation.
	OnWrite(ctx context.Context, target FieldTarget, value any) (any, error)
	// OnRead converts a stored value back into its typed representation.
	OnRead(ctx context.Context, target FieldTarget, value any, options ReadOptions) (any, error)
	// Operand converts a filter operand for the given column.
	Operand(col Column, value any) (any, error)
}

// ContentStore keeps binary payloads outside the records.
type ContentStore interface {
	// Put stores data as a new blob and returns its handle.
	Put(ctx context.Context, data []byte, filename string) (string, error)
	// Get returns the content of a blob.
	Get(ctx context.Context, handle string) ([]byte, error)
	// Exists reports whether a blob exists.
	Exists(ctx context.Context, handle string) (bool, error)
	// Delete removes a blob. Unknown handles are ignored.
	Delete(ctx context.Context, handle string) error
	// ListVersions returns how many blobs share filename.
	ListVersions(ctx context.Context, filename string) (int, error)
	// Latest returns the handle of the newest blob stored under filename.
	Latest(ctx context.Context, filename string) (handle string, found bool, err error)
	// Versions returns every handle stored under filename, newest first.
	Versions(ctx context.Context, filename string) ([]string, error)
}

// IDAllocator issues unique integer identifiers per model.
type IDAllocator interface {
	// Init creates the counter of a model if it does not exist.
	Init(ctx context.Context, model string) error
	// Next returns the next identifier of a model.
	Next(ctx context.Context, model string) (int64, error)
}

// SchemaProvider exposes declared schemas.
type SchemaProvider interface {
	// Get returns the composed schema of a model.
	Get(name string) (Schema, error)
}

// Authorizer is consulted before each operation.
type Authorizer interface {
	// CheckPermission reports whether actor may perform verb on model.
	CheckPermission(ctx context.Context, actor int64, model string, verb Verb) (bool, error)
}

// NameResolver resolves display names for provenance reads.
type NameResolver interface {
	// DisplayName returns the display name of a record.
	DisplayName(ctx context.Context, actor int64, ref RecordRef) (string, error)
}

// TimeGetter provides current time for provenance stamping.
type TimeGetter interface {
	// GetTime returns the current time.
	GetTime() time.Time
}

// Decoder converts between different data representations.
type Decoder interface {
	// Decode converts from one data format to another.
	Decode(any, any) error
}

// Model implements the record API of one registered model.
//
// Every method receives the acting user id, checked with the configured
// [Authorizer], and a context that bounds the store calls.
type Model interface {
	// Name returns the model name.
	Name() string
	// Schema returns the composed schema.
	Schema() Schema
	// Init prepares the collection: counter, id index and defaults of new
	// columns in existing documents.
	Init(ctx context.Context) error
	// Create inserts a record and returns its new id.
	Create(ctx context.Context, actor int64, values Record) (int64, error)
	// Read returns the records with the given ids in canonical order.
	Read(ctx context.Context, actor int64, ids []int64, options ...ReadOption) ([]Record, error)
	// ReadOne returns a single record. A false flag means the record does
	// not exist.
	ReadOne(ctx context.Context, actor int64, id int64, options ...ReadOption) (Record, bool, error)
	// ReadInto reads records and decodes them into target.
	ReadInto(ctx context.Context, actor int64, ids []int64, target any, options ...ReadOption) error
	// Write sets the given values on every record in ids.
	Write(ctx context.Context, actor int64, ids []int64, values Record) (WriteResult, error)
	// Unlink removes the records and their content blobs.
	Unlink(ctx context.Context, actor int64, ids []int64) (WriteResult, error)
	// Search returns the ids of records matching filter.
	Search(ctx context.Context, actor int64, filter Filter, options ...SearchOption) ([]int64, error)
	// Count returns the number of records matching filter.
	Count(ctx context.Context, actor int64, filter Filter) (int64, error)
	// PermRead returns the audit fields of the records.
	PermRead(ctx context.Context, actor int64, ids []int64) ([]Provenance, error)
	// DefaultGet evaluates declared defaults for fields.
	DefaultGet(ctx context.Context, actor int64, fields []string) (Record, error)
	// Exists reports whether a record exists.
	Exists(ctx context.Context, actor int64, id int64) (bool, error)
}
