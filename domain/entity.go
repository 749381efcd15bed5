package domain

import (
	"context"
	"time"
)

// Document is the untyped representation exchanged with store drivers. Keys
// starting with '$' are native operators.
type Document = map[string]any

// Record is one typed business entity as seen by callers. It always carries
// the integer "id" and every requested field; unset values are nil.
type Record = map[string]any

// Operator names a filter comparison understood by the translator.
type Operator = string

// Supported filter operators.
const (
	OpEq       Operator = "="
	OpNe       Operator = "!="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpIn       Operator = "in"
	OpNotIn    Operator = "not in"
	OpLike     Operator = "like"
	OpILike    Operator = "ilike"
	OpNotLike  Operator = "not like"
	OpNotILike Operator = "not ilike"
)

// Clause is a single (field, operator, operand) filter triple.
type Clause struct {
	Field    string
	Operator Operator
	Value    any
}

// Filter is an ordered list of clauses combined with logical AND.
type Filter = []Clause

// Regex is a store-agnostic regular expression. Drivers convert it to their
// native pattern type.
type Regex struct {
	Pattern string
	Options string
}

// Sort represents an ordered list of fields which should be used to sort query
// results, applied in sequence.
type Sort = []SortName

// SortName represents a single field and the order which should be used to sort
// it. A positive Order value means ascending order and a negative value means
// descending order.
type SortName struct {
	Key   string
	Order int64
}

// Sort directions.
const (
	Ascending  int64 = 1
	Descending int64 = -1
)

// Verb is an operation checked by [Authorizer].
type Verb string

// Verbs checked before each operation.
const (
	VerbRead   Verb = "read"
	VerbWrite  Verb = "write"
	VerbCreate Verb = "create"
	VerbUnlink Verb = "unlink"
)

// ColumnKind is the closed set of column types handled by the coercion
// pipeline.
type ColumnKind uint8

// Column kinds.
const (
	KindPlain ColumnKind = iota
	KindDate
	KindDateTime
	KindBoolean
	KindInteger
	KindFloat
	KindBinary
	KindComputed
)

var kindNames = [...]string{
	KindPlain:    "plain",
	KindDate:     "date",
	KindDateTime: "datetime",
	KindBoolean:  "boolean",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindBinary:   "binary",
	KindComputed: "computed",
}

func (k ColumnKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Temporal reports whether values of this kind are stored as timestamps.
func (k ColumnKind) Temporal() bool { return k == KindDate || k == KindDateTime }

// Numeric reports whether values of this kind are normalized to a number.
func (k ColumnKind) Numeric() bool { return k == KindInteger || k == KindFloat }

// Stored reports whether values of this kind live in the record document.
// Computed columns are produced on read only.
func (k ColumnKind) Stored() bool { return k != KindComputed }

// ComputeRequest carries everything a computed column needs to produce its
// values.
type ComputeRequest struct {
	Model   string
	Actor   int64
	IDs     []int64
	Fields  []string
	Records []Record
}

// ComputeFunc returns computed values keyed by record id and then by field
// name.
type ComputeFunc = func(context.Context, ComputeRequest) (map[int64]map[string]any, error)

// DefaultFunc returns the default value of a column for a new record.
type DefaultFunc = func(ctx context.Context, actor int64) (any, error)

// Column describes one declared field of a model.
type Column struct {
	Name string
	Kind ColumnKind
	// ContentStore redirects binary payloads to the content store, keeping
	// only a handle in the record.
	ContentStore bool
	// Versioned keeps previous payloads when the field is overwritten.
	Versioned bool
	// Digits rounds float columns to the given number of decimals. Zero
	// means no rounding.
	Digits int
	// Compute produces values for computed columns.
	Compute ComputeFunc
	// Multi groups computed columns served by a single Compute call.
	Multi string
}

// UsesContentStore reports whether the column participates in the content
// store.
func (c Column) UsesContentStore() bool { return c.Kind == KindBinary && c.ContentStore }

// Schema is the static descriptor of a model.
type Schema struct {
	// Name is the model name, such as "res.partner".
	Name string
	// Inherit names a previously registered model whose columns and
	// defaults are composed into this one.
	Inherit string
	// Table is the collection name. Defaults to Name with dots replaced by
	// underscores.
	Table string
	// Order is the canonical sort specification. Defaults to "id".
	Order    string
	Columns  map[string]Column
	Defaults map[string]DefaultFunc
}

// FieldRef locates one field of one record.
type FieldRef struct {
	Model string
	ID    int64
	Field string
}

// RecordRef locates one record of one model.
type RecordRef struct {
	Model string
	ID    int64
}

// UserRef is a resolved user id together with its display name.
type UserRef struct {
	ID   int64
	Name string
}

// Provenance holds the audit fields of a record. Absent users are nil and
// absent dates are empty strings.
type Provenance struct {
	ID         int64
	CreateUID  *UserRef
	CreateDate string
	WriteUID   *UserRef
	WriteDate  string
}

// ResultStatus tells whether a bulk mutation applied to every target.
type ResultStatus uint8

// Result statuses.
const (
	StatusSuccess ResultStatus = iota
	StatusPartial
)

// WriteResult is returned by bulk mutations. Fatal failures are returned as
// errors instead.
type WriteResult struct {
	Status   ResultStatus
	Matched  int64
	Modified int64
	// Failed lists ids the store reported as not applied, when known.
	Failed []int64
}

// StoreResult is returned by driver level bulk mutations.
type StoreResult struct {
	Matched  int64
	Modified int64
	Deleted  int64
}

// BlobInfo describes one stored content blob.
type BlobInfo struct {
	Handle     string
	Filename   string
	Length     int64
	UploadDate time.Time
}

// Provenance field names, written by the adapter only.
const (
	FieldID         = "id"
	FieldCreateUID  = "create_uid"
	FieldCreateDate = "create_date"
	FieldWriteUID   = "write_uid"
	FieldWriteDate  = "write_date"
)

// Temporal layouts used on read and write.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)
