package domain

// WithFindProjection specifies which fields to return. The "id" field is
// always included.
func WithFindProjection(fields ...string) FindOption {
	return func(fo *FindOptions) {
		fo.Projection = fields
	}
}

// WithFindSkip sets the number of documents to skip in query results.
func WithFindSkip(s int64) FindOption {
	return func(fo *FindOptions) {
		fo.Skip = s
	}
}

// WithFindLimit sets the maximum number of documents to return. Zero means no
// limit.
func WithFindLimit(l int64) FindOption {
	return func(fo *FindOptions) {
		fo.Limit = l
	}
}

// WithFindSort specifies the sort order for query results.
func WithFindSort(s Sort) FindOption {
	return func(fo *FindOptions) {
		fo.Sort = s
	}
}

// FindOption configures query behavior through the functional options pattern.
type FindOption func(*FindOptions)

// FindOptions contains parameters for customizing query execution.
type FindOptions struct {
	// Projection lists the fields to return. Empty means all fields.
	Projection []string
	// Skip specifies the number of documents to skip.
	Skip int64
	// Limit specifies the maximum number of documents to return.
	Limit int64
	// Sort specifies the sort order for results.
	Sort Sort
}

// WithUpsert enables inserting a document if no matches are found.
func WithUpsert(u bool) UpdateOption {
	return func(uo *UpdateOptions) {
		uo.Upsert = u
	}
}

// WithReturnAfter makes FindOneAndUpdate return the modified document instead
// of the original one.
func WithReturnAfter(r bool) UpdateOption {
	return func(uo *UpdateOptions) {
		uo.ReturnAfter = r
	}
}

// UpdateOption configures update behavior through the functional options
// pattern.
type UpdateOption func(*UpdateOptions)

// UpdateOptions contains parameters for customizing update operations.
type UpdateOptions struct {
	// Upsert enables inserting a document if no matches are found.
	Upsert bool
	// ReturnAfter returns the document after modification.
	ReturnAfter bool
}

// WithEnsureIndexFieldNames specifies the field names for the index.
func WithEnsureIndexFieldNames(fn ...string) EnsureIndexOption {
	return func(eio *EnsureIndexOptions) {
		eio.FieldNames = fn
	}
}

// WithEnsureIndexUnique creates a unique index that prevents duplicate values.
func WithEnsureIndexUnique(u bool) EnsureIndexOption {
	return func(eio *EnsureIndexOptions) {
		eio.Unique = u
	}
}

// EnsureIndexOption configures index creation through the functional options
// pattern.
type EnsureIndexOption func(*EnsureIndexOptions)

// EnsureIndexOptions contains parameters for customizing index creation.
type EnsureIndexOptions struct {
	// FieldNames specifies the field names to index.
	FieldNames []string
	// Unique prevents duplicate values in the indexed field(s).
	Unique bool
}

// WithReadFields restricts the fields returned by a read. Empty means every
// declared column.
func WithReadFields(fields ...string) ReadOption {
	return func(ro *ReadOptions) {
		ro.Fields = fields
	}
}

// WithReadBinSize makes content store columns return a human readable size
// instead of their bytes.
func WithReadBinSize(b bool) ReadOption {
	return func(ro *ReadOptions) {
		ro.BinSize = b
	}
}

// ReadOption configures reads through the functional options pattern.
type ReadOption func(*ReadOptions)

// ReadOptions contains parameters for customizing reads.
type ReadOptions struct {
	// Fields lists the fields to read.
	Fields []string
	// BinSize returns size summaries for content store columns.
	BinSize bool
}

// WithSearchOffset sets the number of matching ids to skip.
func WithSearchOffset(o int64) SearchOption {
	return func(so *SearchOptions) {
		so.Offset = o
	}
}

// WithSearchLimit sets the maximum number of ids to return. Zero means no
// limit.
func WithSearchLimit(l int64) SearchOption {
	return func(so *SearchOptions) {
		so.Limit = l
	}
}

// WithSearchOrder sets the sort specification, such as "name desc". Empty
// uses the model order.
func WithSearchOrder(o string) SearchOption {
	return func(so *SearchOptions) {
		so.Order = o
	}
}

// SearchOption configures searches through the functional options pattern.
type SearchOption func(*SearchOptions)

// SearchOptions contains parameters for customizing searches.
type SearchOptions struct {
	Offset int64
	Limit  int64
	Order  string
}
