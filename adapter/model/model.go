// Package model contains the default implementation of [domain.Model], the
// typed record API of one registered schema.
package model

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/allocator"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/coercer"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/contentstore"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/order"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/timegetter"
	"github.com/vinicius-lino-figueiredo/mongorm/adapter/translator"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// SuperUser is the actor used for work done on behalf of the system, like
// back-filling defaults.
const SuperUser int64 = 1

// DefaultUsersModel is the model whose records are referenced by the
// provenance user fields.
const DefaultUsersModel = "res.users"

// columns of the provenance fields, used when reading and filtering them
var provenanceColumns = map[string]domain.Column{
	domain.FieldCreateUID:  {Name: domain.FieldCreateUID, Kind: domain.KindInteger},
	domain.FieldCreateDate: {Name: domain.FieldCreateDate, Kind: domain.KindDateTime},
	domain.FieldWriteUID:   {Name: domain.FieldWriteUID, Kind: domain.KindInteger},
	domain.FieldWriteDate:  {Name: domain.FieldWriteDate, Kind: domain.KindDateTime},
}

var idColumn = domain.Column{Name: domain.FieldID, Kind: domain.KindInteger}

// ErrRecordNotFound is returned by [Model.ReadInto] when decoding a single
// record that does not exist.
type ErrRecordNotFound struct {
	Model string
	ID    int64
}

// Error implements [error].
func (e ErrRecordNotFound) Error() string {
	return fmt.Sprintf("record %s,%d does not exist", e.Model, e.ID)
}

// Model implements [domain.Model].
type Model struct {
	schema       domain.Schema
	sort         domain.Sort
	manager      domain.ConnectionManager
	allocator    domain.IDAllocator
	translator   domain.Translator
	orderParser  domain.OrderParser
	coercer      domain.Coercer
	contentStore domain.ContentStore
	decoder      domain.Decoder
	authorizer   domain.Authorizer
	names        domain.NameResolver
	timeGetter   domain.TimeGetter
	usersModel   string
	log          zerolog.Logger
}

// NewModel returns a new implementation of [domain.Model] for schema, which is
// expected to be already composed by the registry. Collaborators not given as
// options get their default implementation, using manager for store access.
func NewModel(schema domain.Schema, manager domain.ConnectionManager, opts ...Option) (domain.Model, error) {
	m := Model{
		schema:     schema,
		manager:    manager,
		usersModel: DefaultUsersModel,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	if m.allocator == nil {
		m.allocator = allocator.NewAllocator(manager)
	}
	if m.translator == nil {
		m.translator = translator.NewTranslator()
	}
	if m.orderParser == nil {
		m.orderParser = order.NewParser()
	}
	if m.contentStore == nil {
		m.contentStore = contentstore.NewContentStore(manager)
	}
	if m.coercer == nil {
		m.coercer = coercer.NewCoercer(coercer.WithContentStore(m.contentStore))
	}
	if m.decoder == nil {
		m.decoder = decoder.NewDecoder()
	}
	if m.timeGetter == nil {
		m.timeGetter = timegetter.NewTimeGetter()
	}
	m.log = m.log.With().Str("model", schema.Name).Logger()

	var err error
	if m.sort, err = m.orderParser.Parse(schema.Name, schema.Order); err != nil {
		return nil, err
	}
	return &m, nil
}

// Name implements [domain.Model].
func (m *Model) Name() string {
	return m.schema.Name
}

// Schema implements [domain.Model].
func (m *Model) Schema() domain.Schema {
	s := m.schema
	s.Columns = maps.Clone(s.Columns)
	s.Defaults = maps.Clone(s.Defaults)
	return s
}

// Init implements [domain.Model]. Declared defaults are written into existing
// documents only for columns that no document carries yet, which is the case
// of columns added after records were created.
func (m *Model) Init(ctx context.Context) error {
	if err := m.allocator.Init(ctx, m.schema.Name); err != nil {
		return err
	}

	c, err := m.collection(ctx)
	if err != nil {
		return err
	}
	err = c.EnsureIndex(ctx,
		domain.WithEnsureIndexFieldNames(domain.FieldID),
		domain.WithEnsureIndexUnique(true),
	)
	if err != nil {
		return err
	}

	total, err := c.CountDocuments(ctx, domain.Document{})
	if err != nil || total == 0 {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(m.schema.Defaults)) {
		col, ok := m.schema.Columns[name]
		if !ok || !col.Kind.Stored() || col.UsesContentStore() {
			continue
		}
		if err := m.backfill(ctx, c, col); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) backfill(ctx context.Context, c domain.Collection, col domain.Column) error {
	n, err := c.CountDocuments(ctx, domain.Document{col.Name: domain.Document{"$exists": true}})
	if err != nil || n > 0 {
		return err
	}

	value, err := m.schema.Defaults[col.Name](ctx, SuperUser)
	if err != nil {
		return err
	}
	target := domain.FieldTarget{Ref: domain.FieldRef{Model: m.schema.Name, Field: col.Name}, Column: col}
	if value, err = m.coercer.OnWrite(ctx, target, value); err != nil {
		return err
	}

	res, err := c.UpdateMany(ctx,
		domain.Document{col.Name: domain.Document{"$exists": false}},
		domain.Document{"$set": domain.Document{col.Name: value}},
	)
	if err != nil {
		return err
	}
	m.log.Info().Str("field", col.Name).Int64("documents", res.Modified).Msg("default values written")
	return nil
}

// DefaultGet implements [domain.Model]. Fields without a declared default are
// left out of the result.
func (m *Model) DefaultGet(ctx context.Context, actor int64, fields []string) (domain.Record, error) {
	if len(fields) == 0 {
		fields = slices.Sorted(maps.Keys(m.schema.Defaults))
	}
	res := make(domain.Record, len(fields))
	for _, f := range fields {
		fn, ok := m.schema.Defaults[f]
		if !ok {
			continue
		}
		v, err := fn(ctx, actor)
		if err != nil {
			return nil, fmt.Errorf("default of field %q: %w", f, err)
		}
		res[f] = v
	}
	return res, nil
}

func (m *Model) collection(ctx context.Context) (domain.Collection, error) {
	return m.manager.Collection(ctx, m.schema.Table)
}

func (m *Model) check(ctx context.Context, actor int64, verb domain.Verb) error {
	if m.authorizer == nil {
		return nil
	}
	ok, err := m.authorizer.CheckPermission(ctx, actor, m.schema.Name, verb)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPermission{Actor: actor, Model: m.schema.Name, Verb: verb}
	}
	return nil
}

// column returns the declared column of field, including the provenance and
// id fields, which are not declared by schemas.
func (m *Model) column(field string) (domain.Column, bool) {
	if col, ok := m.schema.Columns[field]; ok {
		return col, true
	}
	if field == domain.FieldID {
		return idColumn, true
	}
	col, ok := provenanceColumns[field]
	return col, ok
}

// idsFilter matches every record in ids.
func idsFilter(ids []int64) domain.Document {
	if len(ids) == 1 {
		return domain.Document{domain.FieldID: ids[0]}
	}
	return domain.Document{domain.FieldID: domain.Document{"$in": toAny(ids)}}
}

func toAny(ids []int64) []any {
	res := make([]any, len(ids))
	for n, id := range ids {
		res[n] = id
	}
	return res
}

func (m *Model) contentColumns() []domain.Column {
	var res []domain.Column
	for _, name := range slices.Sorted(maps.Keys(m.schema.Columns)) {
		if col := m.schema.Columns[name]; col.UsesContentStore() {
			res = append(res, col)
		}
	}
	return res
}
