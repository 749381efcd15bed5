package model

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/structure"
)

// Read implements [domain.Model]. Without [domain.WithReadFields] every
// declared column is read, along with the provenance fields. Records are
// returned in the model order and ids that do not exist are left out.
func (m *Model) Read(ctx context.Context, actor int64, ids []int64, options ...domain.ReadOption) ([]domain.Record, error) {
	var ro domain.ReadOptions
	for _, opt := range options {
		opt(&ro)
	}

	if err := m.check(ctx, actor, domain.VerbRead); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Record{}, nil
	}

	fields, err := m.fields(ro.Fields)
	if err != nil {
		return nil, err
	}
	var stored, computed []string
	for _, f := range fields {
		col, _ := m.column(f)
		if col.Kind.Stored() {
			stored = append(stored, f)
		} else {
			computed = append(computed, f)
		}
	}

	c, err := m.collection(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := c.Find(ctx, idsFilter(ids),
		domain.WithFindProjection(stored...),
		domain.WithFindSort(m.sort),
	)
	if err != nil {
		return nil, err
	}

	res := make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := m.toRecord(ctx, doc, stored, ro)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}

	if len(computed) > 0 && len(res) > 0 {
		if err := m.compute(ctx, actor, res, computed); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// fields validates the requested fields. An empty request means every
// column and the provenance fields.
func (m *Model) fields(requested []string) ([]string, error) {
	if len(requested) == 0 {
		res := slices.Sorted(maps.Keys(m.schema.Columns))
		return append(res, slices.Sorted(maps.Keys(provenanceColumns))...), nil
	}
	res := make([]string, 0, len(requested))
	for _, f := range requested {
		if f == domain.FieldID || slices.Contains(res, f) {
			continue
		}
		if _, ok := m.column(f); !ok {
			return nil, domain.ErrUnknownField{Model: m.schema.Name, Field: f}
		}
		res = append(res, f)
	}
	return res, nil
}

func (m *Model) toRecord(ctx context.Context, doc domain.Document, fields []string, ro domain.ReadOptions) (domain.Record, error) {
	id, _ := structure.AsInteger(doc[domain.FieldID])
	rec := make(domain.Record, len(fields)+1)
	rec[domain.FieldID] = id
	for _, f := range fields {
		v, err := m.coercer.OnRead(ctx, m.target(id, f, doc[f]), doc[f], ro)
		if err != nil {
			return nil, err
		}
		rec[f] = v
	}
	return rec, nil
}

// compute fills computed fields. Columns sharing a Multi key are produced by
// a single call of the first column function.
func (m *Model) compute(ctx context.Context, actor int64, records []domain.Record, fields []string) error {
	ids := make([]int64, len(records))
	for n, rec := range records {
		ids[n] = rec[domain.FieldID].(int64)
	}

	var groups [][]string
	multi := make(map[string]int)
	for _, f := range fields {
		key := m.schema.Columns[f].Multi
		if key == "" {
			groups = append(groups, []string{f})
			continue
		}
		n, ok := multi[key]
		if !ok {
			n = len(groups)
			multi[key] = n
			groups = append(groups, nil)
		}
		groups[n] = append(groups[n], f)
	}

	for _, group := range groups {
		fn := m.schema.Columns[group[0]].Compute
		values, err := fn(ctx, domain.ComputeRequest{
			Model:   m.schema.Name,
			Actor:   actor,
			IDs:     slices.Clone(ids),
			Fields:  slices.Clone(group),
			Records: records,
		})
		if err != nil {
			return fmt.Errorf("computing %v: %w", group, err)
		}
		for n, rec := range records {
			for _, f := range group {
				rec[f] = values[ids[n]][f]
			}
		}
	}
	return nil
}

// ReadOne implements [domain.Model].
func (m *Model) ReadOne(ctx context.Context, actor int64, id int64, options ...domain.ReadOption) (domain.Record, bool, error) {
	recs, err := m.Read(ctx, actor, []int64{id}, options...)
	if err != nil || len(recs) == 0 {
		return nil, false, err
	}
	return recs[0], true, nil
}

// ReadInto implements [domain.Model]. A pointer to a slice receives every
// record. Any other target receives the first one and a missing record
// results in [ErrRecordNotFound].
func (m *Model) ReadInto(ctx context.Context, actor int64, ids []int64, target any, options ...domain.ReadOption) error {
	if target == nil {
		return domain.ErrTargetNil
	}
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr {
		return domain.ErrNonPointer
	}
	if value.IsNil() {
		return domain.ErrTargetNil
	}

	recs, err := m.Read(ctx, actor, ids, options...)
	if err != nil {
		return err
	}
	if value.Elem().Kind() == reflect.Slice {
		return m.decoder.Decode(recs, target)
	}
	if len(recs) == 0 {
		var id int64
		if len(ids) > 0 {
			id = ids[0]
		}
		return ErrRecordNotFound{Model: m.schema.Name, ID: id}
	}
	return m.decoder.Decode(recs[0], target)
}

// PermRead implements [domain.Model]. User fields are resolved to display
// names through the configured [domain.NameResolver].
func (m *Model) PermRead(ctx context.Context, actor int64, ids []int64) ([]domain.Provenance, error) {
	if err := m.check(ctx, actor, domain.VerbRead); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Provenance{}, nil
	}

	c, err := m.collection(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := c.Find(ctx, idsFilter(ids),
		domain.WithFindProjection(slices.Sorted(maps.Keys(provenanceColumns))...),
		domain.WithFindSort(m.sort),
	)
	if err != nil {
		return nil, err
	}

	res := make([]domain.Provenance, 0, len(docs))
	for _, doc := range docs {
		p := domain.Provenance{}
		p.ID, _ = structure.AsInteger(doc[domain.FieldID])
		if p.CreateUID, err = m.user(ctx, actor, doc[domain.FieldCreateUID]); err != nil {
			return nil, err
		}
		if p.WriteUID, err = m.user(ctx, actor, doc[domain.FieldWriteUID]); err != nil {
			return nil, err
		}
		if p.CreateDate, err = m.date(ctx, p.ID, domain.FieldCreateDate, doc); err != nil {
			return nil, err
		}
		if p.WriteDate, err = m.date(ctx, p.ID, domain.FieldWriteDate, doc); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

func (m *Model) user(ctx context.Context, actor int64, v any) (*domain.UserRef, error) {
	uid, ok := structure.AsInteger(v)
	if !ok {
		return nil, nil
	}
	ref := &domain.UserRef{ID: uid}
	if m.names == nil {
		return ref, nil
	}
	name, err := m.names.DisplayName(ctx, actor, domain.RecordRef{Model: m.usersModel, ID: uid})
	if err != nil {
		return nil, err
	}
	ref.Name = name
	return ref, nil
}

func (m *Model) date(ctx context.Context, id int64, field string, doc domain.Document) (string, error) {
	v, err := m.coercer.OnRead(ctx, m.target(id, field, doc[field]), doc[field], domain.ReadOptions{})
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}
