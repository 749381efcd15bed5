package model

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/vinicius-lino-figueiredo/mongorm/adapter/coercer"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/structure"
)

// Create implements [domain.Model]. Declared defaults fill the fields missing
// from values. Caller supplied id and provenance values are ignored.
func (m *Model) Create(ctx context.Context, actor int64, values domain.Record) (int64, error) {
	if err := m.check(ctx, actor, domain.VerbCreate); err != nil {
		return 0, err
	}
	vals, err := m.clean(values)
	if err != nil {
		return 0, err
	}
	for _, name := range slices.Sorted(maps.Keys(m.schema.Defaults)) {
		col, ok := m.schema.Columns[name]
		if _, set := vals[name]; set || !ok || !col.Kind.Stored() {
			continue
		}
		if vals[name], err = m.schema.Defaults[name](ctx, actor); err != nil {
			return 0, err
		}
	}

	c, err := m.collection(ctx)
	if err != nil {
		return 0, err
	}
	id, err := m.allocator.Next(ctx, m.schema.Name)
	if err != nil {
		return 0, err
	}

	doc := make(domain.Document, len(vals)+3)
	for _, f := range slices.Sorted(maps.Keys(vals)) {
		target := m.target(id, f, nil)
		if doc[f], err = m.coercer.OnWrite(ctx, target, vals[f]); err != nil {
			return 0, err
		}
	}
	doc[domain.FieldID] = id
	doc[domain.FieldCreateUID] = actor
	doc[domain.FieldCreateDate] = m.timeGetter.GetTime()

	if err := c.InsertOne(ctx, doc); err != nil {
		return 0, err
	}
	m.log.Debug().Int64("id", id).Int64("actor", actor).Msg("record created")
	return id, nil
}

// Write implements [domain.Model]. Fields missing from values are kept. An
// empty ids slice succeeds without touching the store.
func (m *Model) Write(ctx context.Context, actor int64, ids []int64, values domain.Record) (domain.WriteResult, error) {
	if len(ids) == 0 {
		return domain.WriteResult{Status: domain.StatusSuccess}, nil
	}
	if err := m.check(ctx, actor, domain.VerbWrite); err != nil {
		return domain.WriteResult{}, err
	}
	vals, err := m.clean(values)
	if err != nil {
		return domain.WriteResult{}, err
	}

	now := m.timeGetter.GetTime()
	set := make(domain.Document, len(vals)+2)
	var content []string
	for _, f := range slices.Sorted(maps.Keys(vals)) {
		if m.schema.Columns[f].UsesContentStore() {
			content = append(content, f)
			continue
		}
		if set[f], err = m.coercer.OnWrite(ctx, m.target(0, f, nil), vals[f]); err != nil {
			return domain.WriteResult{}, err
		}
	}
	set[domain.FieldWriteUID] = actor
	set[domain.FieldWriteDate] = now

	c, err := m.collection(ctx)
	if err != nil {
		return domain.WriteResult{}, err
	}
	if len(content) == 0 {
		return m.writeAll(ctx, c, ids, set, now)
	}
	return m.writeEach(ctx, c, ids, set, content, vals)
}

// writeAll updates every record with a single call.
func (m *Model) writeAll(ctx context.Context, c domain.Collection, ids []int64, set domain.Document, now time.Time) (domain.WriteResult, error) {
	res, err := c.UpdateMany(ctx, idsFilter(ids), domain.Document{"$set": set})
	if err != nil {
		if res.Matched == 0 {
			return domain.WriteResult{}, err
		}
		failed := m.unstamped(ctx, c, ids, now)
		m.log.Warn().Err(err).Ints64("failed", failed).Msg("write partially applied")
		return domain.WriteResult{
			Status:   domain.StatusPartial,
			Matched:  res.Matched,
			Modified: res.Modified,
			Failed:   failed,
		}, nil
	}
	return domain.WriteResult{
		Status:   domain.StatusSuccess,
		Matched:  res.Matched,
		Modified: res.Modified,
	}, nil
}

// unstamped returns the ids whose write date is not now, which after a
// failed bulk write are the records it did not reach.
func (m *Model) unstamped(ctx context.Context, c domain.Collection, ids []int64, now time.Time) []int64 {
	filter := idsFilter(ids)
	filter[domain.FieldWriteDate] = domain.Document{"$ne": now}
	docs, err := c.Find(ctx, filter, domain.WithFindProjection(domain.FieldID))
	if err != nil {
		m.log.Warn().Err(err).Msg("cannot list records missed by write")
		return nil
	}
	return docIDs(docs)
}

// writeEach updates records one at a time, because content store fields
// depend on the blob already linked to each record.
func (m *Model) writeEach(ctx context.Context, c domain.Collection, ids []int64, set domain.Document, content []string, vals domain.Record) (domain.WriteResult, error) {
	docs, err := c.Find(ctx, idsFilter(ids), domain.WithFindProjection(content...))
	if err != nil {
		return domain.WriteResult{}, err
	}
	current := make(map[int64]domain.Document, len(docs))
	for _, doc := range docs {
		if id, ok := structure.AsInteger(doc[domain.FieldID]); ok {
			current[id] = doc
		}
	}

	res := domain.WriteResult{Status: domain.StatusSuccess}
	for n, id := range ids {
		doc, ok := current[id]
		if !ok {
			continue
		}
		err := m.writeOne(ctx, c, id, doc, set, content, vals, &res)
		if err == nil {
			continue
		}
		if res.Matched == 0 {
			return domain.WriteResult{}, err
		}
		res.Status = domain.StatusPartial
		res.Failed = slices.Clone(ids[n:])
		m.log.Warn().Err(err).Ints64("failed", res.Failed).Msg("write partially applied")
		break
	}
	return res, nil
}

func (m *Model) writeOne(ctx context.Context, c domain.Collection, id int64, doc, set domain.Document, content []string, vals domain.Record, res *domain.WriteResult) error {
	update := maps.Clone(set)
	for _, f := range content {
		v, err := m.coercer.OnWrite(ctx, m.target(id, f, doc[f]), vals[f])
		if err != nil {
			return err
		}
		update[f] = v
	}
	r, err := c.UpdateMany(ctx, domain.Document{domain.FieldID: id}, domain.Document{"$set": update})
	res.Matched += r.Matched
	res.Modified += r.Modified
	return err
}

// Unlink implements [domain.Model]. Content blobs, including every stored
// version, are removed before the records. An empty ids slice succeeds
// without touching the store.
func (m *Model) Unlink(ctx context.Context, actor int64, ids []int64) (domain.WriteResult, error) {
	if len(ids) == 0 {
		return domain.WriteResult{Status: domain.StatusSuccess}, nil
	}
	if err := m.check(ctx, actor, domain.VerbUnlink); err != nil {
		return domain.WriteResult{}, err
	}

	c, err := m.collection(ctx)
	if err != nil {
		return domain.WriteResult{}, err
	}
	if cols := m.contentColumns(); len(cols) > 0 {
		if err := m.removeContent(ctx, c, ids, cols); err != nil {
			return domain.WriteResult{}, err
		}
	}

	res, err := c.DeleteMany(ctx, idsFilter(ids))
	if err != nil {
		if res.Deleted == 0 {
			return domain.WriteResult{}, err
		}
		var failed []int64
		if docs, ferr := c.Find(ctx, idsFilter(ids), domain.WithFindProjection(domain.FieldID)); ferr == nil {
			failed = docIDs(docs)
		}
		m.log.Warn().Err(err).Ints64("failed", failed).Msg("unlink partially applied")
		return domain.WriteResult{
			Status:   domain.StatusPartial,
			Matched:  res.Deleted,
			Modified: res.Deleted,
			Failed:   failed,
		}, nil
	}
	return domain.WriteResult{
		Status:   domain.StatusSuccess,
		Matched:  res.Deleted,
		Modified: res.Deleted,
	}, nil
}

func (m *Model) removeContent(ctx context.Context, c domain.Collection, ids []int64, cols []domain.Column) error {
	fields := make([]string, len(cols))
	for n, col := range cols {
		fields[n] = col.Name
	}
	docs, err := c.Find(ctx, idsFilter(ids), domain.WithFindProjection(fields...))
	if err != nil {
		return err
	}

	for _, doc := range docs {
		id, _ := structure.AsInteger(doc[domain.FieldID])
		for _, col := range cols {
			handles := []string{}
			if h, ok := doc[col.Name].(string); ok && h != "" {
				handles = append(handles, h)
			}
			if col.Versioned {
				ref := domain.FieldRef{Model: m.schema.Name, ID: id, Field: col.Name}
				versions, err := m.contentStore.Versions(ctx, coercer.Filename(ref))
				if err != nil {
					return err
				}
				handles = append(handles, versions...)
			}
			for _, h := range handles {
				if err := m.contentStore.Delete(ctx, h); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// clean drops id, provenance and computed values, and rejects undeclared
// fields.
func (m *Model) clean(values domain.Record) (domain.Record, error) {
	res := make(domain.Record, len(values))
	for f, v := range values {
		if f == "_id" || f == domain.FieldID {
			continue
		}
		if _, ok := provenanceColumns[f]; ok {
			continue
		}
		col, ok := m.schema.Columns[f]
		if !ok {
			return nil, domain.ErrUnknownField{Model: m.schema.Name, Field: f}
		}
		if col.Kind.Stored() {
			res[f] = v
		}
	}
	return res, nil
}

func (m *Model) target(id int64, field string, current any) domain.FieldTarget {
	col, _ := m.column(field)
	return domain.FieldTarget{
		Ref:     domain.FieldRef{Model: m.schema.Name, ID: id, Field: field},
		Column:  col,
		Current: current,
	}
}

func docIDs(docs []domain.Document) []int64 {
	res := make([]int64, 0, len(docs))
	for _, doc := range docs {
		if id, ok := structure.AsInteger(doc[domain.FieldID]); ok {
			res = append(res, id)
		}
	}
	return res
}
