package memstore

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// Collection implements [domain.Collection] in memory.
type Collection struct {
	name    string
	mu      sync.RWMutex
	entries []*entry
	indexes []*index
}

func newCollection(name string) *Collection {
	return &Collection{
		name:    name,
		indexes: []*index{newIndex([]string{"_id"}, true)},
	}
}

// Name implements [domain.Collection].
func (c *Collection) Name() string {
	return c.name
}

// InsertOne implements [domain.Collection]. A missing _id is generated.
func (c *Collection) InsertOne(ctx context.Context, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := &entry{doc: copyDoc(doc)}
	if _, ok := e.doc["_id"]; !ok {
		e.doc["_id"] = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.addToIndexes(e); err != nil {
		return domain.ErrStoreOperation{Op: "insert", Err: err}
	}
	c.entries = append(c.entries, e)
	return nil
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, filter domain.Document, options ...domain.FindOption) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts domain.FindOptions
	for _, option := range options {
		option(&opts)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	matched, err := c.matching(filter)
	if err != nil {
		return nil, domain.ErrStoreOperation{Op: "find", Err: err}
	}

	docs := make([]domain.Document, len(matched))
	for n, e := range matched {
		docs[n] = e.doc
	}
	if len(opts.Sort) > 0 {
		if err := sortDocs(docs, opts.Sort); err != nil {
			return nil, domain.ErrStoreOperation{Op: "find", Err: err}
		}
	}

	docs = paginate(docs, opts.Skip, opts.Limit)

	res := make([]domain.Document, len(docs))
	for n, doc := range docs {
		res[n] = project(doc, opts.Projection)
	}
	return res, nil
}

// CountDocuments implements [domain.Collection].
func (c *Collection) CountDocuments(ctx context.Context, filter domain.Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	matched, err := c.matching(filter)
	if err != nil {
		return 0, domain.ErrStoreOperation{Op: "count", Err: err}
	}
	return int64(len(matched)), nil
}

// UpdateMany implements [domain.Collection]. Documents updated before a
// failure keep their changes, like a multi-document update on the server.
func (c *Collection) UpdateMany(ctx context.Context, filter domain.Document, update domain.Document) (domain.StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoreResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var res domain.StoreResult
	matched, err := c.matching(filter)
	if err != nil {
		return res, domain.ErrStoreOperation{Op: "update", Err: err}
	}

	for _, e := range matched {
		res.Matched++
		changed, err := c.apply(e, update)
		if err != nil {
			return res, domain.ErrStoreOperation{Op: "update", Err: err}
		}
		if changed {
			res.Modified++
		}
	}
	return res, nil
}

// DeleteMany implements [domain.Collection].
func (c *Collection) DeleteMany(ctx context.Context, filter domain.Document) (domain.StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoreResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	matched, err := c.matching(filter)
	if err != nil {
		return domain.StoreResult{}, domain.ErrStoreOperation{Op: "delete", Err: err}
	}

	var errs []error
	for _, e := range matched {
		errs = append(errs, c.removeFromIndexes(e))
	}
	c.entries = slices.DeleteFunc(c.entries, func(e *entry) bool {
		return slices.Contains(matched, e)
	})

	n := int64(len(matched))
	res := domain.StoreResult{Matched: n, Deleted: n}
	if err := errors.Join(errs...); err != nil {
		return res, domain.ErrStoreOperation{Op: "delete", Err: err}
	}
	return res, nil
}

// FindOneAndUpdate implements [domain.Collection].
func (c *Collection) FindOneAndUpdate(ctx context.Context, filter domain.Document, update domain.Document, options ...domain.UpdateOption) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts domain.UpdateOptions
	for _, option := range options {
		option(&opts)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	matched, err := c.matching(filter)
	if err != nil {
		return nil, domain.ErrStoreOperation{Op: "findAndModify", Err: err}
	}

	if len(matched) == 0 {
		if !opts.Upsert {
			return nil, nil
		}
		doc, err := modify(upsertBase(filter), update, true)
		if err != nil {
			return nil, domain.ErrStoreOperation{Op: "findAndModify", Err: err}
		}
		if _, ok := doc["_id"]; !ok {
			doc["_id"] = uuid.NewString()
		}
		e := &entry{doc: doc}
		if err := c.addToIndexes(e); err != nil {
			return nil, domain.ErrStoreOperation{Op: "findAndModify", Err: err}
		}
		c.entries = append(c.entries, e)
		if !opts.ReturnAfter {
			return nil, nil
		}
		return copyDoc(doc), nil
	}

	e := matched[0]
	before := copyDoc(e.doc)
	if _, err := c.apply(e, update); err != nil {
		return nil, domain.ErrStoreOperation{Op: "findAndModify", Err: err}
	}
	if opts.ReturnAfter {
		return copyDoc(e.doc), nil
	}
	return before, nil
}

// EnsureIndex implements [domain.Collection].
func (c *Collection) EnsureIndex(ctx context.Context, options ...domain.EnsureIndexOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var opts domain.EnsureIndexOptions
	for _, option := range options {
		option(&opts)
	}
	if len(opts.FieldNames) == 0 {
		return domain.ErrStoreOperation{Op: "createIndex", Err: errors.New("no index fields")}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, idx := range c.indexes {
		if idx.sameAs(opts.FieldNames) {
			return nil
		}
	}

	idx := newIndex(slices.Clone(opts.FieldNames), opts.Unique)
	for _, e := range c.entries {
		if err := idx.insert(e); err != nil {
			return domain.ErrStoreOperation{Op: "createIndex", Err: err}
		}
	}
	c.indexes = append(c.indexes, idx)
	return nil
}

func (c *Collection) matching(filter domain.Document) ([]*entry, error) {
	var res []*entry
	for _, e := range c.entries {
		ok, err := match(e.doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, e)
		}
	}
	return res, nil
}

// apply modifies the entry in place, keeping indexes consistent. Nothing
// changes if the new document violates an index.
func (c *Collection) apply(e *entry, update domain.Document) (bool, error) {
	modified, err := modify(e.doc, update, false)
	if err != nil {
		return false, err
	}
	if equal(e.doc, modified) {
		return false, nil
	}

	old := e.doc
	if err := c.removeFromIndexes(e); err != nil {
		return false, err
	}
	e.doc = modified
	if err := c.addToIndexes(e); err != nil {
		e.doc = old
		return false, errors.Join(err, c.addToIndexes(e))
	}
	return true, nil
}

// addToIndexes inserts e in every index or in none of them.
func (c *Collection) addToIndexes(e *entry) error {
	for n, idx := range c.indexes {
		if err := idx.insert(e); err != nil {
			for _, done := range c.indexes[:n] {
				_ = done.remove(e)
			}
			return err
		}
	}
	return nil
}

func (c *Collection) removeFromIndexes(e *entry) error {
	errs := make([]error, 0, len(c.indexes))
	for _, idx := range c.indexes {
		errs = append(errs, idx.remove(e))
	}
	return errors.Join(errs...)
}

func sortDocs(docs []domain.Document, sort domain.Sort) error {
	var err error
	slices.SortStableFunc(docs, func(a, b domain.Document) int {
		for _, s := range sort {
			c, cErr := compare(a[s.Key], b[s.Key])
			if cErr != nil {
				err = cErr
				return 0
			}
			if c != 0 {
				if s.Order < 0 {
					return -c
				}
				return c
			}
		}
		return 0
	})
	return err
}

func paginate(docs []domain.Document, skip, limit int64) []domain.Document {
	if skip > 0 {
		if skip >= int64(len(docs)) {
			return nil
		}
		docs = docs[skip:]
	}
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

// project copies doc keeping only the requested fields and "id". An empty
// projection keeps every field.
func project(doc domain.Document, fields []string) domain.Document {
	if len(fields) == 0 {
		return copyDoc(doc)
	}
	res := make(domain.Document, len(fields)+1)
	for _, f := range append([]string{domain.FieldID}, fields...) {
		if v, ok := doc[f]; ok {
			res[f] = copyAny(v)
		}
	}
	return res
}
