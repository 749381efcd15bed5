package memstore

import (
	"errors"
	"fmt"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// entry holds one stored document. Indexes reference entries so a document
// can be replaced without losing its position in the collection.
type entry struct {
	doc domain.Document
}

type bstComparer struct{}

// CompareKeys implements bst.Comparer.
func (bstComparer) CompareKeys(a any, b any) (int, error) {
	return compare(a, b)
}

// CompareValues implements bst.Comparer.
func (bstComparer) CompareValues(a *entry, b *entry) (bool, error) {
	return a == b, nil
}

type index struct {
	fields []string
	unique bool
	tree   bst.BST[any, *entry]
}

var entryComparer bst.Comparer[any, *entry] = bstComparer{}

func newIndex(fields []string, unique bool) *index {
	return &index{
		fields: fields,
		unique: unique,
		tree:   avl.NewBST(unique, 8, entryComparer),
	}
}

func (i *index) sameAs(fields []string) bool {
	if len(fields) != len(i.fields) {
		return false
	}
	for n := range fields {
		if fields[n] != i.fields[n] {
			return false
		}
	}
	return true
}

// key returns the indexed value of doc. Missing fields index as nil.
func (i *index) key(doc domain.Document) any {
	if len(i.fields) == 1 {
		return doc[i.fields[0]]
	}
	k := make([]any, len(i.fields))
	for n, f := range i.fields {
		k[n] = doc[f]
	}
	return k
}

func (i *index) insert(e *entry) error {
	if err := i.tree.Insert(i.key(e.doc), e); err != nil {
		if errors.As(err, new(bst.ErrUniqueViolated)) {
			return fmt.Errorf("%w: index %v: %w", domain.ErrDuplicateKey, i.fields, err)
		}
		return err
	}
	return nil
}

func (i *index) remove(e *entry) error {
	return i.tree.Delete(i.key(e.doc), &e)
}
