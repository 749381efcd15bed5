// Package allocator contains the default implementation of
// [domain.IDAllocator], issuing integer ids from per-model counter documents.
package allocator

import (
	"context"
	"fmt"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/structure"
)

// DefaultCollection holds one counter document per model.
const DefaultCollection = "counters"

const counterField = "counter"

// Seed is the value of a new counter. The first id of a model is Seed+1.
const Seed int64 = 0

// ErrBadCounter is returned when a counter document holds something other
// than an integer.
type ErrBadCounter struct {
	Model string
	Value any
}

// Error implements [error].
func (e ErrBadCounter) Error() string {
	return fmt.Sprintf("counter of model %s is not an integer: %#v", e.Model, e.Value)
}

// Allocator implements [domain.IDAllocator]. Every id comes from a single
// atomic increment, so concurrent callers never receive the same value.
type Allocator struct {
	manager    domain.ConnectionManager
	collection string
}

// NewAllocator returns a new implementation of [domain.IDAllocator].
func NewAllocator(manager domain.ConnectionManager, opts ...Option) domain.IDAllocator {
	a := Allocator{
		manager:    manager,
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return &a
}

// Init implements [domain.IDAllocator]. Calling it again, even concurrently,
// keeps the existing counter.
func (a *Allocator) Init(ctx context.Context, model string) error {
	c, err := a.manager.Collection(ctx, a.collection)
	if err != nil {
		return err
	}

	n, err := c.CountDocuments(ctx, domain.Document{"_id": model})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	err = c.InsertOne(ctx, domain.Document{"_id": model, counterField: Seed})
	if domain.IsDuplicateKey(err) {
		return nil
	}
	return err
}

// Next implements [domain.IDAllocator]. A model without a counter starts
// from [Seed].
func (a *Allocator) Next(ctx context.Context, model string) (int64, error) {
	c, err := a.manager.Collection(ctx, a.collection)
	if err != nil {
		return 0, err
	}

	doc, err := c.FindOneAndUpdate(ctx,
		domain.Document{"_id": model},
		domain.Document{"$inc": domain.Document{counterField: int64(1)}},
		domain.WithUpsert(true),
		domain.WithReturnAfter(true),
	)
	if err != nil {
		return 0, err
	}
	if doc == nil {
		return 0, ErrBadCounter{Model: model}
	}

	id, ok := structure.AsInteger(doc[counterField])
	if !ok {
		return 0, ErrBadCounter{Model: model, Value: doc[counterField]}
	}
	return id, nil
}
