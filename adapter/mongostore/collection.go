package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection implements [domain.Collection].
type Collection struct {
	coll *mongo.Collection
}

// Name implements [domain.Collection].
func (c *Collection) Name() string {
	return c.coll.Name()
}

// InsertOne implements [domain.Collection].
func (c *Collection) InsertOne(ctx context.Context, doc domain.Document) error {
	if _, err := c.coll.InsertOne(ctx, nativeDoc(doc)); err != nil {
		return storeError("insert", err)
	}
	return nil
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, filter domain.Document, opts ...domain.FindOption) ([]domain.Document, error) {
	var fo domain.FindOptions
	for _, opt := range opts {
		opt(&fo)
	}

	findOpts := options.Find()
	if len(fo.Projection) > 0 {
		findOpts.SetProjection(projection(fo.Projection))
	}
	if len(fo.Sort) > 0 {
		findOpts.SetSort(sortDoc(fo.Sort))
	}
	if fo.Skip > 0 {
		findOpts.SetSkip(fo.Skip)
	}
	if fo.Limit > 0 {
		findOpts.SetLimit(fo.Limit)
	}

	cur, err := c.coll.Find(ctx, nativeDoc(filter), findOpts)
	if err != nil {
		return nil, storeError("find", err)
	}
	defer cur.Close(context.WithoutCancel(ctx))

	var res []domain.Document
	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, storeError("find", err)
		}
		res = append(res, fromNativeDoc(m))
	}
	if err := cur.Err(); err != nil {
		return nil, storeError("find", err)
	}
	return res, nil
}

// CountDocuments implements [domain.Collection].
func (c *Collection) CountDocuments(ctx context.Context, filter domain.Document) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, nativeDoc(filter))
	if err != nil {
		return 0, storeError("count", err)
	}
	return n, nil
}

// UpdateMany implements [domain.Collection]. When the server reports a
// failure after changing some documents, the counts are returned with the
// error.
func (c *Collection) UpdateMany(ctx context.Context, filter domain.Document, update domain.Document) (domain.StoreResult, error) {
	res, err := c.coll.UpdateMany(ctx, nativeDoc(filter), nativeDoc(update))
	var sr domain.StoreResult
	if res != nil {
		sr.Matched, sr.Modified = res.MatchedCount, res.ModifiedCount
	}
	if err != nil {
		return sr, storeError("update", err)
	}
	return sr, nil
}

// DeleteMany implements [domain.Collection].
func (c *Collection) DeleteMany(ctx context.Context, filter domain.Document) (domain.StoreResult, error) {
	res, err := c.coll.DeleteMany(ctx, nativeDoc(filter))
	var sr domain.StoreResult
	if res != nil {
		sr.Matched, sr.Deleted = res.DeletedCount, res.DeletedCount
	}
	if err != nil {
		return sr, storeError("delete", err)
	}
	return sr, nil
}

// FindOneAndUpdate implements [domain.Collection].
func (c *Collection) FindOneAndUpdate(ctx context.Context, filter domain.Document, update domain.Document, opts ...domain.UpdateOption) (domain.Document, error) {
	var uo domain.UpdateOptions
	for _, opt := range opts {
		opt(&uo)
	}

	fo := options.FindOneAndUpdate().SetUpsert(uo.Upsert)
	if uo.ReturnAfter {
		fo.SetReturnDocument(options.After)
	}

	var m bson.M
	err := c.coll.FindOneAndUpdate(ctx, nativeDoc(filter), nativeDoc(update), fo).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("findAndModify", err)
	}
	return fromNativeDoc(m), nil
}

// EnsureIndex implements [domain.Collection].
func (c *Collection) EnsureIndex(ctx context.Context, opts ...domain.EnsureIndexOption) error {
	var eo domain.EnsureIndexOptions
	for _, opt := range opts {
		opt(&eo)
	}
	if len(eo.FieldNames) == 0 {
		return domain.ErrStoreOperation{Op: "createIndex", Err: errors.New("no index fields")}
	}

	keys := make(bson.D, len(eo.FieldNames))
	for n, f := range eo.FieldNames {
		keys[n] = bson.E{Key: f, Value: 1}
	}
	model := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(eo.Unique),
	}
	if _, err := c.coll.Indexes().CreateOne(ctx, model); err != nil {
		return storeError("createIndex", err)
	}
	return nil
}

// storeError wraps a driver error, marking duplicate key failures with
// [domain.ErrDuplicateKey].
func storeError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		err = fmt.Errorf("%w: %w", domain.ErrDuplicateKey, err)
	}
	return domain.ErrStoreOperation{Op: op, Err: err}
}
