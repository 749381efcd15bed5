package mongostore

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fileDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
}

// Bucket implements [domain.Bucket] on GridFS. Handles are ObjectID hex
// strings.
type Bucket struct {
	db   *mongo.Database
	name string
}

func (b *Bucket) open() (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(b.db, options.GridFSBucket().SetName(b.name))
	if err != nil {
		return nil, domain.ErrStoreOperation{Op: "gridfs", Err: err}
	}
	return bucket, nil
}

// Upload implements [domain.Bucket].
func (b *Bucket) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	bucket, err := b.open()
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = bucket.SetWriteDeadline(deadline)
	}
	id, err := bucket.UploadFromStream(filename, contextio.NewReader(ctx, r))
	if err != nil {
		return "", storeError("upload", err)
	}
	return id.Hex(), nil
}

// Download implements [domain.Bucket].
func (b *Bucket) Download(ctx context.Context, handle string, w io.Writer) (int64, error) {
	id, err := primitive.ObjectIDFromHex(handle)
	if err != nil {
		return 0, domain.ErrStoreOperation{Op: "download", Err: err}
	}
	bucket, err := b.open()
	if err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = bucket.SetReadDeadline(deadline)
	}
	n, err := bucket.DownloadToStream(id, contextio.NewWriter(ctx, w))
	if err != nil {
		return n, storeError("download", err)
	}
	return n, nil
}

// Exists implements [domain.Bucket].
func (b *Bucket) Exists(ctx context.Context, handle string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(handle)
	if err != nil {
		return false, nil
	}
	files := b.db.Collection(b.name + ".files")
	n, err := files.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeError("count", err)
	}
	return n > 0, nil
}

// Delete implements [domain.Bucket].
func (b *Bucket) Delete(ctx context.Context, handle string) error {
	id, err := primitive.ObjectIDFromHex(handle)
	if err != nil {
		return nil
	}
	bucket, err := b.open()
	if err != nil {
		return err
	}
	err = bucket.DeleteContext(ctx, id)
	if err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return storeError("delete", err)
	}
	return nil
}

// Find implements [domain.Bucket].
func (b *Bucket) Find(ctx context.Context, filename string) ([]domain.BlobInfo, error) {
	bucket, err := b.open()
	if err != nil {
		return nil, err
	}
	sort := bson.D{{Key: "uploadDate", Value: -1}, {Key: "_id", Value: -1}}
	cur, err := bucket.FindContext(ctx, bson.M{"filename": filename}, options.GridFSFind().SetSort(sort))
	if err != nil {
		return nil, storeError("find", err)
	}
	defer cur.Close(context.WithoutCancel(ctx))

	var res []domain.BlobInfo
	for cur.Next(ctx) {
		var f fileDoc
		if err := cur.Decode(&f); err != nil {
			return nil, storeError("find", err)
		}
		res = append(res, domain.BlobInfo{
			Handle:     f.ID.Hex(),
			Filename:   f.Filename,
			Length:     f.Length,
			UploadDate: f.UploadDate,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, storeError("find", err)
	}
	return res, nil
}
