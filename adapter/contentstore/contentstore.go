// Package contentstore contains the default implementation of
// [domain.ContentStore], keeping binary payloads in a store bucket.
package contentstore

import (
	"bytes"
	"context"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// DefaultBucket is the bucket used when none is configured.
const DefaultBucket = "fs"

// ContentStore implements [domain.ContentStore].
type ContentStore struct {
	manager domain.ConnectionManager
	bucket  string
}

// NewContentStore returns a new implementation of [domain.ContentStore]
// reading the bucket through manager.
func NewContentStore(manager domain.ConnectionManager, opts ...Option) domain.ContentStore {
	cs := ContentStore{
		manager: manager,
		bucket:  DefaultBucket,
	}
	for _, opt := range opts {
		opt(&cs)
	}
	return &cs
}

func (cs *ContentStore) open(ctx context.Context) (domain.Bucket, error) {
	db, err := cs.manager.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Bucket(cs.bucket), nil
}

// Put implements [domain.ContentStore]. It always creates a new blob, even if
// other blobs share the filename.
func (cs *ContentStore) Put(ctx context.Context, data []byte, filename string) (string, error) {
	b, err := cs.open(ctx)
	if err != nil {
		return "", err
	}
	return b.Upload(ctx, filename, bytes.NewReader(data))
}

// Get implements [domain.ContentStore].
func (cs *ContentStore) Get(ctx context.Context, handle string) ([]byte, error) {
	b, err := cs.open(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := b.Download(ctx, handle, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Exists implements [domain.ContentStore].
func (cs *ContentStore) Exists(ctx context.Context, handle string) (bool, error) {
	if handle == "" {
		return false, nil
	}
	b, err := cs.open(ctx)
	if err != nil {
		return false, err
	}
	return b.Exists(ctx, handle)
}

// Delete implements [domain.ContentStore].
func (cs *ContentStore) Delete(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	b, err := cs.open(ctx)
	if err != nil {
		return err
	}
	return b.Delete(ctx, handle)
}

// ListVersions implements [domain.ContentStore].
func (cs *ContentStore) ListVersions(ctx context.Context, filename string) (int, error) {
	infos, err := cs.find(ctx, filename)
	if err != nil {
		return 0, err
	}
	return len(infos), nil
}

// Latest implements [domain.ContentStore].
func (cs *ContentStore) Latest(ctx context.Context, filename string) (string, bool, error) {
	infos, err := cs.find(ctx, filename)
	if err != nil || len(infos) == 0 {
		return "", false, err
	}
	return infos[0].Handle, true, nil
}

// Versions implements [domain.ContentStore].
func (cs *ContentStore) Versions(ctx context.Context, filename string) ([]string, error) {
	infos, err := cs.find(ctx, filename)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(infos))
	for n, info := range infos {
		res[n] = info.Handle
	}
	return res, nil
}

func (cs *ContentStore) find(ctx context.Context, filename string) ([]domain.BlobInfo, error) {
	b, err := cs.open(ctx)
	if err != nil {
		return nil, err
	}
	return b.Find(ctx, filename)
}
