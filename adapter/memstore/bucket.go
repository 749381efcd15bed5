package memstore

import (
	"bytes"
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/dolmen-go/contextio"
	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// ErrFileNotFound is returned when downloading an unknown blob.
type ErrFileNotFound struct {
	Handle string
}

// Error implements [error].
func (e ErrFileNotFound) Error() string {
	return "file with id " + e.Handle + " not found"
}

type blob struct {
	info domain.BlobInfo
	seq  uint64
	data []byte
}

// Bucket implements [domain.Bucket] in memory.
type Bucket struct {
	name  string
	clock func() time.Time
	mu    sync.RWMutex
	seq   uint64
	blobs map[string]*blob
}

func newBucket(name string, clock func() time.Time) *Bucket {
	return &Bucket{name: name, clock: clock, blobs: make(map[string]*blob)}
}

// Upload implements [domain.Bucket].
func (b *Bucket) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(contextio.NewReader(ctx, r))
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	handle := uuid.NewString()
	b.blobs[handle] = &blob{
		info: domain.BlobInfo{
			Handle:     handle,
			Filename:   filename,
			Length:     int64(len(data)),
			UploadDate: b.clock(),
		},
		seq:  b.seq,
		data: data,
	}
	return handle, nil
}

// Download implements [domain.Bucket].
func (b *Bucket) Download(ctx context.Context, handle string, w io.Writer) (int64, error) {
	b.mu.RLock()
	bl, ok := b.blobs[handle]
	b.mu.RUnlock()
	if !ok {
		return 0, ErrFileNotFound{Handle: handle}
	}
	return io.Copy(contextio.NewWriter(ctx, w), bytes.NewReader(bl.data))
}

// Exists implements [domain.Bucket].
func (b *Bucket) Exists(ctx context.Context, handle string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.blobs[handle]
	return ok, nil
}

// Delete implements [domain.Bucket].
func (b *Bucket) Delete(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, handle)
	return nil
}

// Find implements [domain.Bucket]. Blobs uploaded in the same instant are
// ordered by upload sequence.
func (b *Bucket) Find(ctx context.Context, filename string) ([]domain.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	found := make([]*blob, 0)
	for _, bl := range b.blobs {
		if bl.info.Filename == filename {
			found = append(found, bl)
		}
	}
	b.mu.RUnlock()

	slices.SortFunc(found, func(x, y *blob) int {
		if c := y.info.UploadDate.Compare(x.info.UploadDate); c != 0 {
			return c
		}
		switch {
		case x.seq > y.seq:
			return -1
		case x.seq < y.seq:
			return 1
		}
		return 0
	})

	res := make([]domain.BlobInfo, len(found))
	for n, bl := range found {
		res[n] = bl.info
	}
	return res, nil
}
