package mirror

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
)

// GCSBackend is a Backend over a Google Cloud Storage bucket, one of the
// three cloud backends alongside S3Backend and AzureBackend. It can serve
// any tier role; storageconfig selects it for gs:// location paths.
type GCSBackend struct {
	client *storage.Client
	bucket string
	prefix string
	label  string
}

// NewGCSBackend wraps a storage.Client for bucket, with object names rooted
// at prefix.
func NewGCSBackend(label string, client *storage.Client, bucket, prefix string) *GCSBackend {
	return &GCSBackend{client: client, bucket: bucket, prefix: prefix, label: label}
}

func (b *GCSBackend) objectName(id string) string {
	if b.prefix == "" {
		return id
	}
	return b.prefix + "/" + id
}

func (b *GCSBackend) object(id string) *storage.ObjectHandle {
	return b.client.Bucket(b.bucket).Object(b.objectName(id))
}

func (b *GCSBackend) Label() string { return b.label }

func (b *GCSBackend) ReadAll(ctx context.Context, id string) ([]byte, bool, error) {
	r, err := b.object(id).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *GCSBackend) Write(ctx context.Context, id string, data []byte) error {
	w := b.object(id).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (b *GCSBackend) Delete(ctx context.Context, id string) error {
	err := b.object(id).Delete(ctx)
	if err != nil && errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (b *GCSBackend) Exists(ctx context.Context, id string) (bool, error) {
	_, err := b.object(id).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *GCSBackend) Size(ctx context.Context, id string) (int64, bool, error) {
	attrs, err := b.object(id).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return attrs.Size, true, nil
}
