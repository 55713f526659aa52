package mirror

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/time/rate"
)

// S3Backend is a Backend over an S3-compatible bucket, intended for a
// best-effort long-term glacier tier. Reads and writes are throttled by
// limiter, if non-nil, to keep a slow/expensive tier from being hammered
// during fallback reads.
type S3Backend struct {
	client  *s3.Client
	bucket  string
	prefix  string
	label   string
	limiter *rate.Limiter
}

// NewS3Backend wraps an s3.Client for bucket, with keys rooted at prefix.
// limiter may be nil to disable throttling.
func NewS3Backend(label string, client *s3.Client, bucket, prefix string, limiter *rate.Limiter) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, prefix: prefix, label: label, limiter: limiter}
}

func (b *S3Backend) key(id string) string {
	if b.prefix == "" {
		return id
	}
	return b.prefix + "/" + id
}

func (b *S3Backend) wait(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}
	return b.limiter.Wait(ctx)
}

func (b *S3Backend) Label() string { return b.label }

func (b *S3Backend) ReadAll(ctx context.Context, id string) ([]byte, bool, error) {
	if err := b.wait(ctx); err != nil {
		return nil, false, err
	}
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *S3Backend) Write(ctx context.Context, id string, data []byte) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(id)),
		Body:   bytes.NewReader(data),
	})
	return err
}

func (b *S3Backend) Delete(ctx context.Context, id string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(id)),
	})
	return err
}

func (b *S3Backend) Exists(ctx context.Context, id string) (bool, error) {
	if err := b.wait(ctx); err != nil {
		return false, err
	}
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(id)),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *S3Backend) Size(ctx context.Context, id string) (int64, bool, error) {
	if err := b.wait(ctx); err != nil {
		return 0, false, err
	}
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(id)),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if out.ContentLength == nil {
		return 0, true, nil
	}
	return *out.ContentLength, true, nil
}
