package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Backend stores tile pyramids as objects in an S3-compatible bucket,
// wired per spec.md §6's ROK4_S3_URL/KEY/SECRETKEY environment variables,
// using github.com/minio/minio-go/v7 as its S3 client.
type S3Backend struct {
	client *minio.Client
	bucket string
}

// S3Config holds the connection parameters read from ROK4_S3_* env vars.
type S3Config struct {
	URL       string
	Key       string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewS3Backend dials an S3-compatible endpoint.
func NewS3Backend(cfg S3Config) (*S3Backend, error) {
	client, err := minio.New(cfg.URL, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Key, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 backend: connecting to %s: %w", cfg.URL, err)
	}
	return &S3Backend{client: client, bucket: cfg.Bucket}, nil
}

func (b *S3Backend) Kind() string { return "s3" }

func (b *S3Backend) Read(ctx context.Context, object string, offset, length int64) ([]byte, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(offset, offset+length-1); err != nil {
		return nil, fmt.Errorf("s3 backend: range header for %s: %w", object, err)
	}
	obj, err := b.client.GetObject(ctx, b.bucket, object, opts)
	if err != nil {
		return nil, s3Error(object, err)
	}
	defer obj.Close()

	buf := make([]byte, length)
	n, err := io.ReadFull(obj, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, s3Error(object, err)
	}
	if int64(n) < length {
		return nil, ErrOutOfRange
	}
	return buf, nil
}

func (b *S3Backend) Write(ctx context.Context, object string, offset int64, data []byte) error {
	if offset != 0 {
		return fmt.Errorf("s3 backend: partial object writes are not supported, use local staging then PutObject")
	}
	_, err := b.client.PutObject(ctx, b.bucket, object, newByteReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("s3 backend: writing %s: %w", object, err)
	}
	return nil
}

func s3Error(object string, err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("s3 backend: reading %s: %w", object, err)
}

type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
