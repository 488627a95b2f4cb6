package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/testforge/hrm-e2e/internal/config"
)

// Bucket is the MinIO (or other S3-compatible) bucket run artifacts are
// uploaded to
type Bucket struct {
	client *minio.Client
	name   string
}

// OpenBucket builds a client for the configured endpoint. No request is
// made until the bucket is used.
func OpenBucket(cfg config.StorageConfig) (*Bucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("opening bucket %s at %s: %w", cfg.Bucket, cfg.Endpoint, err)
	}
	return &Bucket{client: client, name: cfg.Bucket}, nil
}

// Name returns the bucket name
func (b *Bucket) Name() string { return b.name }

// URI returns the s3:// address of key
func (b *Bucket) URI(key string) string {
	return fmt.Sprintf("s3://%s/%s", b.name, key)
}

// Ensure creates the bucket unless it is already there
func (b *Bucket) Ensure(ctx context.Context) error {
	err := b.client.MakeBucket(ctx, b.name, minio.MakeBucketOptions{})
	if err == nil {
		return nil
	}
	if exists, existsErr := b.client.BucketExists(ctx, b.name); existsErr == nil && exists {
		return nil
	}
	return fmt.Errorf("creating bucket %s: %w", b.name, err)
}

// Upload writes data under key
func (b *Bucket) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"producer": "hrm-e2e"},
	}
	if _, err := b.client.PutObject(ctx, b.name, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return b.URI(key), nil
}

// Health fails when the endpoint is unreachable or the bucket is gone
func (b *Bucket) Health(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", b.name)
	}
	return nil
}
